package rules

import (
	"reflect"
	"testing"
)

func TestMaterialLookup(t *testing.T) {
	table := DefaultMaterials()
	tests := []struct {
		desc   string
		want   string
		wantOK bool
	}{
		{"Steel bracket assembly", SteelPlate, true},
		{"METAL frame", SteelPlate, true},
		{"Aluminum panel", AluminumSheet, true},
		{"Hex bolts M8", Fasteners, true},
		{"wood screw", Fasteners, true},
		{"Cotton yarn", RawMaterial, true},
		{"", "", false},
		{"   ", "", false},
		// steel is checked before bolt
		{"steel bolt", SteelPlate, true},
	}
	for _, tt := range tests {
		got, ok := table.Lookup(tt.desc)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.desc, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestOperationsLookup(t *testing.T) {
	table := DefaultOperations()

	ops, _ := table.Lookup("Steel bracket assembly")
	if len(ops) != 5 || ops[1] != "Component Assembly" {
		t.Errorf("assembly should map to 5-step list, got %v", ops)
	}
	ops, _ = table.Lookup("Welded frame")
	if len(ops) != 6 || ops[1] != "Welding" {
		t.Errorf("weld should map to fabrication list, got %v", ops)
	}
	ops, _ = table.Lookup("precision shaft")
	if len(ops) != 6 || ops[1] != "CNC Machining" {
		t.Errorf("precision should map to machining list, got %v", ops)
	}
	ops, ok := table.Lookup("")
	if !ok || len(ops) != 3 {
		t.Errorf("empty description should get generic list, got %v (ok=%v)", ops, ok)
	}
}

func TestUnion(t *testing.T) {
	got := Union([]string{"a", "b"}, []string{"b", "c"}, nil, []string{"a"})
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Union = %v, want %v", got, want)
	}
}
