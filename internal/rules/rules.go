// Package rules implements the keyword classifiers that turn a free-text line
// item description into a material type and an operations list.
//
// Each classifier is an ordered table: the first rule with a keyword contained
// in the lowercased description wins, otherwise the fallback applies.
package rules

import "strings"

// Rule maps any of its keywords to a value.
type Rule[T any] struct {
	Keywords []string `yaml:"keywords" json:"keywords"`
	Value    T        `yaml:"value" json:"value"`
}

// Table is an ordered rule list with a fallback for non-empty descriptions
// that match nothing.
type Table[T any] struct {
	Rules    []Rule[T] `yaml:"rules" json:"rules"`
	Fallback T         `yaml:"fallback" json:"fallback"`
	// SkipEmpty makes an empty description classify to nothing instead of
	// the fallback.
	SkipEmpty bool `yaml:"skip_empty" json:"skipEmpty"`
}

// Lookup classifies description. The boolean is false when the description is
// empty and the table skips empty input.
func (t Table[T]) Lookup(description string) (T, bool) {
	d := strings.ToLower(strings.TrimSpace(description))
	if d == "" && t.SkipEmpty {
		var zero T
		return zero, false
	}
	for _, r := range t.Rules {
		for _, k := range r.Keywords {
			if k != "" && strings.Contains(d, strings.ToLower(k)) {
				return r.Value, true
			}
		}
	}
	return t.Fallback, true
}

// Material type names.
const (
	SteelPlate    = "Steel Plate"
	AluminumSheet = "Aluminum Sheet"
	Fasteners     = "Fasteners"
	RawMaterial   = "Raw Material"
)

// DefaultMaterials is the material classifier used when config does not
// override it.
func DefaultMaterials() Table[string] {
	return Table[string]{
		Rules: []Rule[string]{
			{Keywords: []string{"steel", "metal"}, Value: SteelPlate},
			{Keywords: []string{"aluminum", "aluminium"}, Value: AluminumSheet},
			{Keywords: []string{"fastener", "bolt", "screw"}, Value: Fasteners},
		},
		Fallback:  RawMaterial,
		SkipEmpty: true,
	}
}

// DefaultOperations is the operations classifier used when config does not
// override it. Empty descriptions get the generic list.
func DefaultOperations() Table[[]string] {
	return Table[[]string]{
		Rules: []Rule[[]string]{
			{
				Keywords: []string{"assembl"},
				Value:    []string{"Material Preparation", "Component Assembly", "Quality Check", "Finishing", "Packaging"},
			},
			{
				Keywords: []string{"fabricat", "weld"},
				Value:    []string{"Material Cutting", "Welding", "Grinding", "Surface Treatment", "Quality Inspection", "Packaging"},
			},
			{
				Keywords: []string{"machin", "precision"},
				Value:    []string{"Material Preparation", "CNC Machining", "Deburring", "Precision Measurement", "Surface Finishing", "Packaging"},
			},
		},
		Fallback: []string{"Material Preparation", "Processing", "Quality Check"},
	}
}

// Union appends the members of lists in first-seen order, dropping repeats.
func Union(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lists {
		for _, s := range l {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
