package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"millflow/internal/checklist"
	"millflow/internal/models"
	"millflow/internal/validation"
	"millflow/internal/workflow"
)

func TestSubmitInspection_RequiresFullChecklist(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	wo := generateApproved(t, svc, st)

	short := []checklist.Result{{ID: checklist.ParamHarry, Status: checklist.StatusApproved}}
	unknown := append(approvedParams(), checklist.Result{ID: "texture", Status: checklist.StatusApproved})
	renamed := approvedParams()
	renamed[3].ID = "finish"
	duplicate := approvedParams()
	duplicate[3].ID = checklist.ParamHarry

	tests := []struct {
		name  string
		sub   workflow.QCSubmission
		field string
	}{
		{"single parameter", workflow.QCSubmission{Parameters: short, Action: workflow.QCActionApprove}, "parameters." + checklist.ParamMachinery},
		{"extra unknown parameter", workflow.QCSubmission{Parameters: unknown, Action: workflow.QCActionApprove}, "parameters.texture"},
		{"unknown replaces a parameter", workflow.QCSubmission{Parameters: renamed, Action: workflow.QCActionApprove}, "parameters." + checklist.ParamAssembly},
		{"duplicate parameter", workflow.QCSubmission{Parameters: duplicate, Action: workflow.QCActionApprove}, "parameters." + checklist.ParamHarry},
		{"missing action", workflow.QCSubmission{Parameters: approvedParams()}, "action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := tt.sub
			sub.WONumber, sub.InspectorName = wo.ID, "Meena"
			_, err := svc.SubmitInspection(ctx, sub, "qc")
			var ve *validation.ValidationErrors
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(ve.Error(), tt.field) {
				t.Errorf("expected an error on %s, got %v", tt.field, ve)
			}
		})
	}

	recs, _ := st.QCRecords.List(ctx)
	if len(recs) != 0 {
		t.Errorf("refused submissions stored %d QC records", len(recs))
	}
	got, _ := st.WorkOrders.Get(ctx, wo.ID)
	if got.Status != models.WOStatusApproved || got.QCStatus != "" {
		t.Errorf("refused submissions changed the work order %+v", got)
	}
}

func TestSubmitInspection_StoresCanonicalChecklist(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	wo := completedProduction(t, svc, st)

	params := approvedParams()
	params[0], params[3] = params[3], params[0]
	params[1].Name = "renamed"
	rec, err := svc.SubmitInspection(ctx, workflow.QCSubmission{
		WONumber: wo.ID, InspectorName: "Meena", Parameters: params, Action: workflow.QCActionApprove,
	}, "qc")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := checklist.New()
	if len(rec.Parameters) != len(want) {
		t.Fatalf("expected %d parameters, got %d", len(want), len(rec.Parameters))
	}
	for i, p := range rec.Parameters {
		if p.ID != want[i].ID || p.Name != want[i].Name || p.Status != checklist.StatusApproved {
			t.Errorf("parameter %d = %+v, want %s approved", i, p, want[i].ID)
		}
	}
}

// openPackaging returns a packaging record with all three photographs set.
func openPackaging(t *testing.T, svc *workflow.Service, woID string) *models.PackagingRecord {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.SubmitInspection(ctx, workflow.QCSubmission{
		WONumber: woID, InspectorName: "Meena", Parameters: approvedParams(), Action: workflow.QCActionApprove,
	}, "qc"); err != nil {
		t.Fatalf("qc: %v", err)
	}
	pkg, err := svc.CreatePackaging(ctx, woID, "pack")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, slot := range []string{models.SlotFinal, models.SlotDuring, models.SlotAfter} {
		if pkg, err = svc.SetPackagingPhoto(ctx, pkg.ID, slot, pngPhoto(slot+".png"), "pack"); err != nil {
			t.Fatalf("photo %s: %v", slot, err)
		}
	}
	return pkg
}

func TestCompletePackaging_RequiresTeamAndQuantity(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	wo := completedProduction(t, svc, st)
	pkg := openPackaging(t, svc, wo.ID)
	salesBefore := len(mustNotes(t, svc, models.RoleSales))

	tests := []struct {
		name  string
		team  string
		qty   float64
		field string
	}{
		{"empty team", "", 50, "packagingTeam"},
		{"blank team", "   ", 50, "packagingTeam"},
		{"zero quantity", "Team B", 0, "packedQty"},
		{"negative quantity", "Team B", -5, "packedQty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team, qty := tt.team, tt.qty
			if _, err := svc.SavePackagingDraft(ctx, pkg.ID, workflow.PackagingDraft{PackagingTeam: &team, PackedQty: &qty}, "pack"); err != nil {
				t.Fatalf("draft: %v", err)
			}
			_, err := svc.CompletePackaging(ctx, pkg.ID, "pack")
			var ve *validation.ValidationErrors
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(ve.Error(), tt.field) {
				t.Errorf("expected an error on %s, got %v", tt.field, ve)
			}
			got, _ := st.PackagingRecords.Get(ctx, pkg.ID)
			if got.IsCompleted || got.Status != models.PackagingInProgress || got.CompletedAt != "" {
				t.Errorf("refused completion changed record %+v", got)
			}
			gotWO, _ := st.WorkOrders.Get(ctx, wo.ID)
			if gotWO.Status == models.WOStatusPackagingCompleted {
				t.Error("refused completion closed the work order")
			}
			if n := len(mustNotes(t, svc, models.RoleSales)); n != salesBefore {
				t.Errorf("refused completion notified Sales (%d notes, had %d)", n, salesBefore)
			}
		})
	}
}

func TestSetPackagingPhoto_RequiresSlot(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	wo := completedProduction(t, svc, st)
	pkg := openPackaging(t, svc, wo.ID)

	for _, slot := range []string{"", " ", "side"} {
		_, err := svc.SetPackagingPhoto(ctx, pkg.ID, slot, pngPhoto("a.png"), "pack")
		var ve *validation.ValidationErrors
		if !errors.As(err, &ve) {
			t.Errorf("slot %q: expected validation error, got %v", slot, err)
		}
	}
	got, _ := st.PackagingRecords.Get(ctx, pkg.ID)
	if len(got.Photographs.Missing()) != 0 {
		t.Errorf("refused uploads cleared photographs %+v", got.Photographs)
	}
}
