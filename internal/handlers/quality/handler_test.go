package quality_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"millflow/internal/checklist"
	"millflow/internal/handlers/quality"
	"millflow/internal/models"
	"millflow/internal/testutil"
	"millflow/internal/workflow"
)

// producedWorkOrder walks a fresh sales order through approval and a
// completed production run.
func producedWorkOrder(t *testing.T, svc *workflow.Service) string {
	t.Helper()
	ctx := context.Background()
	st := svc.Store()
	if err := st.StoreStock.Insert(ctx, &models.StockItem{ID: "STK-1", Material: "Steel Plate", CurrentStock: 100}); err != nil {
		t.Fatal(err)
	}
	so := &models.SalesOrder{ID: "SO-000001", ClientName: "Acme", Items: []models.LineItem{{Description: "Steel bracket assembly", Qty: 10}}}
	if err := st.SalesOrders.Insert(ctx, so); err != nil {
		t.Fatal(err)
	}
	g, err := svc.CreateFromSalesOrder(ctx, so.ID, "sales")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	woID := g.WorkOrder.ID
	if _, err := svc.ApproveWorkOrder(ctx, woID, "mgr"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	rec, err := svc.StartProduction(ctx, workflow.StartProductionRequest{WOID: woID, TeamLeader: "Ravi", TechCheck: true, BOMCheck: true}, "lead")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, p := range checklist.New() {
		if _, err := svc.SetProductionParameter(ctx, rec.ID, p.ID, checklist.StatusApproved, "", "lead"); err != nil {
			t.Fatalf("set %s: %v", p.ID, err)
		}
	}
	if _, err := svc.CompleteProduction(ctx, rec.ID, "lead"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	return woID
}

func decided(status string) []checklist.Result {
	params := checklist.New()
	for i := range params {
		params[i].Status = status
	}
	return params
}

func TestSubmitInspection(t *testing.T) {
	svc, st := testutil.SetupService(t)
	h := &quality.Handler{Svc: svc, Log: testutil.Logger()}
	woID := producedWorkOrder(t, svc)

	tests := []struct {
		name string
		body workflow.QCSubmission
	}{
		{"missing inspector", workflow.QCSubmission{WONumber: woID, Parameters: decided(checklist.StatusApproved), Action: workflow.QCActionApprove}},
		{"undecided parameters", workflow.QCSubmission{WONumber: woID, InspectorName: "Meena", Parameters: checklist.New(), Action: workflow.QCActionApprove}},
		{"reject without remarks", workflow.QCSubmission{WONumber: woID, InspectorName: "Meena", Parameters: decided(checklist.StatusRejected), Action: workflow.QCActionReject}},
		{"bad action", workflow.QCSubmission{WONumber: woID, InspectorName: "Meena", Parameters: decided(checklist.StatusApproved), Action: "ship"}},
		{"single parameter", workflow.QCSubmission{WONumber: woID, InspectorName: "Meena", Parameters: decided(checklist.StatusApproved)[:1], Action: workflow.QCActionApprove}},
		{"duplicate parameter", workflow.QCSubmission{WONumber: woID, InspectorName: "Meena", Parameters: append(decided(checklist.StatusApproved)[:3], checklist.Result{ID: checklist.ParamHarry, Status: checklist.StatusApproved}), Action: workflow.QCActionApprove}},
		{"unknown parameter", workflow.QCSubmission{WONumber: woID, InspectorName: "Meena", Parameters: append(decided(checklist.StatusApproved), checklist.Result{ID: "texture", Status: checklist.StatusApproved}), Action: workflow.QCActionApprove}},
		{"missing action", workflow.QCSubmission{WONumber: woID, InspectorName: "Meena", Parameters: decided(checklist.StatusApproved)}},
		{"photo not an image", workflow.QCSubmission{WONumber: woID, InspectorName: "Meena", Parameters: decided(checklist.StatusApproved), Action: workflow.QCActionApprove,
			Photographs: []models.Photo{{Name: "a.txt", Data: "data:text/plain;base64,aGVsbG8="}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.SubmitInspection(w, testutil.JSONRequest("POST", "/api/v1/qc", tt.body, "qc"))
			testutil.AssertStatus(t, w, 400)
		})
	}

	if recs, _ := st.QCRecords.List(context.Background()); len(recs) != 0 {
		t.Fatalf("refused submissions stored %d QC records", len(recs))
	}

	w := httptest.NewRecorder()
	h.SubmitInspection(w, testutil.JSONRequest("POST", "/api/v1/qc", workflow.QCSubmission{
		WONumber: "WO-0000-0000", InspectorName: "Meena", Parameters: decided(checklist.StatusApproved), Action: workflow.QCActionApprove,
	}, "qc"))
	testutil.AssertStatus(t, w, 404)

	w = httptest.NewRecorder()
	h.SubmitInspection(w, testutil.JSONRequest("POST", "/api/v1/qc", workflow.QCSubmission{
		WONumber: woID, InspectorName: "Meena", Parameters: decided(checklist.StatusApproved), Action: workflow.QCActionApprove,
		Photographs: []models.Photo{{Name: "front.png", Data: testutil.PNGDataURI}},
	}, "qc"))
	testutil.AssertStatus(t, w, 200)
	var rec models.QCRecord
	testutil.DecodeEnvelope(t, w, &rec)
	if rec.OverallStatus != checklist.StatusApproved || len(rec.Photographs) != 1 {
		t.Errorf("unexpected QC record %+v", rec)
	}

	wo, _ := st.WorkOrders.Get(context.Background(), woID)
	if wo.Status != models.WOStatusCompleted || wo.QCStatus != checklist.StatusApproved {
		t.Errorf("unexpected work order %+v", wo)
	}

	w = httptest.NewRecorder()
	h.GetInspection(w, testutil.JSONRequest("GET", "/api/v1/qc/"+rec.ID, nil, ""), rec.ID)
	testutil.AssertStatus(t, w, 200)

	w = httptest.NewRecorder()
	h.GetInspection(w, testutil.JSONRequest("GET", "/api/v1/qc/QC-1", nil, ""), "QC-1")
	testutil.AssertStatus(t, w, 404)
}

func TestListInspections_FilterByWorkOrder(t *testing.T) {
	svc, _ := testutil.SetupService(t)
	h := &quality.Handler{Svc: svc, Log: testutil.Logger()}
	woID := producedWorkOrder(t, svc)

	rejected := decided(checklist.StatusApproved)
	rejected[0].Status = checklist.StatusRejected
	subs := []workflow.QCSubmission{
		{WONumber: woID, InspectorName: "Meena", Parameters: rejected, RejectionRemarks: "loose weave", Action: workflow.QCActionReject},
		{WONumber: woID, InspectorName: "Meena", Parameters: decided(checklist.StatusApproved), Action: workflow.QCActionApprove},
	}
	for _, sub := range subs {
		if _, err := svc.SubmitInspection(context.Background(), sub, "qc"); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	w := httptest.NewRecorder()
	h.ListInspections(w, testutil.JSONRequest("GET", "/api/v1/qc?wo="+woID, nil, ""))
	testutil.AssertStatus(t, w, 200)
	var recs []models.QCRecord
	testutil.DecodeEnvelope(t, w, &recs)
	if len(recs) != 2 {
		t.Fatalf("expected 2 inspections, got %d", len(recs))
	}
	if recs[0].OverallStatus != checklist.StatusApproved {
		t.Errorf("expected newest first, got %s", recs[0].OverallStatus)
	}

	w = httptest.NewRecorder()
	h.ListInspections(w, testutil.JSONRequest("GET", "/api/v1/qc?wo=WO-none", nil, ""))
	testutil.DecodeEnvelope(t, w, &recs)
	if len(recs) != 0 {
		t.Errorf("expected no inspections, got %d", len(recs))
	}
}
