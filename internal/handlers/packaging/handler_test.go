package packaging_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"millflow/internal/checklist"
	"millflow/internal/handlers/packaging"
	"millflow/internal/models"
	"millflow/internal/testutil"
	"millflow/internal/workflow"
)

func approvedParams() []checklist.Result {
	params := checklist.New()
	for i := range params {
		params[i].Status = checklist.StatusApproved
	}
	return params
}

// inspectedWorkOrder takes a sales order through production and an approved
// QC inspection.
func inspectedWorkOrder(t *testing.T, svc *workflow.Service) string {
	t.Helper()
	ctx := context.Background()
	st := svc.Store()
	if err := st.StoreStock.Insert(ctx, &models.StockItem{ID: "STK-1", Material: "Steel Plate", CurrentStock: 100}); err != nil {
		t.Fatal(err)
	}
	so := &models.SalesOrder{ID: "SO-000001", ClientName: "Acme", Items: []models.LineItem{
		{Description: "Steel bracket assembly", Qty: 30},
		{Description: "Steel frame", Qty: 12},
	}}
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
	if _, err := svc.SubmitInspection(ctx, workflow.QCSubmission{
		WONumber: woID, InspectorName: "Meena", Parameters: approvedParams(), Action: workflow.QCActionApprove,
	}, "qc"); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	return woID
}

func png(name string) models.Photo {
	return models.Photo{Name: name, Data: testutil.PNGDataURI}
}

func TestPackagingFlow(t *testing.T) {
	svc, st := testutil.SetupService(t)
	h := &packaging.Handler{Svc: svc, Log: testutil.Logger()}
	ctx := context.Background()
	woID := inspectedWorkOrder(t, svc)

	w := httptest.NewRecorder()
	h.Eligible(w, testutil.JSONRequest("GET", "/api/v1/packaging/eligible", nil, ""))
	testutil.AssertStatus(t, w, 200)
	var eligible []workflow.EligibleItem
	testutil.DecodeEnvelope(t, w, &eligible)
	if len(eligible) != 1 || eligible[0].WONumber != woID || eligible[0].Quantity != 42 || eligible[0].ClientName != "Acme" {
		t.Fatalf("unexpected eligible list %+v", eligible)
	}

	w = httptest.NewRecorder()
	h.Create(w, testutil.JSONRequest("POST", "/api/v1/packaging", map[string]string{"woNumber": ""}, "pack"))
	testutil.AssertStatus(t, w, 400)

	w = httptest.NewRecorder()
	h.Create(w, testutil.JSONRequest("POST", "/api/v1/packaging", map[string]string{"woNumber": woID}, "pack"))
	testutil.AssertStatus(t, w, 200)
	var rec models.PackagingRecord
	testutil.DecodeEnvelope(t, w, &rec)
	if rec.QCApprovedBy != "Meena" || rec.Status != models.PackagingPending {
		t.Errorf("unexpected packaging record %+v", rec)
	}

	w = httptest.NewRecorder()
	h.Create(w, testutil.JSONRequest("POST", "/api/v1/packaging", map[string]string{"woNumber": woID}, "pack"))
	testutil.AssertStatus(t, w, 409)

	w = httptest.NewRecorder()
	h.SaveDraft(w, testutil.JSONRequest("PUT", "/api/v1/packaging/"+rec.ID, map[string]interface{}{"packagingTeam": "Team B", "packedQty": 42}, "pack"), rec.ID)
	testutil.AssertStatus(t, w, 200)

	w = httptest.NewRecorder()
	h.Complete(w, testutil.JSONRequest("POST", "/complete", nil, "pack"), rec.ID)
	testutil.AssertStatus(t, w, 400)

	w = httptest.NewRecorder()
	h.SetPhoto(w, testutil.JSONRequest("PUT", "/photos/side", png("side.png"), "pack"), rec.ID, "side")
	testutil.AssertStatus(t, w, 400)

	w = httptest.NewRecorder()
	h.SetPhoto(w, testutil.JSONRequest("PUT", "/photos/final", models.Photo{Name: "f.txt", Data: "data:text/plain;base64,aGVsbG8="}, "pack"), rec.ID, models.SlotFinal)
	testutil.AssertStatus(t, w, 400)

	for _, slot := range []string{models.SlotFinal, models.SlotDuring, models.SlotAfter} {
		w = httptest.NewRecorder()
		h.SetPhoto(w, testutil.JSONRequest("PUT", "/photos/"+slot, png(slot+".png"), "pack"), rec.ID, slot)
		testutil.AssertStatus(t, w, 200)
	}

	w = httptest.NewRecorder()
	h.Complete(w, testutil.JSONRequest("POST", "/complete", nil, "pack"), rec.ID)
	testutil.AssertStatus(t, w, 200)
	var done models.PackagingRecord
	testutil.DecodeEnvelope(t, w, &done)
	if !done.IsCompleted || done.Status != models.PackagingCompleted || !done.NotificationsSent || done.CompletedBy != "pack" {
		t.Errorf("unexpected completed record %+v", done)
	}

	wo, _ := st.WorkOrders.Get(ctx, woID)
	if wo.Status != models.WOStatusPackagingCompleted {
		t.Errorf("expected Packaging Completed, got %s", wo.Status)
	}
	so, _ := st.SalesOrders.Get(ctx, "SO-000001")
	if so.Status != models.SOStatusCompleted {
		t.Errorf("expected SO Completed, got %s", so.Status)
	}

	w = httptest.NewRecorder()
	h.SaveDraft(w, testutil.JSONRequest("PUT", "/", map[string]interface{}{"notes": "late"}, "pack"), rec.ID)
	testutil.AssertStatus(t, w, 409)

	w = httptest.NewRecorder()
	h.Eligible(w, testutil.JSONRequest("GET", "/api/v1/packaging/eligible", nil, ""))
	testutil.DecodeEnvelope(t, w, &eligible)
	if len(eligible) != 0 {
		t.Errorf("completed work order still eligible: %+v", eligible)
	}

	w = httptest.NewRecorder()
	h.List(w, testutil.JSONRequest("GET", "/api/v1/packaging?status=Completed", nil, ""))
	var recs []models.PackagingRecord
	testutil.DecodeEnvelope(t, w, &recs)
	if len(recs) != 1 {
		t.Errorf("expected 1 completed record, got %d", len(recs))
	}
}

func TestCreate_RequiresApprovedQC(t *testing.T) {
	svc, st := testutil.SetupService(t)
	h := &packaging.Handler{Svc: svc, Log: testutil.Logger()}
	wo := &models.WorkOrder{ID: "WO-2603-0001", ApprovalStatus: models.ApprovalApproved}
	if err := st.WorkOrders.Insert(context.Background(), wo); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	h.Create(w, testutil.JSONRequest("POST", "/api/v1/packaging", map[string]string{"woNumber": wo.ID}, "pack"))
	testutil.AssertStatus(t, w, 409)
}

func TestLabel(t *testing.T) {
	svc, _ := testutil.SetupService(t)
	h := &packaging.Handler{Svc: svc, Log: testutil.Logger()}
	woID := inspectedWorkOrder(t, svc)
	rec, err := svc.CreatePackaging(context.Background(), woID, "pack")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w := httptest.NewRecorder()
	h.Label(w, testutil.JSONRequest("GET", "/api/v1/packaging/"+rec.ID+"/label", nil, ""), rec.ID)
	testutil.AssertStatus(t, w, 200)
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("label is not a PNG")
	}

	w = httptest.NewRecorder()
	h.Label(w, testutil.JSONRequest("GET", "/api/v1/packaging/PKG-0/label", nil, ""), "PKG-0")
	testutil.AssertStatus(t, w, 404)
}

func TestLabelContent(t *testing.T) {
	got := workflow.LabelContent("PKG-000001", "WO-2603-0001", "", 42)
	want := "PKG:PKG-000001\nWO:WO-2603-0001\nQTY:42"
	if got != want {
		t.Errorf("LabelContent = %q, want %q", got, want)
	}
}

func TestComplete_RequiresTeamAndQuantity(t *testing.T) {
	svc, st := testutil.SetupService(t)
	h := &packaging.Handler{Svc: svc, Log: testutil.Logger()}
	ctx := context.Background()
	woID := inspectedWorkOrder(t, svc)
	rec, err := svc.CreatePackaging(ctx, woID, "pack")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, slot := range []string{models.SlotFinal, models.SlotDuring, models.SlotAfter} {
		if _, err := svc.SetPackagingPhoto(ctx, rec.ID, slot, png(slot+".png"), "pack"); err != nil {
			t.Fatalf("photo %s: %v", slot, err)
		}
	}
	notesBefore, _ := svc.ListNotifications(ctx, models.RoleSales, false)

	tests := []struct {
		name  string
		draft map[string]interface{}
	}{
		{"empty team", map[string]interface{}{"packagingTeam": "", "packedQty": 42}},
		{"zero quantity", map[string]interface{}{"packagingTeam": "Team B", "packedQty": 0}},
		{"negative quantity", map[string]interface{}{"packagingTeam": "Team B", "packedQty": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.SaveDraft(w, testutil.JSONRequest("PUT", "/api/v1/packaging/"+rec.ID, tt.draft, "pack"), rec.ID)
			testutil.AssertStatus(t, w, 200)

			w = httptest.NewRecorder()
			h.Complete(w, testutil.JSONRequest("POST", "/complete", nil, "pack"), rec.ID)
			testutil.AssertStatus(t, w, 400)

			got, _ := st.PackagingRecords.Get(ctx, rec.ID)
			if got.IsCompleted || got.Status != models.PackagingInProgress {
				t.Errorf("refused completion changed record %+v", got)
			}
		})
	}

	notesAfter, _ := svc.ListNotifications(ctx, models.RoleSales, false)
	if len(notesAfter) != len(notesBefore) {
		t.Errorf("refused completions notified Sales: %d -> %d", len(notesBefore), len(notesAfter))
	}
	wo, _ := st.WorkOrders.Get(ctx, woID)
	if wo.Status == models.WOStatusPackagingCompleted {
		t.Error("refused completion closed the work order")
	}
}

func TestSetPhoto_EmptySlot(t *testing.T) {
	svc, _ := testutil.SetupService(t)
	h := &packaging.Handler{Svc: svc, Log: testutil.Logger()}
	woID := inspectedWorkOrder(t, svc)
	rec, err := svc.CreatePackaging(context.Background(), woID, "pack")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w := httptest.NewRecorder()
	h.SetPhoto(w, testutil.JSONRequest("PUT", "/api/v1/packaging/"+rec.ID+"/photos/", png("a.png"), "pack"), rec.ID, "")
	testutil.AssertStatus(t, w, 400)
}
