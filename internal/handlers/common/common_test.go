package common_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"millflow/internal/audit"
	"millflow/internal/handlers/common"
	"millflow/internal/models"
	"millflow/internal/store"
	"millflow/internal/testutil"

	"github.com/xuri/excelize/v2"
)

func newTestHandler(t *testing.T) (*common.Handler, *store.Store) {
	t.Helper()
	svc, st := testutil.SetupService(t)
	return &common.Handler{Svc: svc, Log: testutil.Logger()}, st
}

func seedWorkOrder(t *testing.T, h *common.Handler, st *store.Store) string {
	t.Helper()
	ctx := context.Background()
	so := &models.SalesOrder{ID: "SO-000001", ClientName: "Acme", Items: []models.LineItem{{Description: "Welded frame", Qty: 3}}}
	if err := st.SalesOrders.Insert(ctx, so); err != nil {
		t.Fatal(err)
	}
	g, err := h.Svc.CreateFromSalesOrder(ctx, so.ID, "sales")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Svc.ApproveWorkOrder(ctx, g.WorkOrder.ID, "manager"); err != nil {
		t.Fatal(err)
	}
	return g.WorkOrder.ID
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	h, st := newTestHandler(t)
	seedWorkOrder(t, h, st)

	w := httptest.NewRecorder()
	h.ListNotifications(w, testutil.JSONRequest("GET", "/api/v1/notifications?role=Production&unread=true", nil, ""))
	testutil.AssertStatus(t, w, 200)
	var notes []models.Notification
	testutil.DecodeEnvelope(t, w, &notes)
	if len(notes) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notes))
	}

	w = httptest.NewRecorder()
	h.MarkNotificationRead(w, testutil.JSONRequest("POST", "/api/v1/notifications/"+notes[0].ID+"/read", nil, ""), notes[0].ID)
	testutil.AssertStatus(t, w, 200)

	w = httptest.NewRecorder()
	h.ListNotifications(w, testutil.JSONRequest("GET", "/api/v1/notifications?role=Production&unread=true", nil, ""))
	testutil.DecodeEnvelope(t, w, &notes)
	if len(notes) != 0 {
		t.Errorf("expected no unread notifications, got %d", len(notes))
	}

	w = httptest.NewRecorder()
	h.MarkNotificationRead(w, testutil.JSONRequest("POST", "/api/v1/notifications/missing/read", nil, ""), "missing")
	testutil.AssertStatus(t, w, 404)

	w = httptest.NewRecorder()
	h.MarkAllNotificationsRead(w, testutil.JSONRequest("POST", "/api/v1/notifications/read-all", nil, ""))
	testutil.AssertStatus(t, w, 200)
}

func TestExportWorkOrders_CSV(t *testing.T) {
	h, st := newTestHandler(t)
	woID := seedWorkOrder(t, h, st)

	w := httptest.NewRecorder()
	h.ExportWorkOrders(w, testutil.JSONRequest("GET", "/api/v1/export/workorders", nil, "alice"))
	testutil.AssertStatus(t, w, 200)
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %s", ct)
	}
	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != woID || rows[1][2] != "Acme" {
		t.Errorf("unexpected csv %v", rows)
	}
	if !strings.Contains(rows[1][9], "Welding") {
		t.Errorf("expected operations column, got %q", rows[1][9])
	}

	entries, err := audit.List(context.Background(), st.DB(), "workorders", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range entries {
		if e.Action == audit.ActionExport && e.Username == "alice" {
			found = true
		}
	}
	if !found {
		t.Errorf("export was not audited: %+v", entries)
	}
}

func TestExportProduction_XLSX(t *testing.T) {
	h, st := newTestHandler(t)
	seedWorkOrder(t, h, st)

	w := httptest.NewRecorder()
	h.ExportProduction(w, testutil.JSONRequest("GET", "/api/v1/export/production?format=xlsx", nil, ""))
	testutil.AssertStatus(t, w, 200)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("not a workbook: %v", err)
	}
	defer f.Close()
	v, _ := f.GetCellValue("Production", "A1")
	if v != "Production ID" {
		t.Errorf("unexpected header %q", v)
	}
}

func TestExport_BadFormat(t *testing.T) {
	h, _ := newTestHandler(t)
	w := httptest.NewRecorder()
	h.ExportWorkOrders(w, testutil.JSONRequest("GET", "/api/v1/export/workorders?format=pdf", nil, ""))
	testutil.AssertStatus(t, w, 400)
}

func TestBackupRestore(t *testing.T) {
	h, st := newTestHandler(t)
	woID := seedWorkOrder(t, h, st)

	w := httptest.NewRecorder()
	h.Backup(w, testutil.JSONRequest("GET", "/api/v1/backup", nil, ""))
	testutil.AssertStatus(t, w, 200)
	var docs map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &docs); err != nil {
		t.Fatal(err)
	}
	if _, ok := docs[store.CollWorkOrders]; !ok {
		t.Fatalf("backup is missing workOrders: %s", w.Body.String())
	}

	if err := st.WorkOrders.Delete(context.Background(), woID); err != nil {
		t.Fatal(err)
	}

	w = httptest.NewRecorder()
	h.Restore(w, testutil.JSONRequest("POST", "/api/v1/restore", docs, "admin"))
	testutil.AssertStatus(t, w, 200)
	if _, err := st.WorkOrders.Get(context.Background(), woID); err != nil {
		t.Errorf("work order not restored: %v", err)
	}

	w = httptest.NewRecorder()
	h.Restore(w, httptest.NewRequest("POST", "/api/v1/restore", strings.NewReader("not json")))
	testutil.AssertStatus(t, w, 400)
}

func TestAuditLog(t *testing.T) {
	h, st := newTestHandler(t)
	woID := seedWorkOrder(t, h, st)

	w := httptest.NewRecorder()
	h.AuditLog(w, testutil.JSONRequest("GET", "/api/v1/audit?module=workorder&record_id="+woID, nil, ""))
	testutil.AssertStatus(t, w, http.StatusOK)
	var entries []audit.Entry
	testutil.DecodeEnvelope(t, w, &entries)
	if len(entries) != 2 || entries[0].Action != audit.ActionApprove {
		t.Errorf("expected create+approve newest first, got %+v", entries)
	}
}
