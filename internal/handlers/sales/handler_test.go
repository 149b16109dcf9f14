package sales_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"millflow/internal/handlers/sales"
	"millflow/internal/models"
	"millflow/internal/testutil"
)

func newTestHandler(t *testing.T) *sales.Handler {
	t.Helper()
	svc, _ := testutil.SetupService(t)
	return &sales.Handler{Svc: svc, Log: testutil.Logger()}
}

func TestSalesOrderCRUD(t *testing.T) {
	h := newTestHandler(t)

	body := map[string]interface{}{
		"clientName":   "Acme Textiles",
		"deliveryDate": "2026-04-01",
		"baseAmount":   10000,
		"discount":     500,
		"gstRate":      18,
		"items":        []map[string]interface{}{{"code": "FAB-1", "description": "Cotton fabric roll", "qty": 20, "unit": "m"}},
	}
	w := httptest.NewRecorder()
	h.CreateSalesOrder(w, testutil.JSONRequest("POST", "/api/v1/salesorders", body, "sales"))
	testutil.AssertStatus(t, w, 200)
	var created models.SalesOrder
	testutil.DecodeEnvelope(t, w, &created)
	if !strings.HasPrefix(created.ID, "SO-") || len(created.ID) != 9 {
		t.Errorf("expected SO-NNNNNN id, got %s", created.ID)
	}
	if created.GSTAmount != 1710 || created.TotalOrderValue != 11210 {
		t.Errorf("unexpected amounts gst=%v total=%v", created.GSTAmount, created.TotalOrderValue)
	}
	if created.Status != models.SOStatusDraft {
		t.Errorf("expected Draft, got %s", created.Status)
	}

	w = httptest.NewRecorder()
	h.ListSalesOrders(w, testutil.JSONRequest("GET", "/api/v1/salesorders?status=Draft", nil, ""))
	testutil.AssertStatus(t, w, 200)
	var orders []models.SalesOrder
	testutil.DecodeEnvelope(t, w, &orders)
	if len(orders) != 1 {
		t.Errorf("expected 1 order, got %d", len(orders))
	}

	body["status"] = "Under Review"
	body["version"] = created.Version
	w = httptest.NewRecorder()
	h.UpdateSalesOrder(w, testutil.JSONRequest("PUT", "/api/v1/salesorders/"+created.ID, body, "sales"), created.ID)
	testutil.AssertStatus(t, w, 200)

	// stale version
	w = httptest.NewRecorder()
	h.UpdateSalesOrder(w, testutil.JSONRequest("PUT", "/api/v1/salesorders/"+created.ID, body, "sales"), created.ID)
	testutil.AssertStatus(t, w, 409)

	w = httptest.NewRecorder()
	h.GetSalesOrder(w, testutil.JSONRequest("GET", "/api/v1/salesorders/"+created.ID, nil, ""), created.ID)
	testutil.AssertStatus(t, w, 200)
	var fetched models.SalesOrder
	testutil.DecodeEnvelope(t, w, &fetched)
	if fetched.Status != "Under Review" {
		t.Errorf("expected Under Review, got %s", fetched.Status)
	}

	w = httptest.NewRecorder()
	h.DeleteSalesOrder(w, testutil.JSONRequest("DELETE", "/api/v1/salesorders/"+created.ID, nil, ""), created.ID)
	testutil.AssertStatus(t, w, 200)

	w = httptest.NewRecorder()
	h.GetSalesOrder(w, testutil.JSONRequest("GET", "/api/v1/salesorders/"+created.ID, nil, ""), created.ID)
	testutil.AssertStatus(t, w, 404)
}

func TestCreateSalesOrder_Validation(t *testing.T) {
	h := newTestHandler(t)
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing client", map[string]interface{}{"baseAmount": 10}},
		{"bad status", map[string]interface{}{"clientName": "A", "status": "Shipped"}},
		{"bad date", map[string]interface{}{"clientName": "A", "deliveryDate": "next week"}},
		{"gst over 100", map[string]interface{}{"clientName": "A", "gstRate": 101}},
		{"discount over base", map[string]interface{}{"clientName": "A", "baseAmount": 10, "discount": 20}},
		{"negative qty", map[string]interface{}{"clientName": "A", "items": []map[string]interface{}{{"description": "x", "qty": -1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.CreateSalesOrder(w, testutil.JSONRequest("POST", "/api/v1/salesorders", tt.body, ""))
			testutil.AssertStatus(t, w, 400)
		})
	}

	w := httptest.NewRecorder()
	h.CreateSalesOrder(w, httptest.NewRequest("POST", "/api/v1/salesorders", strings.NewReader("{")))
	testutil.AssertStatus(t, w, 400)
}
