// Package sales serves the sales order endpoints.
package sales

import (
	"net/http"

	"millflow/internal/audit"
	"millflow/internal/models"
	"millflow/internal/response"
	"millflow/internal/workflow"

	"go.uber.org/zap"
)

// Handler holds dependencies for sales handlers.
type Handler struct {
	Svc *workflow.Service
	Log *zap.Logger
}

// ListSalesOrders handles GET /api/v1/salesorders?status=.
func (h *Handler) ListSalesOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Svc.ListSalesOrders(r.Context())
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := []models.SalesOrder{}
		for _, o := range orders {
			if o.Status == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	response.JSON(w, orders)
}

// GetSalesOrder handles GET /api/v1/salesorders/:id.
func (h *Handler) GetSalesOrder(w http.ResponseWriter, r *http.Request, id string) {
	so, err := h.Svc.GetSalesOrder(r.Context(), id)
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, so)
}

// CreateSalesOrder handles POST /api/v1/salesorders.
func (h *Handler) CreateSalesOrder(w http.ResponseWriter, r *http.Request) {
	var so models.SalesOrder
	if err := response.DecodeBody(r, &so); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	created, err := h.Svc.CreateSalesOrder(r.Context(), so, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, created)
}

// UpdateSalesOrder handles PUT /api/v1/salesorders/:id.
func (h *Handler) UpdateSalesOrder(w http.ResponseWriter, r *http.Request, id string) {
	var so models.SalesOrder
	if err := response.DecodeBody(r, &so); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	updated, err := h.Svc.UpdateSalesOrder(r.Context(), id, so, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, updated)
}

// DeleteSalesOrder handles DELETE /api/v1/salesorders/:id.
func (h *Handler) DeleteSalesOrder(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.Svc.DeleteSalesOrder(r.Context(), id, audit.GetUsername(r)); err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, map[string]string{"status": "deleted", "id": id})
}
