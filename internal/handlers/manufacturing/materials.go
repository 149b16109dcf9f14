package manufacturing

import (
	"net/http"

	"millflow/internal/audit"
	"millflow/internal/models"
	"millflow/internal/response"
)

// ListStock handles GET /api/v1/stock.
func (h *Handler) ListStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.ListStock(r.Context())
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, items)
}

// CreateStockItem handles POST /api/v1/stock.
func (h *Handler) CreateStockItem(w http.ResponseWriter, r *http.Request) {
	var item models.StockItem
	if err := response.DecodeBody(r, &item); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	created, err := h.Svc.CreateStockItem(r.Context(), item, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, created)
}

// UpdateStockItem handles PUT /api/v1/stock/:id.
func (h *Handler) UpdateStockItem(w http.ResponseWriter, r *http.Request, id string) {
	var item models.StockItem
	if err := response.DecodeBody(r, &item); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	updated, err := h.Svc.UpdateStockItem(r.Context(), id, item, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, updated)
}

// DeleteStockItem handles DELETE /api/v1/stock/:id.
func (h *Handler) DeleteStockItem(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.Svc.DeleteStockItem(r.Context(), id, audit.GetUsername(r)); err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, map[string]string{"status": "deleted", "id": id})
}

// ListMaterialRequests handles GET /api/v1/materialrequests?status=.
func (h *Handler) ListMaterialRequests(w http.ResponseWriter, r *http.Request) {
	mrs, err := h.Svc.ListMaterialRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, mrs)
}

// FulfillMaterialRequest handles POST /api/v1/materialrequests/:id/fulfill.
func (h *Handler) FulfillMaterialRequest(w http.ResponseWriter, r *http.Request, id string) {
	mr, err := h.Svc.FulfillMaterialRequest(r.Context(), id, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, mr)
}
