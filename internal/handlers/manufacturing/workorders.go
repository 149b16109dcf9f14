package manufacturing

import (
	"net/http"

	"millflow/internal/audit"
	"millflow/internal/models"
	"millflow/internal/response"
)

// ListWorkOrders handles GET /api/v1/workorders. Every call first generates
// work orders for sales orders that have none.
func (h *Handler) ListWorkOrders(w http.ResponseWriter, r *http.Request) {
	wos, err := h.Svc.ListWorkOrders(r.Context())
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	q := r.URL.Query()
	status, approval := q.Get("status"), q.Get("approval")
	if status != "" || approval != "" {
		filtered := []models.WorkOrder{}
		for _, wo := range wos {
			if (status == "" || wo.Status == status) && (approval == "" || wo.ApprovalStatus == approval) {
				filtered = append(filtered, wo)
			}
		}
		wos = filtered
	}
	response.JSON(w, wos)
}

// GetWorkOrder handles GET /api/v1/workorders/:id.
func (h *Handler) GetWorkOrder(w http.ResponseWriter, r *http.Request, id string) {
	wo, err := h.Svc.GetWorkOrder(r.Context(), id)
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, wo)
}

// CreateFromSalesOrder handles POST /api/v1/workorders/from-so/:soId.
func (h *Handler) CreateFromSalesOrder(w http.ResponseWriter, r *http.Request, soID string) {
	g, err := h.Svc.CreateFromSalesOrder(r.Context(), soID, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, g)
}

// ApproveWorkOrder handles POST /api/v1/workorders/:id/approve.
func (h *Handler) ApproveWorkOrder(w http.ResponseWriter, r *http.Request, id string) {
	wo, err := h.Svc.ApproveWorkOrder(r.Context(), id, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, wo)
}

// RejectWorkOrder handles POST /api/v1/workorders/:id/reject with {"reason":...}.
func (h *Handler) RejectWorkOrder(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	wo, err := h.Svc.RejectWorkOrder(r.Context(), id, req.Reason, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, wo)
}

// DeleteWorkOrder handles DELETE /api/v1/workorders/:id.
func (h *Handler) DeleteWorkOrder(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.Svc.DeleteWorkOrder(r.Context(), id, audit.GetUsername(r)); err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, map[string]string{"status": "deleted", "id": id})
}
