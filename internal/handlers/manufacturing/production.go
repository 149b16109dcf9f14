package manufacturing

import (
	"net/http"

	"millflow/internal/audit"
	"millflow/internal/response"
	"millflow/internal/workflow"
)

// ListProduction handles GET /api/v1/production. With ?ready=true it lists
// approved work orders waiting to start instead.
func (h *Handler) ListProduction(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("ready") == "true" {
		wos, err := h.Svc.ReadyForProduction(r.Context())
		if err != nil {
			response.Fail(w, h.Log, err)
			return
		}
		response.JSON(w, wos)
		return
	}
	views, err := h.Svc.ListProduction(r.Context())
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, views)
}

// GetProduction handles GET /api/v1/production/:id.
func (h *Handler) GetProduction(w http.ResponseWriter, r *http.Request, id string) {
	v, err := h.Svc.GetProduction(r.Context(), id)
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, v)
}

// StartProduction handles POST /api/v1/production.
func (h *Handler) StartProduction(w http.ResponseWriter, r *http.Request) {
	var req workflow.StartProductionRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	rec, err := h.Svc.StartProduction(r.Context(), req, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, rec)
}

// SetParameter handles PUT /api/v1/production/:id/parameters/:param with
// {"status":"approved|rejected","remarks":...}.
func (h *Handler) SetParameter(w http.ResponseWriter, r *http.Request, id, param string) {
	var req struct {
		Status  string `json:"status"`
		Remarks string `json:"remarks"`
	}
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	rec, err := h.Svc.SetProductionParameter(r.Context(), id, param, req.Status, req.Remarks, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, rec)
}

// CompleteProduction handles POST /api/v1/production/:id/complete.
func (h *Handler) CompleteProduction(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.Svc.CompleteProduction(r.Context(), id, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, rec)
}
