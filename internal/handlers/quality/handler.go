// Package quality serves QC inspections of finished production.
package quality

import (
	"net/http"

	"millflow/internal/audit"
	"millflow/internal/response"
	"millflow/internal/workflow"

	"go.uber.org/zap"
)

// Handler holds dependencies for quality handlers.
type Handler struct {
	Svc *workflow.Service
	Log *zap.Logger
}

// ListInspections handles GET /api/v1/qc. ?wo= narrows to one work order.
func (h *Handler) ListInspections(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Svc.ListInspections(r.Context())
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	if wo := r.URL.Query().Get("wo"); wo != "" {
		filtered := recs[:0]
		for _, q := range recs {
			if q.WONumber == wo {
				filtered = append(filtered, q)
			}
		}
		recs = filtered
	}
	response.JSON(w, recs)
}

// GetInspection handles GET /api/v1/qc/:id.
func (h *Handler) GetInspection(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.Svc.GetInspection(r.Context(), id)
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, rec)
}

// SubmitInspection handles POST /api/v1/qc.
func (h *Handler) SubmitInspection(w http.ResponseWriter, r *http.Request) {
	var sub workflow.QCSubmission
	if err := response.DecodeBody(r, &sub); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	rec, err := h.Svc.SubmitInspection(r.Context(), sub, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, rec)
}
