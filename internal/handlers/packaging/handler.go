// Package packaging serves packing of QC-approved work orders.
package packaging

import (
	"net/http"

	"millflow/internal/audit"
	"millflow/internal/models"
	"millflow/internal/response"
	"millflow/internal/workflow"

	"go.uber.org/zap"
)

// Handler holds dependencies for packaging handlers.
type Handler struct {
	Svc *workflow.Service
	Log *zap.Logger
}

// List handles GET /api/v1/packaging. ?status= filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Svc.ListPackaging(r.Context())
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := []models.PackagingRecord{}
		for _, p := range recs {
			if p.Status == status {
				filtered = append(filtered, p)
			}
		}
		recs = filtered
	}
	response.JSON(w, recs)
}

// Eligible handles GET /api/v1/packaging/eligible.
func (h *Handler) Eligible(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.EligibleForPackaging(r.Context())
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.Svc.GetPackaging(r.Context(), id)
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, rec)
}

// Create handles POST /api/v1/packaging with {"woNumber":...}.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WONumber string `json:"woNumber"`
	}
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	rec, err := h.Svc.CreatePackaging(r.Context(), req.WONumber, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, rec)
}

// SaveDraft handles PUT /api/v1/packaging/:id.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request, id string) {
	var d workflow.PackagingDraft
	if err := response.DecodeBody(r, &d); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	rec, err := h.Svc.SavePackagingDraft(r.Context(), id, d, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, rec)
}

// SetPhoto handles PUT /api/v1/packaging/:id/photos/:slot.
func (h *Handler) SetPhoto(w http.ResponseWriter, r *http.Request, id, slot string) {
	var p models.Photo
	if err := response.DecodeBody(r, &p); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	rec, err := h.Svc.SetPackagingPhoto(r.Context(), id, slot, p, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, rec)
}

// Complete handles POST /api/v1/packaging/:id/complete.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.Svc.CompletePackaging(r.Context(), id, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, rec)
}

// Label handles GET /api/v1/packaging/:id/label and returns a PNG QR code.
func (h *Handler) Label(w http.ResponseWriter, r *http.Request, id string) {
	png, err := h.Svc.PackagingLabel(r.Context(), id)
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", "inline; filename="+id+".png")
	w.Write(png)
}
