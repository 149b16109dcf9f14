package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"millflow/internal/audit"
	"millflow/internal/response"
)

const maxRestoreBytes = 64 << 20

// Backup handles GET /api/v1/backup. The body is the bare document map so it
// can be posted back to /restore unchanged.
func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Svc.Backup(r.Context())
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	name := fmt.Sprintf("millflow-backup-%s.json", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	json.NewEncoder(w).Encode(docs)
}

// Restore handles POST /api/v1/restore with a document map body.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRestoreBytes)
	var docs map[string]json.RawMessage
	if err := response.DecodeBody(r, &docs); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	res, err := h.Svc.Restore(r.Context(), docs, audit.GetUsername(r))
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, res)
}

// AuditLog handles GET /api/v1/audit?module=&record_id=&limit=.
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	fmt.Sscanf(q.Get("limit"), "%d", &limit)
	entries, err := audit.List(r.Context(), h.Svc.Store().DB(), q.Get("module"), q.Get("record_id"), limit)
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}
	response.JSON(w, entries)
}
