package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"millflow/internal/models"
	"millflow/internal/store"
	"millflow/internal/validation"
	"millflow/internal/workflow"

	"go.uber.org/zap"
)

// JSON writes a successful API response with the given data.
func JSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.APIResponse{Data: data})
}

// JSONMeta writes a successful API response with pagination metadata.
func JSONMeta(w http.ResponseWriter, data interface{}, total, page, limit int) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.APIResponse{
		Data: data,
		Meta: &models.Meta{Total: total, Page: page, Limit: limit},
	})
}

// Err writes a JSON error response with the given message and HTTP status code.
func Err(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	var ve *validation.ValidationErrors
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidState), errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Fail writes err with the status StatusFor picks. Internal errors are logged
// and their detail is not sent to the client.
func Fail(w http.ResponseWriter, log *zap.Logger, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		Err(w, "internal error", code)
		return
	}
	Err(w, err.Error(), code)
}

// DecodeBody decodes a JSON request body into the given value.
func DecodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
