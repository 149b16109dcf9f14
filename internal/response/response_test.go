package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"millflow/internal/response"
	"millflow/internal/store"
	"millflow/internal/testutil"
	"millflow/internal/validation"
	"millflow/internal/workflow"
)

func TestStatusFor(t *testing.T) {
	ve := &validation.ValidationErrors{}
	ve.Add("reason", "is required")
	tests := []struct {
		err  error
		want int
	}{
		{ve, http.StatusBadRequest},
		{fmt.Errorf("workOrders WO-1: %w", store.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("wo: %w", workflow.ErrInvalidState), http.StatusConflict},
		{fmt.Errorf("update: %w", store.ErrConflict), http.StatusConflict},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := response.StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestFail_HidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	response.Fail(w, testutil.Logger(), errors.New("sql: connection refused"))
	testutil.AssertStatus(t, w, http.StatusInternalServerError)
	if msg := testutil.DecodeError(t, w); msg != "internal error" {
		t.Errorf("leaked error detail: %q", msg)
	}
}
