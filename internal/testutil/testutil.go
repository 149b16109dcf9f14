package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"millflow/internal/config"
	"millflow/internal/models"
	"millflow/internal/store"
	"millflow/internal/workflow"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SetupTestDB opens an in-memory SQLite database. The pool is pinned to one
// connection so every query sees the same in-memory database.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	testDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	testDB.SetMaxOpenConns(1)
	t.Cleanup(func() { testDB.Close() })
	return testDB
}

// SetupTestStore returns a migrated store on an in-memory database.
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(SetupTestDB(t))
	if err != nil {
		t.Fatalf("Failed to migrate test store: %v", err)
	}
	return s
}

// SetupService returns a workflow service over a fresh store. Its clock
// starts at 2026-03-10 09:00 UTC and steps one millisecond per reading.
func SetupService(t *testing.T, opts ...workflow.Option) (*workflow.Service, *store.Store) {
	t.Helper()
	st := SetupTestStore(t)
	clock := SteppingClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), time.Millisecond)
	opts = append([]workflow.Option{workflow.WithClock(clock)}, opts...)
	return workflow.New(st, config.Default(), Logger(), opts...), st
}

// PNGDataURI is a minimal payload that sniffs as image/png.
const PNGDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg=="

// Logger returns a no-op logger for handlers under test.
func Logger() *zap.Logger {
	return zap.NewNop()
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// SteppingClock returns a clock that starts at t and advances by step on
// every call, so timestamp-derived ids stay distinct.
func SteppingClock(t time.Time, step time.Duration) func() time.Time {
	cur := t.Add(-step)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

// JSONRequest builds a request with a JSON body and the acting user header.
func JSONRequest(method, path string, body interface{}, user string) *http.Request {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set("X-User", user)
	}
	return req
}

// AssertStatus checks that the HTTP status code matches expected.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// DecodeEnvelope decodes an API response envelope and extracts the data.
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var resp models.APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode API envelope: %v", err)
	}
	dataBytes, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(dataBytes, v); err != nil {
		t.Fatalf("Failed to decode data from envelope: %v", err)
	}
}

// DecodeError returns the "error" field of a failed response.
func DecodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return body["error"]
}
