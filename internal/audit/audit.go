package audit

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
)

// Action constants.
const (
	ActionCreate   = "CREATE"
	ActionUpdate   = "UPDATE"
	ActionDelete   = "DELETE"
	ActionExport   = "EXPORT"
	ActionApprove  = "APPROVE"
	ActionReject   = "REJECT"
	ActionStart    = "START"
	ActionComplete = "COMPLETE"
	ActionRestore  = "RESTORE"
)

// Execer is anything that can run a statement, typically a transaction-bound
// store.Collections.
type Execer interface {
	Exec(ctx context.Context, query string, args ...any) error
}

// Entry is one audit log row.
type Entry struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Action    string `json:"action"`
	Module    string `json:"module"`
	RecordID  string `json:"recordId"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"createdAt"`
}

// Log writes an audit entry through ex so it commits with the change it
// describes.
func Log(ctx context.Context, ex Execer, username, action, module, recordID, summary string) error {
	if username == "" {
		username = "system"
	}
	err := ex.Exec(ctx, "INSERT INTO audit_log (username, action, module, record_id, summary) VALUES (?, ?, ?, ?, ?)",
		username, action, module, recordID, summary)
	if err != nil {
		return fmt.Errorf("audit log: %w", err)
	}
	return nil
}

// List returns the newest entries first, optionally filtered by module and
// record id.
func List(ctx context.Context, db *sql.DB, module, recordID string, limit int) ([]Entry, error) {
	query := "SELECT id, COALESCE(username,''), action, module, record_id, COALESCE(summary,''), created_at FROM audit_log"
	var conditions []string
	var args []interface{}
	if module != "" {
		conditions = append(conditions, "module=?")
		args = append(args, module)
	}
	if recordID != "" {
		conditions = append(conditions, "record_id=?")
		args = append(args, recordID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &e.Module, &e.RecordID, &e.Summary, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetUsername returns the acting user named by the X-User header. Nothing
// verifies it; it is only used to stamp records.
func GetUsername(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get("X-User")); u != "" {
		return u
	}
	return "system"
}

// GetClientIP extracts the real client IP from the request (handles proxies).
func GetClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
