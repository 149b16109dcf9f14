// Package checklist holds the four-parameter quality checklist shared by the
// production floor and the QC inspection desk.
package checklist

import "time"

// Parameter and overall statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Parameter IDs in checklist order.
const (
	ParamHarry     = "harry"
	ParamMachinery = "machinery"
	ParamColor     = "color"
	ParamAssembly  = "assembly"
)

var parameterNames = []struct{ id, name string }{
	{ParamHarry, "Harry"},
	{ParamMachinery, "Machinery"},
	{ParamColor, "Color"},
	{ParamAssembly, "Assembly"},
}

// Result is one evaluated checklist parameter.
type Result struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CheckedBy string `json:"checkedBy,omitempty"`
	CheckedAt string `json:"checkedAt,omitempty"`
	Remarks   string `json:"remarks,omitempty"`
}

// New returns the fixed checklist with every parameter pending.
func New() []Result {
	out := make([]Result, len(parameterNames))
	for i, p := range parameterNames {
		out[i] = Result{ID: p.id, Name: p.name, Status: StatusPending}
	}
	return out
}

// IsValidDecision reports whether status is a final parameter decision.
func IsValidDecision(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

// OverallStatus reduces a checklist to a single status: rejected if any
// parameter is rejected, approved if all are approved, pending otherwise.
// An empty checklist is pending.
func OverallStatus(params []Result) string {
	if len(params) == 0 {
		return StatusPending
	}
	approved := 0
	for _, p := range params {
		switch p.Status {
		case StatusRejected:
			return StatusRejected
		case StatusApproved:
			approved++
		}
	}
	if approved == len(params) {
		return StatusApproved
	}
	return StatusPending
}

// Decided counts parameters that are no longer pending.
func Decided(params []Result) int {
	n := 0
	for _, p := range params {
		if p.Status != "" && p.Status != StatusPending {
			n++
		}
	}
	return n
}

// AllDecided reports whether every parameter has a decision.
func AllDecided(params []Result) bool {
	return len(params) > 0 && Decided(params) == len(params)
}

// Set records a decision on the parameter with the given id. It returns false
// when no such parameter exists.
func Set(params []Result, id, status, remarks, by string, at time.Time) bool {
	for i := range params {
		if params[i].ID != id {
			continue
		}
		params[i].Status = status
		params[i].Remarks = remarks
		params[i].CheckedBy = by
		params[i].CheckedAt = at.Format(time.RFC3339)
		return true
	}
	return false
}

// Rejected returns the parameters currently rejected.
func Rejected(params []Result) []Result {
	var out []Result
	for _, p := range params {
		if p.Status == StatusRejected {
			out = append(out, p)
		}
	}
	return out
}

// Merge lays submitted decisions over a fresh checklist, so the result
// always has the fixed parameters in order. IDs that are not on the
// checklist and IDs submitted more than once are returned separately;
// parameters that were not submitted stay pending.
func Merge(submitted []Result) (merged []Result, unknown, duplicate []string) {
	merged = New()
	seen := make(map[string]bool, len(submitted))
	for _, s := range submitted {
		i := indexOf(merged, s.ID)
		switch {
		case i < 0:
			unknown = append(unknown, s.ID)
			continue
		case seen[s.ID]:
			duplicate = append(duplicate, s.ID)
			continue
		}
		seen[s.ID] = true
		merged[i].Status = s.Status
		merged[i].Remarks = s.Remarks
		merged[i].CheckedBy = s.CheckedBy
		merged[i].CheckedAt = s.CheckedAt
	}
	return merged, unknown, duplicate
}

func indexOf(params []Result, id string) int {
	for i := range params {
		if params[i].ID == id {
			return i
		}
	}
	return -1
}
