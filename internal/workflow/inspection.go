package workflow

import (
	"context"
	"fmt"
	"strings"

	"millflow/internal/audit"
	"millflow/internal/checklist"
	"millflow/internal/models"
	"millflow/internal/store"
	"millflow/internal/validation"
)

// QC actions.
const (
	QCActionApprove = "approve"
	QCActionReject  = "reject"
)

// QCSubmission is one inspection as submitted by the inspector.
type QCSubmission struct {
	WONumber         string             `json:"woNumber"`
	InspectorName    string             `json:"inspectorName"`
	Parameters       []checklist.Result `json:"parameters"`
	RejectionRemarks string             `json:"rejectionRemarks"`
	Photographs      []models.Photo     `json:"photographs"`
	Action           string             `json:"action"`
}

// Validate checks the submission against the fixed checklist. It returns
// the merged checklist and the overall status it implies.
func (q *QCSubmission) Validate(ve *validation.ValidationErrors) ([]checklist.Result, string) {
	validation.RequireField(ve, "woNumber", q.WONumber)
	validation.RequireField(ve, "inspectorName", q.InspectorName)
	validation.ValidateMaxLength(ve, "inspectorName", q.InspectorName, validation.MaxStringLength)
	validation.RequireField(ve, "action", q.Action)
	validation.ValidateEnum(ve, "action", q.Action, validation.ValidQCActions)
	if len(q.Parameters) == 0 {
		ve.Add("parameters", "are required")
	}
	params, unknown, duplicate := checklist.Merge(q.Parameters)
	for _, id := range unknown {
		ve.Add("parameters."+id, "is not a checklist parameter")
	}
	for _, id := range duplicate {
		ve.Add("parameters."+id, "is submitted more than once")
	}
	for _, p := range params {
		if !checklist.IsValidDecision(p.Status) {
			ve.Add("parameters."+p.ID, "must be approved or rejected")
		}
	}
	overall := checklist.OverallStatus(params)
	if overall == checklist.StatusRejected && strings.TrimSpace(q.RejectionRemarks) == "" {
		ve.Add("rejectionRemarks", "required when a parameter is rejected")
	}
	if q.Action == QCActionApprove && overall == checklist.StatusRejected {
		ve.Add("action", "cannot approve with rejected parameters")
	}
	if q.Action == QCActionReject && overall == checklist.StatusApproved {
		ve.Add("action", "cannot reject when every parameter is approved")
	}
	return params, overall
}

// SubmitInspection records a QC inspection and moves the work order on
// (approved) or back to production (rejected).
func (s *Service) SubmitInspection(ctx context.Context, sub QCSubmission, user string) (*models.QCRecord, error) {
	ve := &validation.ValidationErrors{}
	params, overall := sub.Validate(ve)
	photos := make([]models.Photo, 0, len(sub.Photographs))
	for i, p := range sub.Photographs {
		if ph := s.acceptPhoto(ve, fmt.Sprintf("photographs[%d]", i), p); ph != nil {
			photos = append(photos, *ph)
		}
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	var rec *models.QCRecord
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		wo, err := c.WorkOrders.Get(ctx, sub.WONumber)
		if err != nil {
			return err
		}
		at := s.stamp()
		for i := range params {
			if params[i].CheckedAt == "" {
				params[i].CheckedAt = at
			}
			if params[i].CheckedBy == "" {
				params[i].CheckedBy = sub.InspectorName
			}
		}
		rec = &models.QCRecord{
			ID:               s.ids.stampID("QC", s.now()),
			WONumber:         wo.ID,
			InspectorName:    strings.TrimSpace(sub.InspectorName),
			Parameters:       params,
			OverallStatus:    overall,
			RejectionRemarks: strings.TrimSpace(sub.RejectionRemarks),
			Photographs:      photos,
			SubmittedAt:      at,
		}
		if err := c.QCRecords.Insert(ctx, rec); err != nil {
			return err
		}

		wo.QCStatus = overall
		wo.QCRemarks = rec.RejectionRemarks
		if overall == checklist.StatusApproved {
			wo.Status = models.WOStatusCompleted
		} else {
			wo.Status = models.WOStatusInProduction
		}
		wo.UpdatedAt = at
		if err := c.WorkOrders.Update(ctx, wo); err != nil {
			return err
		}

		action := audit.ActionApprove
		if overall == checklist.StatusRejected {
			action = audit.ActionReject
		}
		if err := audit.Log(ctx, c, user, action, "qc", rec.ID,
			fmt.Sprintf("QC %s for %s by %s", overall, wo.ID, rec.InspectorName)); err != nil {
			return err
		}
		out.changed("qc", "created", rec.ID)
		out.changed("workorder", "updated", wo.ID)

		if overall == checklist.StatusApproved {
			return s.notify(ctx, c, out, "qc_approved", "QC Approved: "+wo.ID,
				fmt.Sprintf("%s passed inspection by %s and is ready for packaging", wo.ID, rec.InspectorName),
				models.RolePackaging+","+models.RoleAdmin, rec.ID)
		}
		return s.notify(ctx, c, out, "qc_rejected", "QC Rejected: "+wo.ID,
			fmt.Sprintf("%s failed inspection: %s", wo.ID, rec.RejectionRemarks),
			models.RoleProduction, rec.ID)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetInspection returns one QC record.
func (s *Service) GetInspection(ctx context.Context, id string) (*models.QCRecord, error) {
	return s.store.QCRecords.Get(ctx, id)
}

// ListInspections returns QC records, newest first.
func (s *Service) ListInspections(ctx context.Context) ([]models.QCRecord, error) {
	recs, err := s.store.QCRecords.List(ctx)
	if err != nil {
		return nil, err
	}
	reverse(recs)
	return recs, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
