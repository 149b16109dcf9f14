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

	"go.uber.org/zap"
)

// StartProductionRequest carries the operator's readiness confirmations.
type StartProductionRequest struct {
	WOID       string   `json:"woId"`
	TeamLeader string   `json:"teamLeader"`
	Operators  []string `json:"operators"`
	TechCheck  bool     `json:"techCheck"`
	BOMCheck   bool     `json:"bomCheck"`
}

// MaterialsAvailable reports whether every requirement of wo is covered by
// stock or by a fulfilled material request.
func MaterialsAvailable(wo *models.WorkOrder) bool {
	if wo.MaterialRequestStatus == models.MRStatusFulfilled {
		return true
	}
	for _, r := range wo.MaterialRequirements {
		if !r.StockAvailable {
			return false
		}
	}
	return true
}

// StartProduction opens a production record for an approved work order.
func (s *Service) StartProduction(ctx context.Context, req StartProductionRequest, user string) (*models.ProductionRecord, error) {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "woId", req.WOID)
	validation.RequireField(ve, "teamLeader", req.TeamLeader)
	if !req.TechCheck {
		ve.Add("techCheck", "must be confirmed")
	}
	if !req.BOMCheck {
		ve.Add("bomCheck", "must be confirmed")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	var rec *models.ProductionRecord
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		wo, err := c.WorkOrders.Get(ctx, req.WOID)
		if err != nil {
			return err
		}
		if wo.ApprovalStatus != models.ApprovalApproved {
			return fmt.Errorf("work order %s is not approved: %w", wo.ID, ErrInvalidState)
		}
		if wo.ProductionStatus != models.ProductionReady {
			return fmt.Errorf("work order %s production is %s: %w", wo.ID, wo.ProductionStatus, ErrInvalidState)
		}
		if !MaterialsAvailable(wo) {
			return fmt.Errorf("work order %s has materials outstanding: %w", wo.ID, ErrInvalidState)
		}

		now := s.now()
		at := s.stamp()
		operators := make([]string, 0, len(req.Operators))
		for _, o := range req.Operators {
			if o = strings.TrimSpace(o); o != "" {
				operators = append(operators, o)
			}
		}
		params := checklist.New()
		rec = &models.ProductionRecord{
			ID:                s.ids.stampID("PROD", now),
			WOID:              wo.ID,
			TeamLeader:        strings.TrimSpace(req.TeamLeader),
			Operators:         operators,
			TechCheck:         models.PreCheck{Status: true, CheckedAt: at, CheckedBy: user},
			BOMCheck:          models.PreCheck{Status: true, CheckedAt: at, CheckedBy: user},
			MaterialCheck:     models.PreCheck{Status: true, CheckedAt: at, CheckedBy: "system"},
			QCParameters:      params,
			TotalOperations:   len(params),
			ProductionStarted: true,
			StartedAt:         at,
		}
		if err := c.ProductionRecords.Insert(ctx, rec); err != nil {
			return err
		}

		wo.ProductionStatus = models.ProductionInProgress
		wo.Status = models.WOStatusInProduction
		wo.ProductionID = rec.ID
		wo.UpdatedAt = at
		if err := c.WorkOrders.Update(ctx, wo); err != nil {
			return err
		}
		if err := s.setSalesOrderStatus(ctx, c, out, wo.SONumber, models.SOStatusInProduction); err != nil {
			return err
		}
		out.changed("production", "created", rec.ID)
		out.changed("workorder", "updated", wo.ID)
		return audit.Log(ctx, c, user, audit.ActionStart, "production", rec.ID,
			fmt.Sprintf("Started production %s for %s (leader %s)", rec.ID, wo.ID, rec.TeamLeader))
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("production started", zap.String("production", rec.ID), zap.String("wo", rec.WOID))
	return rec, nil
}

// SetProductionParameter records an approve/reject decision on one checklist
// parameter of an open production record.
func (s *Service) SetProductionParameter(ctx context.Context, prodID, paramID, status, remarks, user string) (*models.ProductionRecord, error) {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "status", status)
	validation.ValidateEnum(ve, "status", status, validation.ValidDecisions)
	validation.ValidateMaxLength(ve, "remarks", remarks, validation.MaxStringLength)
	if err := ve.Err(); err != nil {
		return nil, err
	}

	var rec *models.ProductionRecord
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		var err error
		rec, err = c.ProductionRecords.Get(ctx, prodID)
		if err != nil {
			return err
		}
		if rec.ProductionCompleted {
			return fmt.Errorf("production %s is completed: %w", prodID, ErrInvalidState)
		}
		if !checklist.Set(rec.QCParameters, paramID, status, remarks, user, s.now()) {
			ve.Add("param", "unknown parameter "+paramID)
			return ve
		}
		rec.CompletedOperations = checklist.Decided(rec.QCParameters)
		if err := c.ProductionRecords.Update(ctx, rec); err != nil {
			return err
		}
		out.changed("production", "updated", rec.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CompleteProduction closes a production record once every parameter is
// decided. Any rejected parameter fails the run.
func (s *Service) CompleteProduction(ctx context.Context, prodID, user string) (*models.ProductionRecord, error) {
	var rec *models.ProductionRecord
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		var err error
		rec, err = c.ProductionRecords.Get(ctx, prodID)
		if err != nil {
			return err
		}
		if rec.ProductionCompleted {
			return fmt.Errorf("production %s is completed: %w", prodID, ErrInvalidState)
		}
		if !checklist.AllDecided(rec.QCParameters) {
			ve := &validation.ValidationErrors{}
			for _, p := range rec.QCParameters {
				if p.Status == checklist.StatusPending {
					ve.Add("qcParameters."+p.ID, "must be approved or rejected")
				}
			}
			return ve
		}

		at := s.stamp()
		rec.FinalStatus = checklist.OverallStatus(rec.QCParameters)
		rec.ProductionCompleted = true
		rec.CompletedAt = at
		rec.CompletedBy = user
		rec.CompletedOperations = checklist.Decided(rec.QCParameters)
		if err := c.ProductionRecords.Update(ctx, rec); err != nil {
			return err
		}

		wo, err := c.WorkOrders.Get(ctx, rec.WOID)
		switch {
		case err == nil:
			if rec.FinalStatus == checklist.StatusRejected {
				wo.Status = models.WOStatusQCRejected
				wo.ProductionStatus = models.ProductionFailed
			} else {
				wo.Status = models.WOStatusCompleted
				wo.ProductionStatus = models.ProductionCompleted
			}
			wo.UpdatedAt = at
			if err := c.WorkOrders.Update(ctx, wo); err != nil {
				return err
			}
			out.changed("workorder", "updated", wo.ID)
		case isNotFound(err):
			s.log.Warn("production completed for missing work order", zap.String("wo", rec.WOID))
		default:
			return err
		}

		out.changed("production", "completed", rec.ID)
		if err := audit.Log(ctx, c, user, audit.ActionComplete, "production", rec.ID,
			fmt.Sprintf("Completed %s for %s: %s", rec.ID, rec.WOID, rec.FinalStatus)); err != nil {
			return err
		}
		msg := fmt.Sprintf("Production for %s finished with all parameters approved", rec.WOID)
		if rec.FinalStatus == checklist.StatusRejected {
			var names []string
			for _, p := range checklist.Rejected(rec.QCParameters) {
				names = append(names, p.Name)
			}
			msg = fmt.Sprintf("Production for %s failed QC: %s", rec.WOID, strings.Join(names, ", "))
		}
		return s.notify(ctx, c, out, "production_completed", "Production "+rec.FinalStatus+": "+rec.WOID, msg,
			strings.Join([]string{models.RoleAdmin, models.RoleSales, models.RoleQC}, ","), rec.ID)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// setSalesOrderStatus updates the source sales order when it still exists.
func (s *Service) setSalesOrderStatus(ctx context.Context, c *store.Collections, out *outbox, soID, status string) error {
	if soID == "" {
		return nil
	}
	so, err := c.SalesOrders.Get(ctx, soID)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	so.Status = status
	so.UpdatedAt = s.stamp()
	if err := c.SalesOrders.Update(ctx, so); err != nil {
		return err
	}
	out.changed("sales_order", "updated", so.ID)
	return nil
}
