package workflow

import (
	"context"
	"fmt"
	"strings"

	"millflow/internal/audit"
	"millflow/internal/models"
	"millflow/internal/store"
	"millflow/internal/validation"
)

// ApproveWorkOrder moves a pending work order to approved and readies it for
// production.
func (s *Service) ApproveWorkOrder(ctx context.Context, id, user string) (*models.WorkOrder, error) {
	var wo *models.WorkOrder
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		var err error
		wo, err = c.WorkOrders.Get(ctx, id)
		if err != nil {
			return err
		}
		if wo.ApprovalStatus != models.ApprovalPending {
			return fmt.Errorf("work order %s is %s: %w", id, wo.ApprovalStatus, ErrInvalidState)
		}
		wo.ApprovalStatus = models.ApprovalApproved
		wo.ProductionStatus = models.ProductionReady
		wo.Status = models.WOStatusApproved
		wo.ApprovedAt = s.stamp()
		wo.ApprovedBy = user
		wo.UpdatedAt = wo.ApprovedAt
		if err := c.WorkOrders.Update(ctx, wo); err != nil {
			return err
		}
		if err := audit.Log(ctx, c, user, audit.ActionApprove, "workorder", id, "Approved "+id); err != nil {
			return err
		}
		out.changed("workorder", "approved", id)
		return s.notify(ctx, c, out, "wo_approved",
			"Work Order Approved: "+id,
			fmt.Sprintf("%s for %s is approved and ready for production", id, orUnknown(wo.ClientName)),
			models.RoleProduction, id)
	})
	if err != nil {
		return nil, err
	}
	return wo, nil
}

// RejectWorkOrder rejects a pending work order. A reason is mandatory and
// rejection is terminal.
func (s *Service) RejectWorkOrder(ctx context.Context, id, reason, user string) (*models.WorkOrder, error) {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "reason", reason)
	validation.ValidateMaxLength(ve, "reason", reason, validation.MaxStringLength)
	if err := ve.Err(); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)

	var wo *models.WorkOrder
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		var err error
		wo, err = c.WorkOrders.Get(ctx, id)
		if err != nil {
			return err
		}
		if wo.ApprovalStatus != models.ApprovalPending {
			return fmt.Errorf("work order %s is %s: %w", id, wo.ApprovalStatus, ErrInvalidState)
		}
		wo.ApprovalStatus = models.ApprovalRejected
		wo.Status = models.WOStatusRejected
		wo.RejectionReason = reason
		wo.RejectedAt = s.stamp()
		wo.RejectedBy = user
		wo.UpdatedAt = wo.RejectedAt
		if err := c.WorkOrders.Update(ctx, wo); err != nil {
			return err
		}
		if err := audit.Log(ctx, c, user, audit.ActionReject, "workorder", id, "Rejected "+id+": "+reason); err != nil {
			return err
		}
		out.changed("workorder", "rejected", id)
		return s.notify(ctx, c, out, "wo_rejected",
			"Work Order Rejected: "+id,
			fmt.Sprintf("%s (%s) was rejected: %s", id, wo.SONumber, reason),
			models.RoleSales, id)
	})
	if err != nil {
		return nil, err
	}
	return wo, nil
}

// DeleteWorkOrder removes a work order. The source sales order keeps its
// hasWorkOrder flag and dependent records are left in place.
func (s *Service) DeleteWorkOrder(ctx context.Context, id, user string) error {
	return s.commit(ctx, func(c *store.Collections, out *outbox) error {
		if err := c.WorkOrders.Delete(ctx, id); err != nil {
			return err
		}
		out.changed("workorder", "deleted", id)
		return audit.Log(ctx, c, user, audit.ActionDelete, "workorder", id, "Deleted "+id)
	})
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
