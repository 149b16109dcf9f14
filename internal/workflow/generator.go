package workflow

import (
	"context"
	"errors"
	"fmt"

	"millflow/internal/audit"
	"millflow/internal/models"
	"millflow/internal/store"

	"go.uber.org/zap"
)

// Generated is the outcome of generating a work order from a sales order.
type Generated struct {
	WorkOrder       *models.WorkOrder       `json:"workOrder"`
	MaterialRequest *models.MaterialRequest `json:"materialRequest,omitempty"`
}

// SyncPending generates a work order for every sales order not yet flagged
// hasWorkOrder. Orders that fail are logged and skipped; the count of
// generated work orders is returned.
func (s *Service) SyncPending(ctx context.Context) (int, error) {
	orders, err := s.store.SalesOrders.List(ctx)
	if err != nil {
		return 0, err
	}
	generated := 0
	for i := range orders {
		so := &orders[i]
		if so.HasWorkOrder || so.ID == "" {
			continue
		}
		_, err := s.generateFor(ctx, so.ID, "system", true)
		switch {
		case err == nil:
			generated++
		case errors.Is(err, ErrInvalidState), errors.Is(err, store.ErrConflict):
			// another writer got there first
		default:
			s.log.Warn("work order generation skipped", zap.String("so", so.ID), zap.Error(err))
		}
	}
	return generated, nil
}

// CreateFromSalesOrder is the manual "create from SO" action.
func (s *Service) CreateFromSalesOrder(ctx context.Context, soID, user string) (*Generated, error) {
	return s.generateFor(ctx, soID, user, false)
}

func (s *Service) generateFor(ctx context.Context, soID, user string, auto bool) (*Generated, error) {
	var g *Generated
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		so, err := c.SalesOrders.Get(ctx, soID)
		if err != nil {
			return err
		}
		if so.HasWorkOrder {
			return fmt.Errorf("sales order %s already has work order %s: %w", so.ID, so.WorkOrderID, ErrInvalidState)
		}
		g, err = s.generate(ctx, c, out, so, user, auto)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("work order generated",
		zap.String("so", soID),
		zap.String("wo", g.WorkOrder.ID),
		zap.String("priority", g.WorkOrder.Priority),
		zap.Bool("material_request", g.MaterialRequest != nil))
	return g, nil
}

func (s *Service) generate(ctx context.Context, c *store.Collections, out *outbox, so *models.SalesOrder, user string, auto bool) (*Generated, error) {
	now := s.now()
	stock, err := c.StoreStock.List(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := c.WorkOrders.List(ctx)
	if err != nil {
		return nil, err
	}

	plan := s.planner.Build(so, stock, now)
	wo := &models.WorkOrder{
		ID:                   nextWorkOrderID(existing, now),
		SONumber:             so.ID,
		ClientName:           so.ClientName,
		CompanyName:          so.CompanyName,
		DeliveryDate:         so.DeliveryDate,
		ExpectedCompletion:   plan.ExpectedCompletion,
		Items:                append([]models.LineItem(nil), so.Items...),
		RequiredOperations:   plan.RequiredOperations,
		MaterialRequirements: plan.MaterialRequirements,
		ApprovalStatus:       models.ApprovalPending,
		ProductionStatus:     models.ProductionPending,
		Status:               plan.Status,
		Priority:             plan.Priority,
		CreatedAt:            s.stamp(),
	}
	if wo.Items == nil {
		wo.Items = []models.LineItem{}
	}

	g := &Generated{WorkOrder: wo}
	if len(plan.Shortfalls) > 0 {
		mr := &models.MaterialRequest{
			ID:        s.ids.stampID("MR", now),
			WONumber:  wo.ID,
			Items:     plan.Shortfalls,
			Status:    models.MRStatusPending,
			CreatedAt: s.stamp(),
		}
		wo.HasMaterialRequest = true
		wo.MaterialRequestID = mr.ID
		wo.MaterialRequestStatus = models.MRStatusPending
		if err := c.MaterialRequests.Insert(ctx, mr); err != nil {
			return nil, err
		}
		g.MaterialRequest = mr
		out.changed("material_request", "created", mr.ID)
	}
	if err := c.WorkOrders.Insert(ctx, wo); err != nil {
		return nil, err
	}

	so.HasWorkOrder = true
	so.WorkOrderID = wo.ID
	so.Status = models.SOStatusWOGenerated
	so.UpdatedAt = s.stamp()
	if err := c.SalesOrders.Update(ctx, so); err != nil {
		return nil, err
	}

	how := "Generated"
	if auto {
		how = "Auto-generated"
	}
	if err := audit.Log(ctx, c, user, audit.ActionCreate, "workorder", wo.ID,
		fmt.Sprintf("%s %s from %s (%s priority)", how, wo.ID, so.ID, wo.Priority)); err != nil {
		return nil, err
	}
	out.changed("workorder", "created", wo.ID)
	out.changed("sales_order", "updated", so.ID)
	return g, nil
}
