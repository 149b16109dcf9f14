package workflow

import (
	"context"

	"millflow/internal/models"
)

// ListWorkOrders syncs pending sales orders and returns every work order.
func (s *Service) ListWorkOrders(ctx context.Context) ([]models.WorkOrder, error) {
	if _, err := s.SyncPending(ctx); err != nil {
		return nil, err
	}
	return s.store.WorkOrders.List(ctx)
}

// GetWorkOrder returns one work order.
func (s *Service) GetWorkOrder(ctx context.Context, id string) (*models.WorkOrder, error) {
	return s.store.WorkOrders.Get(ctx, id)
}

// ProductionView is a production record joined with its work order.
type ProductionView struct {
	models.ProductionRecord
	ClientName   string `json:"clientName"`
	SONumber     string `json:"soNumber"`
	Priority     string `json:"priority"`
	DeliveryDate string `json:"deliveryDate"`
}

func (s *Service) productionView(rec models.ProductionRecord, byWO map[string]*models.WorkOrder) ProductionView {
	v := ProductionView{ProductionRecord: rec, ClientName: "Unknown", SONumber: "N/A", Priority: "N/A", DeliveryDate: "N/A"}
	if wo, ok := byWO[rec.WOID]; ok {
		v.ClientName = orUnknown(wo.ClientName)
		if wo.SONumber != "" {
			v.SONumber = wo.SONumber
		}
		if wo.Priority != "" {
			v.Priority = wo.Priority
		}
		if wo.DeliveryDate != "" {
			v.DeliveryDate = wo.DeliveryDate
		}
	}
	return v
}

func (s *Service) workOrderIndex(ctx context.Context) (map[string]*models.WorkOrder, error) {
	wos, err := s.store.WorkOrders.List(ctx)
	if err != nil {
		return nil, err
	}
	byWO := make(map[string]*models.WorkOrder, len(wos))
	for i := range wos {
		byWO[wos[i].ID] = &wos[i]
	}
	return byWO, nil
}

// ListProduction returns production records, newest first, with missing work
// order details shown as "Unknown" or "N/A".
func (s *Service) ListProduction(ctx context.Context) ([]ProductionView, error) {
	recs, err := s.store.ProductionRecords.List(ctx)
	if err != nil {
		return nil, err
	}
	byWO, err := s.workOrderIndex(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ProductionView, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		views = append(views, s.productionView(recs[i], byWO))
	}
	return views, nil
}

// GetProduction returns one production record view.
func (s *Service) GetProduction(ctx context.Context, id string) (*ProductionView, error) {
	rec, err := s.store.ProductionRecords.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	byWO, err := s.workOrderIndex(ctx)
	if err != nil {
		return nil, err
	}
	v := s.productionView(*rec, byWO)
	return &v, nil
}

// ReadyForProduction lists approved work orders that have not started yet.
func (s *Service) ReadyForProduction(ctx context.Context) ([]models.WorkOrder, error) {
	return s.store.WorkOrders.Filter(ctx, func(w *models.WorkOrder) bool {
		return w.ApprovalStatus == models.ApprovalApproved && w.ProductionStatus == models.ProductionReady
	})
}
