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

func validateStockItem(item *models.StockItem) error {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "material", item.Material)
	validation.ValidateMaxLength(ve, "material", item.Material, validation.MaxStringLength)
	validation.ValidateMaxLength(ve, "code", item.Code, validation.MaxStringLength)
	validation.ValidateNonNegativeFloat(ve, "currentStock", item.CurrentStock)
	validation.ValidateNonNegativeFloat(ve, "minStock", item.MinStock)
	validation.ValidateMaxQuantity(ve, "currentStock", item.CurrentStock)
	return ve.Err()
}

// ListStock returns the stock snapshot.
func (s *Service) ListStock(ctx context.Context) ([]models.StockItem, error) {
	return s.store.StoreStock.List(ctx)
}

// CreateStockItem adds a stock row. Material names must be unique since
// requirements are matched by exact name.
func (s *Service) CreateStockItem(ctx context.Context, item models.StockItem, user string) (*models.StockItem, error) {
	item.Material = strings.TrimSpace(item.Material)
	if err := validateStockItem(&item); err != nil {
		return nil, err
	}
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		if _, err := c.StoreStock.Find(ctx, func(it *models.StockItem) bool { return it.Material == item.Material }); err == nil {
			ve := &validation.ValidationErrors{}
			ve.Add("material", "already stocked: "+item.Material)
			return ve
		} else if !isNotFound(err) {
			return err
		}
		if item.ID == "" {
			item.ID = s.ids.stampID("STK", s.now())
		}
		item.UpdatedAt = s.stamp()
		if err := c.StoreStock.Insert(ctx, &item); err != nil {
			return err
		}
		out.changed("stock", "created", item.ID)
		return audit.Log(ctx, c, user, audit.ActionCreate, "stock", item.ID,
			fmt.Sprintf("Stocked %s: %g", item.Material, item.CurrentStock))
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateStockItem replaces a stock row. A non-zero version in item must match
// the stored one.
func (s *Service) UpdateStockItem(ctx context.Context, id string, item models.StockItem, user string) (*models.StockItem, error) {
	item.Material = strings.TrimSpace(item.Material)
	if err := validateStockItem(&item); err != nil {
		return nil, err
	}
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		cur, err := c.StoreStock.Get(ctx, id)
		if err != nil {
			return err
		}
		if item.Version != 0 && item.Version != cur.Version {
			return fmt.Errorf("stock %s: %w", id, store.ErrConflict)
		}
		item.ID = id
		item.Version = cur.Version
		item.UpdatedAt = s.stamp()
		if err := c.StoreStock.Update(ctx, &item); err != nil {
			return err
		}
		out.changed("stock", "updated", id)
		return audit.Log(ctx, c, user, audit.ActionUpdate, "stock", id,
			fmt.Sprintf("%s: %g -> %g", item.Material, cur.CurrentStock, item.CurrentStock))
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteStockItem removes a stock row.
func (s *Service) DeleteStockItem(ctx context.Context, id, user string) error {
	return s.commit(ctx, func(c *store.Collections, out *outbox) error {
		if err := c.StoreStock.Delete(ctx, id); err != nil {
			return err
		}
		out.changed("stock", "deleted", id)
		return audit.Log(ctx, c, user, audit.ActionDelete, "stock", id, "Deleted stock "+id)
	})
}

// ListMaterialRequests returns material requests, optionally only those with
// the given status.
func (s *Service) ListMaterialRequests(ctx context.Context, status string) ([]models.MaterialRequest, error) {
	if status == "" {
		return s.store.MaterialRequests.List(ctx)
	}
	return s.store.MaterialRequests.Filter(ctx, func(m *models.MaterialRequest) bool { return m.Status == status })
}

// FulfillMaterialRequest books every shortfall into stock, closes the
// request and re-checks the work order's materials against the new stock.
func (s *Service) FulfillMaterialRequest(ctx context.Context, id, user string) (*models.MaterialRequest, error) {
	var mr *models.MaterialRequest
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		var err error
		mr, err = c.MaterialRequests.Get(ctx, id)
		if err != nil {
			return err
		}
		if mr.Status != models.MRStatusPending {
			return fmt.Errorf("material request %s is %s: %w", id, mr.Status, ErrInvalidState)
		}

		at := s.stamp()
		for _, short := range mr.Items {
			if short.Shortfall <= 0 {
				continue
			}
			item, err := c.StoreStock.Find(ctx, func(it *models.StockItem) bool { return it.Material == short.Material })
			switch {
			case err == nil:
				item.CurrentStock += short.Shortfall
				item.UpdatedAt = at
				err = c.StoreStock.Update(ctx, item)
			case isNotFound(err):
				item = &models.StockItem{
					ID:           s.ids.stampID("STK", s.now()),
					Material:     short.Material,
					CurrentStock: short.Shortfall,
					UpdatedAt:    at,
				}
				err = c.StoreStock.Insert(ctx, item)
			}
			if err != nil {
				return err
			}
			out.changed("stock", "updated", item.ID)
		}

		mr.Status = models.MRStatusFulfilled
		mr.FulfilledAt = at
		mr.FulfilledBy = user
		if err := c.MaterialRequests.Update(ctx, mr); err != nil {
			return err
		}
		out.changed("material_request", "updated", mr.ID)

		wo, err := c.WorkOrders.Get(ctx, mr.WONumber)
		switch {
		case err == nil:
			stock, err := c.StoreStock.List(ctx)
			if err != nil {
				return err
			}
			for i, r := range wo.MaterialRequirements {
				wo.MaterialRequirements[i] = requirementFor(r.Material, r.RequiredQty, stock)
			}
			wo.MaterialRequestStatus = models.MRStatusFulfilled
			if wo.Status == models.WOStatusMaterialPending {
				wo.Status = models.WOStatusPendingApproval
			}
			wo.UpdatedAt = at
			if err := c.WorkOrders.Update(ctx, wo); err != nil {
				return err
			}
			out.changed("workorder", "updated", wo.ID)
		case !isNotFound(err):
			return err
		}

		if err := audit.Log(ctx, c, user, audit.ActionComplete, "material_request", mr.ID,
			fmt.Sprintf("Fulfilled %s for %s (%d materials)", mr.ID, mr.WONumber, len(mr.Items))); err != nil {
			return err
		}
		return s.notify(ctx, c, out, "material_fulfilled", "Materials Received: "+mr.WONumber,
			fmt.Sprintf("Material request %s for %s has been fulfilled", mr.ID, mr.WONumber),
			models.RoleProduction, mr.ID)
	})
	if err != nil {
		return nil, err
	}
	return mr, nil
}
