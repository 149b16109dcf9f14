package workflow

import (
	"context"
	"fmt"
	"strings"

	"millflow/internal/audit"
	"millflow/internal/models"
	"millflow/internal/store"
	"millflow/internal/validation"

	"github.com/shopspring/decimal"
)

// ComputeAmounts fills in the derived GST amount and order total:
// taxable = base - discount, gst = taxable * rate / 100, total = taxable + gst.
func ComputeAmounts(so *models.SalesOrder) {
	taxable := decimal.NewFromFloat(so.BaseAmount).Sub(decimal.NewFromFloat(so.Discount))
	gst := taxable.Mul(decimal.NewFromFloat(so.GSTRate)).Div(decimal.NewFromInt(100)).Round(2)
	so.GSTAmount = gst.InexactFloat64()
	so.TotalOrderValue = taxable.Add(gst).Round(2).InexactFloat64()
}

func validateSalesOrder(so *models.SalesOrder) error {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "clientName", so.ClientName)
	validation.ValidateMaxLength(ve, "clientName", so.ClientName, validation.MaxStringLength)
	validation.ValidateMaxLength(ve, "companyName", so.CompanyName, validation.MaxStringLength)
	validation.ValidateDate(ve, "orderDate", so.OrderDate)
	validation.ValidateDate(ve, "deliveryDate", so.DeliveryDate)
	validation.ValidateEnum(ve, "status", so.Status, validation.ValidSalesOrderStatuses)
	validation.ValidateNonNegativeFloat(ve, "baseAmount", so.BaseAmount)
	validation.ValidateNonNegativeFloat(ve, "discount", so.Discount)
	validation.ValidatePercentage(ve, "gstRate", so.GSTRate)
	if so.Discount > so.BaseAmount {
		ve.Add("discount", "cannot exceed baseAmount")
	}
	for i, it := range so.Items {
		field := fmt.Sprintf("items[%d]", i)
		validation.ValidateMaxLength(ve, field+".description", it.Description, validation.MaxStringLength)
		validation.ValidateNonNegativeFloat(ve, field+".qty", it.Qty)
		validation.ValidateMaxQuantity(ve, field+".qty", it.Qty)
	}
	return ve.Err()
}

// ListSalesOrders returns every sales order.
func (s *Service) ListSalesOrders(ctx context.Context) ([]models.SalesOrder, error) {
	return s.store.SalesOrders.List(ctx)
}

// GetSalesOrder returns one sales order.
func (s *Service) GetSalesOrder(ctx context.Context, id string) (*models.SalesOrder, error) {
	return s.store.SalesOrders.Get(ctx, id)
}

// CreateSalesOrder stores a new sales order with derived amounts. It is
// picked up by the next work order sync.
func (s *Service) CreateSalesOrder(ctx context.Context, so models.SalesOrder, user string) (*models.SalesOrder, error) {
	so.ClientName = strings.TrimSpace(so.ClientName)
	if so.Status == "" {
		so.Status = models.SOStatusDraft
	}
	if so.Items == nil {
		so.Items = []models.LineItem{}
	}
	if err := validateSalesOrder(&so); err != nil {
		return nil, err
	}
	ComputeAmounts(&so)
	if so.ID == "" {
		so.ID = s.ids.suffixID("SO", s.now())
	}
	so.HasWorkOrder = false
	so.WorkOrderID = ""
	so.CreatedAt = s.stamp()

	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		if err := c.SalesOrders.Insert(ctx, &so); err != nil {
			return err
		}
		out.changed("sales_order", "created", so.ID)
		return audit.Log(ctx, c, user, audit.ActionCreate, "sales_order", so.ID,
			fmt.Sprintf("Created %s for %s (%.2f)", so.ID, so.ClientName, so.TotalOrderValue))
	})
	if err != nil {
		return nil, err
	}
	return &so, nil
}

// UpdateSalesOrder replaces the editable fields of a sales order. The work
// order link is kept from the stored record.
func (s *Service) UpdateSalesOrder(ctx context.Context, id string, so models.SalesOrder, user string) (*models.SalesOrder, error) {
	so.ClientName = strings.TrimSpace(so.ClientName)
	if so.Items == nil {
		so.Items = []models.LineItem{}
	}
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		cur, err := c.SalesOrders.Get(ctx, id)
		if err != nil {
			return err
		}
		if so.Version != 0 && so.Version != cur.Version {
			return fmt.Errorf("sales order %s: %w", id, store.ErrConflict)
		}
		if so.Status == "" {
			so.Status = cur.Status
		}
		if err := validateSalesOrder(&so); err != nil {
			return err
		}
		ComputeAmounts(&so)
		so.ID = id
		so.Version = cur.Version
		so.HasWorkOrder = cur.HasWorkOrder
		so.WorkOrderID = cur.WorkOrderID
		so.CreatedAt = cur.CreatedAt
		so.UpdatedAt = s.stamp()
		if err := c.SalesOrders.Update(ctx, &so); err != nil {
			return err
		}
		out.changed("sales_order", "updated", id)
		return audit.Log(ctx, c, user, audit.ActionUpdate, "sales_order", id, "Updated "+id)
	})
	if err != nil {
		return nil, err
	}
	return &so, nil
}

// DeleteSalesOrder removes a sales order. Its work order, if any, stays.
func (s *Service) DeleteSalesOrder(ctx context.Context, id, user string) error {
	return s.commit(ctx, func(c *store.Collections, out *outbox) error {
		if err := c.SalesOrders.Delete(ctx, id); err != nil {
			return err
		}
		out.changed("sales_order", "deleted", id)
		return audit.Log(ctx, c, user, audit.ActionDelete, "sales_order", id, "Deleted "+id)
	})
}
