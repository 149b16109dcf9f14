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

// EligibleItem is an approved inspection waiting to be packed.
type EligibleItem struct {
	WONumber      string  `json:"woNumber"`
	QCRecordID    string  `json:"qcRecordId"`
	InspectorName string  `json:"inspectorName"`
	ApprovedDate  string  `json:"approvedDate"`
	ClientName    string  `json:"clientName"`
	Quantity      float64 `json:"quantity"`
	PackagingID   string  `json:"packagingId,omitempty"`
}

// EligibleForPackaging lists approved QC records whose work order has no
// completed packaging record. An open draft is reported through PackagingID.
func (s *Service) EligibleForPackaging(ctx context.Context) ([]EligibleItem, error) {
	qcs, err := s.store.QCRecords.List(ctx)
	if err != nil {
		return nil, err
	}
	pkgs, err := s.store.PackagingRecords.List(ctx)
	if err != nil {
		return nil, err
	}
	wos, err := s.store.WorkOrders.List(ctx)
	if err != nil {
		return nil, err
	}
	byWO := make(map[string]*models.WorkOrder, len(wos))
	for i := range wos {
		byWO[wos[i].ID] = &wos[i]
	}
	done := make(map[string]bool)
	open := make(map[string]string)
	for _, p := range pkgs {
		if p.IsCompleted {
			done[p.WONumber] = true
		} else {
			open[p.WONumber] = p.ID
		}
	}

	items := []EligibleItem{}
	seen := make(map[string]bool)
	for i := len(qcs) - 1; i >= 0; i-- {
		q := qcs[i]
		if q.OverallStatus != checklist.StatusApproved || done[q.WONumber] || seen[q.WONumber] {
			continue
		}
		seen[q.WONumber] = true
		it := EligibleItem{
			WONumber:      q.WONumber,
			QCRecordID:    q.ID,
			InspectorName: q.InspectorName,
			ApprovedDate:  q.SubmittedAt,
			ClientName:    "Unknown",
			PackagingID:   open[q.WONumber],
		}
		if wo, ok := byWO[q.WONumber]; ok {
			it.ClientName = orUnknown(wo.ClientName)
			for _, li := range wo.Items {
				it.Quantity += li.Qty
			}
		}
		items = append(items, it)
	}
	return items, nil
}

// CreatePackaging opens a packaging record for a work order that passed QC.
func (s *Service) CreatePackaging(ctx context.Context, woNumber, user string) (*models.PackagingRecord, error) {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "woNumber", woNumber)
	if err := ve.Err(); err != nil {
		return nil, err
	}

	var rec *models.PackagingRecord
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		existing, err := c.PackagingRecords.Find(ctx, func(p *models.PackagingRecord) bool { return p.WONumber == woNumber })
		if err == nil {
			return fmt.Errorf("work order %s already has packaging %s: %w", woNumber, existing.ID, ErrInvalidState)
		}
		if !isNotFound(err) {
			return err
		}
		approved, err := c.QCRecords.Filter(ctx, func(q *models.QCRecord) bool {
			return q.WONumber == woNumber && q.OverallStatus == checklist.StatusApproved
		})
		if err != nil {
			return err
		}
		if len(approved) == 0 {
			return fmt.Errorf("work order %s has no approved QC: %w", woNumber, ErrInvalidState)
		}
		qc := approved[len(approved)-1]

		rec = &models.PackagingRecord{
			ID:             s.ids.suffixID("PKG", s.now()),
			WONumber:       woNumber,
			QCRecordID:     qc.ID,
			QCApprovedBy:   qc.InspectorName,
			QCApprovedDate: qc.SubmittedAt,
			Status:         models.PackagingPending,
			CreatedAt:      s.stamp(),
		}
		if err := c.PackagingRecords.Insert(ctx, rec); err != nil {
			return err
		}
		out.changed("packaging", "created", rec.ID)
		return audit.Log(ctx, c, user, audit.ActionCreate, "packaging", rec.ID, "Opened packaging for "+woNumber)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// PackagingDraft is a partial update saved while packing is under way. Nil
// fields are left unchanged.
type PackagingDraft struct {
	PackagingTeam *string                  `json:"packagingTeam"`
	PackedQty     *float64                 `json:"packedQty"`
	Notes         *string                  `json:"notes"`
	Photographs   map[string]*models.Photo `json:"photographs"`
}

// SavePackagingDraft stores whatever has been entered so far.
func (s *Service) SavePackagingDraft(ctx context.Context, id string, d PackagingDraft, user string) (*models.PackagingRecord, error) {
	return s.updatePackaging(ctx, id, func(rec *models.PackagingRecord) error {
		if d.PackagingTeam != nil {
			rec.PackagingTeam = *d.PackagingTeam
		}
		if d.PackedQty != nil {
			rec.PackedQty = *d.PackedQty
		}
		if d.Notes != nil {
			rec.Notes = *d.Notes
		}
		for slot, p := range d.Photographs {
			if ptr := rec.Photographs.Slot(slot); ptr != nil {
				*ptr = p
			}
		}
		rec.Status = models.PackagingInProgress
		return nil
	})
}

// SetPackagingPhoto validates and stores one of the three packaging
// photographs.
func (s *Service) SetPackagingPhoto(ctx context.Context, id, slot string, p models.Photo, user string) (*models.PackagingRecord, error) {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "slot", slot)
	validation.ValidateEnum(ve, "slot", slot, validation.ValidPhotoSlots)
	photo := s.acceptPhoto(ve, "photographs."+slot, p)
	if err := ve.Err(); err != nil {
		return nil, err
	}
	return s.updatePackaging(ctx, id, func(rec *models.PackagingRecord) error {
		ptr := rec.Photographs.Slot(slot)
		if ptr == nil {
			return fmt.Errorf("packaging %s: unknown photo slot %q: %w", id, slot, ErrInvalidState)
		}
		*ptr = photo
		rec.Status = models.PackagingInProgress
		return nil
	})
}

func (s *Service) updatePackaging(ctx context.Context, id string, apply func(*models.PackagingRecord) error) (*models.PackagingRecord, error) {
	var rec *models.PackagingRecord
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		var err error
		rec, err = c.PackagingRecords.Get(ctx, id)
		if err != nil {
			return err
		}
		if rec.IsCompleted {
			return fmt.Errorf("packaging %s is completed: %w", id, ErrInvalidState)
		}
		if err := apply(rec); err != nil {
			return err
		}
		if err := c.PackagingRecords.Update(ctx, rec); err != nil {
			return err
		}
		out.changed("packaging", "updated", rec.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// validateCompletion checks everything a packaging record needs before it
// can be completed.
func (s *Service) validateCompletion(rec *models.PackagingRecord) error {
	ve := &validation.ValidationErrors{}
	for _, slot := range rec.Photographs.Missing() {
		ve.Add("photographs."+slot, "is required")
	}
	for _, slot := range validation.ValidPhotoSlots {
		if p := *rec.Photographs.Slot(slot); p != nil {
			validation.ValidateImageDataURI(ve, "photographs."+slot, p.Data, s.maxPhotoBytes())
		}
	}
	validation.RequireField(ve, "packagingTeam", rec.PackagingTeam)
	validation.ValidatePositiveFloat(ve, "packedQty", rec.PackedQty)
	validation.ValidateMaxQuantity(ve, "packedQty", rec.PackedQty)
	return ve.Err()
}

// CompletePackaging finishes packing and closes out the work order and its
// sales order.
func (s *Service) CompletePackaging(ctx context.Context, id, user string) (*models.PackagingRecord, error) {
	var rec *models.PackagingRecord
	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		var err error
		rec, err = c.PackagingRecords.Get(ctx, id)
		if err != nil {
			return err
		}
		if rec.IsCompleted {
			return fmt.Errorf("packaging %s is completed: %w", id, ErrInvalidState)
		}
		if err := s.validateCompletion(rec); err != nil {
			return err
		}

		at := s.stamp()
		rec.PackagingTeam = strings.TrimSpace(rec.PackagingTeam)
		rec.Status = models.PackagingCompleted
		rec.IsCompleted = true
		rec.NotificationsSent = true
		rec.CompletedAt = at
		rec.CompletedBy = user
		if err := c.PackagingRecords.Update(ctx, rec); err != nil {
			return err
		}

		client := "Unknown"
		wo, err := c.WorkOrders.Get(ctx, rec.WONumber)
		switch {
		case err == nil:
			client = orUnknown(wo.ClientName)
			wo.Status = models.WOStatusPackagingCompleted
			wo.UpdatedAt = at
			if err := c.WorkOrders.Update(ctx, wo); err != nil {
				return err
			}
			out.changed("workorder", "updated", wo.ID)
			if err := s.setSalesOrderStatus(ctx, c, out, wo.SONumber, models.SOStatusCompleted); err != nil {
				return err
			}
		case !isNotFound(err):
			return err
		}

		out.changed("packaging", "completed", rec.ID)
		if err := audit.Log(ctx, c, user, audit.ActionComplete, "packaging", rec.ID,
			fmt.Sprintf("Packed %g units of %s (team %s)", rec.PackedQty, rec.WONumber, rec.PackagingTeam)); err != nil {
			return err
		}
		return s.notify(ctx, c, out, "packaging_completed", "Ready for Dispatch: "+rec.WONumber,
			fmt.Sprintf("%s for %s is packed (%g units) and ready for dispatch", rec.WONumber, client, rec.PackedQty),
			models.RoleSales+","+models.RoleAdmin, rec.ID)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetPackaging returns one packaging record.
func (s *Service) GetPackaging(ctx context.Context, id string) (*models.PackagingRecord, error) {
	return s.store.PackagingRecords.Get(ctx, id)
}

// ListPackaging returns every packaging record, newest first.
func (s *Service) ListPackaging(ctx context.Context) ([]models.PackagingRecord, error) {
	recs, err := s.store.PackagingRecords.List(ctx)
	if err != nil {
		return nil, err
	}
	reverse(recs)
	return recs, nil
}
