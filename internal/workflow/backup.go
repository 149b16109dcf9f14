package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"millflow/internal/audit"
	"millflow/internal/legacy"
	"millflow/internal/store"
	"millflow/internal/validation"

	"go.uber.org/zap"
)

// Backup returns the whole store in the browser document format.
func (s *Service) Backup(ctx context.Context) (map[string][]json.RawMessage, error) {
	return s.store.Documents(ctx)
}

// RestoreResult counts what a restore wrote per collection.
type RestoreResult struct {
	Restored map[string]int `json:"restored"`
	Skipped  map[string]int `json:"skipped"`
}

// Restore replaces every collection present in docs. Collections missing
// from docs are left alone. The whole restore is one transaction.
func (s *Service) Restore(ctx context.Context, docs map[string]json.RawMessage, user string) (*RestoreResult, error) {
	res := &RestoreResult{Restored: map[string]int{}, Skipped: map[string]int{}}
	parsed := make(map[string]*legacy.Collection)
	for _, coll := range store.AllCollections {
		raw, ok := docs[coll]
		if !ok {
			continue
		}
		c, err := legacy.ReadCollection(coll, raw)
		if err != nil {
			return nil, err
		}
		parsed[coll] = c
	}
	if len(parsed) == 0 {
		ve := &validation.ValidationErrors{}
		ve.Add("collections", "payload holds no known collections")
		return nil, ve
	}

	err := s.commit(ctx, func(c *store.Collections, out *outbox) error {
		for _, coll := range store.AllCollections {
			p, ok := parsed[coll]
			if !ok {
				continue
			}
			if err := c.ReplaceCollection(ctx, coll, p.Records, p.Order); err != nil {
				return err
			}
			res.Restored[coll] = len(p.Order)
			res.Skipped[coll] = p.Skipped
			out.changed(coll, "restored", "all")
		}
		return audit.Log(ctx, c, user, audit.ActionRestore, "backup", "",
			fmt.Sprintf("Restored %d collections", len(parsed)))
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("store restored", zap.Any("restored", res.Restored), zap.Any("skipped", res.Skipped))
	return res, nil
}
