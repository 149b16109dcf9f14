package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Entity is implemented by every stored record type.
type Entity interface {
	Key() string
	Rev() int
	SetRev(int)
}

// Repository reads and writes one collection.
type Repository[T any, P interface {
	*T
	Entity
}] struct {
	q          DBTX
	collection string
}

// NewRepository binds a repository for collection to q.
func NewRepository[T any, P interface {
	*T
	Entity
}](q DBTX, collection string) *Repository[T, P] {
	return &Repository[T, P]{q: q, collection: collection}
}

// Collection returns the collection name.
func (r *Repository[T, P]) Collection() string { return r.collection }

// List returns every record in insertion order.
func (r *Repository[T, P]) List(ctx context.Context) ([]T, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT body, version FROM records WHERE collection=? ORDER BY rowid", r.collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.collection, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		var body string
		var version int
		if err := rows.Scan(&body, &version); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.collection, err)
		}
		var v T
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", r.collection, err)
		}
		P(&v).SetRev(version)
		items = append(items, v)
	}
	return items, rows.Err()
}

// Get returns the record with id or ErrNotFound.
func (r *Repository[T, P]) Get(ctx context.Context, id string) (*T, error) {
	var body string
	var version int
	err := r.q.QueryRowContext(ctx, "SELECT body, version FROM records WHERE collection=? AND id=?", r.collection, id).
		Scan(&body, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", r.collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", r.collection, id, err)
	}
	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", r.collection, id, err)
	}
	P(&v).SetRev(version)
	return &v, nil
}

// Insert stores a new record at version 1. It fails with ErrConflict when the
// id is already taken.
func (r *Repository[T, P]) Insert(ctx context.Context, v P) error {
	if v.Key() == "" {
		return fmt.Errorf("insert %s: empty id", r.collection)
	}
	v.SetRev(1)
	body, err := json.Marshal(v)
	if err != nil {
		v.SetRev(0)
		return fmt.Errorf("encode %s: %w", r.collection, err)
	}
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO records (collection, id, version, body) VALUES (?, ?, 1, ?) ON CONFLICT(collection, id) DO NOTHING",
		r.collection, v.Key(), string(body))
	if err != nil {
		v.SetRev(0)
		return fmt.Errorf("insert %s %s: %w", r.collection, v.Key(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		v.SetRev(0)
		return fmt.Errorf("insert %s %s: %w", r.collection, v.Key(), ErrConflict)
	}
	return nil
}

// Update writes v if its version still matches the stored one, then bumps
// the version.
func (r *Repository[T, P]) Update(ctx context.Context, v P) error {
	expected := v.Rev()
	v.SetRev(expected + 1)
	body, err := json.Marshal(v)
	if err != nil {
		v.SetRev(expected)
		return fmt.Errorf("encode %s: %w", r.collection, err)
	}
	res, err := r.q.ExecContext(ctx,
		"UPDATE records SET body=?, version=version+1, updated_at=CURRENT_TIMESTAMP WHERE collection=? AND id=? AND version=?",
		string(body), r.collection, v.Key(), expected)
	if err != nil {
		v.SetRev(expected)
		return fmt.Errorf("update %s %s: %w", r.collection, v.Key(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		v.SetRev(expected)
		if _, err := r.Get(ctx, v.Key()); errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("update %s %s: %w", r.collection, v.Key(), ErrConflict)
	}
	return nil
}

// Upsert inserts records that were never stored and updates the rest.
func (r *Repository[T, P]) Upsert(ctx context.Context, v P) error {
	if v.Rev() == 0 {
		return r.Insert(ctx, v)
	}
	return r.Update(ctx, v)
}

// Delete removes the record with id.
func (r *Repository[T, P]) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM records WHERE collection=? AND id=?", r.collection, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", r.collection, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", r.collection, id, ErrNotFound)
	}
	return nil
}

// Find returns the first record for which match returns true.
func (r *Repository[T, P]) Find(ctx context.Context, match func(*T) bool) (*T, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if match(&items[i]) {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", r.collection, ErrNotFound)
}

// Filter returns the records for which match returns true.
func (r *Repository[T, P]) Filter(ctx context.Context, match func(*T) bool) ([]T, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []T{}
	for i := range items {
		if match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}
