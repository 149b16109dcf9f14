// Package store persists the workflow documents in SQLite. Every document type
// is a named collection of JSON records keyed by string id, and every record
// carries a version that guards against lost updates.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"millflow/internal/models"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record was modified by another writer")
)

// Collection names. They match the keys of the browser document export.
const (
	CollSalesOrders       = "salesOrders"
	CollWorkOrders        = "workOrders"
	CollProductionRecords = "productionRecords"
	CollQCRecords         = "qcRecords"
	CollPackagingRecords  = "packagingRecords"
	CollStoreStock        = "storeStock"
	CollMaterialRequests  = "materialRequests"
	CollNotifications     = "notifications"
)

// AllCollections lists every collection in pipeline order.
var AllCollections = []string{
	CollSalesOrders, CollWorkOrders, CollMaterialRequests, CollProductionRecords,
	CollQCRecords, CollPackagingRecords, CollStoreStock, CollNotifications,
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Collections groups one repository per document type, all bound to the same
// connection or transaction.
type Collections struct {
	SalesOrders       *Repository[models.SalesOrder, *models.SalesOrder]
	WorkOrders        *Repository[models.WorkOrder, *models.WorkOrder]
	ProductionRecords *Repository[models.ProductionRecord, *models.ProductionRecord]
	QCRecords         *Repository[models.QCRecord, *models.QCRecord]
	PackagingRecords  *Repository[models.PackagingRecord, *models.PackagingRecord]
	StoreStock        *Repository[models.StockItem, *models.StockItem]
	MaterialRequests  *Repository[models.MaterialRequest, *models.MaterialRequest]
	Notifications     *Repository[models.Notification, *models.Notification]

	q DBTX
}

func newCollections(q DBTX) *Collections {
	return &Collections{
		SalesOrders:       NewRepository[models.SalesOrder](q, CollSalesOrders),
		WorkOrders:        NewRepository[models.WorkOrder](q, CollWorkOrders),
		ProductionRecords: NewRepository[models.ProductionRecord](q, CollProductionRecords),
		QCRecords:         NewRepository[models.QCRecord](q, CollQCRecords),
		PackagingRecords:  NewRepository[models.PackagingRecord](q, CollPackagingRecords),
		StoreStock:        NewRepository[models.StockItem](q, CollStoreStock),
		MaterialRequests:  NewRepository[models.MaterialRequest](q, CollMaterialRequests),
		Notifications:     NewRepository[models.Notification](q, CollNotifications),
		q:                 q,
	}
}

// Store is the SQLite-backed record store.
type Store struct {
	*Collections
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", path+sep+"_journal_mode=WAL&_busy_timeout=10000")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened database and runs migrations.
func New(db *sql.DB) (*Store, error) {
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return &Store{Collections: newCollections(db), db: db}, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// InTx runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
// fn must not use the Store's own repositories.
func (s *Store) InTx(ctx context.Context, fn func(c *Collections) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(newCollections(tx)); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Exec runs a raw statement on the connection the collections are bound to.
// The audit log uses it to write inside the caller's transaction.
func (c *Collections) Exec(ctx context.Context, query string, args ...any) error {
	_, err := c.q.ExecContext(ctx, query, args...)
	return err
}

// Migrate creates the schema.
func Migrate(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			body TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT DEFAULT 'system',
			action TEXT NOT NULL,
			module TEXT NOT NULL,
			record_id TEXT NOT NULL,
			summary TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_log_record ON audit_log(module, record_id)`,
	}
	for _, t := range tables {
		if _, err := db.Exec(t); err != nil {
			return fmt.Errorf("migration: %w", err)
		}
	}
	return nil
}
