// Package workflow implements the sales order -> work order -> production ->
// QC -> packaging pipeline on top of the record store.
package workflow

import (
	"context"
	"errors"
	"time"

	"millflow/internal/config"
	"millflow/internal/models"
	"millflow/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = store.ErrNotFound
	// ErrInvalidState is returned when a transition is not allowed from the
	// record's current state.
	ErrInvalidState = errors.New("invalid state transition")
)

// Broadcaster receives change and notification events after they commit.
type Broadcaster interface {
	BroadcastChange(resourceType, action string, id any)
	BroadcastNotification(id string, payload any)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastChange(string, string, any) {}
func (nopBroadcaster) BroadcastNotification(string, any)   {}

// Service runs workflow transitions.
type Service struct {
	store   *store.Store
	planner *Planner
	cfg     config.WorkflowConfig
	log     *zap.Logger
	hub     Broadcaster
	now     func() time.Time
	ids     *idGen
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBroadcaster sets where committed events are pushed.
func WithBroadcaster(b Broadcaster) Option {
	return func(s *Service) {
		if b != nil {
			s.hub = b
		}
	}
}

// New builds a Service.
func New(st *store.Store, cfg *config.Config, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:   st,
		planner: NewPlanner(cfg.Workflow, cfg.Rules),
		cfg:     cfg.Workflow,
		log:     log,
		hub:     nopBroadcaster{},
		now:     time.Now,
		ids:     &idGen{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Store exposes the underlying store for read-only views.
func (s *Service) Store() *store.Store { return s.store }

func (s *Service) stamp() string {
	return s.now().Format(time.RFC3339)
}

type change struct {
	resource, action string
	id               string
}

// outbox collects events produced inside a transaction so they are only
// broadcast once it commits.
type outbox struct {
	changes []change
	notes   []*models.Notification
}

func (o *outbox) changed(resource, action, id string) {
	o.changes = append(o.changes, change{resource, action, id})
}

// commit runs fn in a transaction and publishes its events on success.
func (s *Service) commit(ctx context.Context, fn func(c *store.Collections, out *outbox) error) error {
	out := &outbox{}
	if err := s.store.InTx(ctx, func(c *store.Collections) error { return fn(c, out) }); err != nil {
		return err
	}
	for _, ch := range out.changes {
		s.hub.BroadcastChange(ch.resource, ch.action, ch.id)
	}
	for _, n := range out.notes {
		s.hub.BroadcastNotification(n.ID, n)
	}
	return nil
}

// notify stores a notification inside the caller's transaction.
func (s *Service) notify(ctx context.Context, c *store.Collections, out *outbox, typ, title, message, recipient, recordID string) error {
	n := &models.Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		Title:     title,
		Message:   message,
		Recipient: recipient,
		RecordID:  recordID,
		CreatedAt: s.stamp(),
	}
	if err := c.Notifications.Insert(ctx, n); err != nil {
		return err
	}
	out.notes = append(out.notes, n)
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
