// Package billing holds the invoice store: the authoritative in-memory
// collection plus the action surface the presentation layer calls.
package billing

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mvdwalt/sidebill/internal/domain"
	"github.com/mvdwalt/sidebill/internal/domain/entity"
	"github.com/mvdwalt/sidebill/internal/domain/repository"
	"github.com/mvdwalt/sidebill/pkg/logger"
)

// Store owns the invoice collection. It is loaded once at construction and
// written back through the persister on every mutation, under the lock, so
// no reader can observe a committed mutation that is not durable yet.
//
// New invoices are prepended; updates replace in place; order is otherwise
// preserved.
type Store struct {
	mu        sync.RWMutex
	persister repository.CollectionStore
	invoices  []entity.Invoice
	log       *logger.Logger
}

// NewStore loads the persisted collection and runs each invoice through the
// schema migration table.
func NewStore(ctx context.Context, persister repository.CollectionStore, log *logger.Logger) (*Store, error) {
	loaded, err := persister.Load(ctx)
	if err != nil {
		return nil, err
	}

	invoices := make([]entity.Invoice, 0, len(loaded))
	for _, inv := range loaded {
		invoices = append(invoices, migrate(inv))
	}

	log.Info().Int("invoices", len(invoices)).Msg("invoice collection loaded")

	return &Store{
		persister: persister,
		invoices:  invoices,
		log:       log,
	}, nil
}

// CreateInvoice builds a new draft invoice with one default line item,
// prepends it to the collection and persists.
func (s *Store) CreateInvoice(ctx context.Context) (entity.Invoice, error) {
	inv := entity.NewInvoice(entity.Invoice{})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.invoices = append([]entity.Invoice{inv}, s.invoices...)
	if err := s.persist(ctx); err != nil {
		return inv.Clone(), err
	}

	s.log.Debug().Str("id", inv.ID).Str("number", inv.Number).Msg("invoice created")
	return inv.Clone(), nil
}

// UpsertInvoice stamps updatedAt, normalizes the currency code and either
// replaces the entry with the same id in place or, when the id is unknown,
// prepends the invoice as new. Persists in both cases.
func (s *Store) UpsertInvoice(ctx context.Context, inv entity.Invoice) (entity.Invoice, error) {
	next := inv.Clone()
	if next.ID == "" {
		next.ID = uuid.New().String()
	}
	next.SchemaVersion = entity.SchemaVersion
	next.Currency = entity.NormalizeCurrency(next.Currency)
	next.UpdatedAt = time.Now().Format(time.RFC3339)

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(next.ID); idx >= 0 {
		s.invoices[idx] = next
	} else {
		s.invoices = append([]entity.Invoice{next}, s.invoices...)
	}
	if err := s.persist(ctx); err != nil {
		return next.Clone(), err
	}

	s.log.Debug().Str("id", next.ID).Msg("invoice saved")
	return next.Clone(), nil
}

// DeleteInvoice removes the invoice with the given id and persists. Deleting
// an unknown id is a no-op and does not touch storage.
func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	s.invoices = append(s.invoices[:idx], s.invoices[idx+1:]...)
	if err := s.persist(ctx); err != nil {
		return err
	}

	s.log.Debug().Str("id", id).Msg("invoice deleted")
	return nil
}

// GetInvoice returns a copy of the invoice with the given id, or
// domain.ErrNotFound. Read-only: never persists.
func (s *Store) GetInvoice(id string) (entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexOf(id); idx >= 0 {
		return s.invoices[idx].Clone(), nil
	}
	return entity.Invoice{}, domain.ErrNotFound
}

// ListInvoices returns a snapshot of the collection in order. A non-empty
// query filters case-insensitively on number and party names.
func (s *Store) ListInvoices(query string) []entity.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]entity.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if query != "" && !matches(inv, query) {
			continue
		}
		out = append(out, inv.Clone())
	}
	return out
}

func matches(inv entity.Invoice, query string) bool {
	for _, field := range []string{inv.Number, inv.From.Name, inv.To.Name} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// indexOf returns the position of id in the collection, or -1. Caller holds
// the lock.
func (s *Store) indexOf(id string) int {
	for i := range s.invoices {
		if s.invoices[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the full collection back through the adapter. Caller holds
// the write lock. The in-memory mutation is kept even when the write fails;
// the error is surfaced to the caller.
func (s *Store) persist(ctx context.Context) error {
	if err := s.persister.Save(ctx, s.invoices); err != nil {
		s.log.Error().Err(err).Msg("persist invoice collection")
		return err
	}
	return nil
}
