package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvdwalt/sidebill/internal/domain"
	"github.com/mvdwalt/sidebill/internal/domain/entity"
	"github.com/mvdwalt/sidebill/pkg/logger"
)

// fakePersister records every Save so tests can assert the persistence
// trigger policy.
type fakePersister struct {
	loaded  []entity.Invoice
	saves   [][]entity.Invoice
	saveErr error
}

func (f *fakePersister) Load(context.Context) ([]entity.Invoice, error) {
	return f.loaded, nil
}

func (f *fakePersister) Save(_ context.Context, invoices []entity.Invoice) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	snapshot := make([]entity.Invoice, len(invoices))
	copy(snapshot, invoices)
	f.saves = append(f.saves, snapshot)
	return nil
}

func newTestStore(t *testing.T, persister *fakePersister) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), persister, logger.Nop())
	require.NoError(t, err)
	return s
}

func TestCreateInvoice_PrependsDraftAndPersists(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	first, err := s.CreateInvoice(ctx)
	require.NoError(t, err)
	second, err := s.CreateInvoice(ctx)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusDraft, first.Status)
	require.Len(t, first.Items, 1, "a new invoice carries exactly one default line item")
	assert.NotEqual(t, first.ID, second.ID)

	list := s.ListInvoices("")
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest invoice goes to the front")

	require.Len(t, p.saves, 2, "every mutation writes the collection back")
	assert.Equal(t, second.ID, p.saves[1][0].ID)
}

func TestUpsertInvoice_ReplacesInPlace(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	a, _ := s.CreateInvoice(ctx)
	b, _ := s.CreateInvoice(ctx) // collection: [b, a]

	a.Notes = "edited"
	_, err := s.UpsertInvoice(ctx, a)
	require.NoError(t, err)

	list := s.ListInvoices("")
	require.Len(t, list, 2, "replacing must not change the collection length")
	assert.Equal(t, b.ID, list[0].ID, "order position is preserved")
	assert.Equal(t, a.ID, list[1].ID)
	assert.Equal(t, "edited", list[1].Notes)
}

func TestUpsertInvoice_UnknownIDPrepends(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	existing, _ := s.CreateInvoice(ctx)

	incoming := entity.NewInvoice(entity.Invoice{})
	saved, err := s.UpsertInvoice(ctx, incoming)
	require.NoError(t, err)

	list := s.ListInvoices("")
	require.Len(t, list, 2, "an unknown id grows the collection by one")
	assert.Equal(t, saved.ID, list[0].ID, "new entries are prepended")
	assert.Equal(t, existing.ID, list[1].ID)
}

func TestUpsertInvoice_StampsUpdatedAtAndNormalizesCurrency(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	inv, _ := s.CreateInvoice(ctx)
	inv.Currency = " usd "
	inv.UpdatedAt = "2020-01-01T00:00:00Z"

	saved, err := s.UpsertInvoice(ctx, inv)
	require.NoError(t, err)

	assert.Equal(t, "USD", saved.Currency)
	assert.NotEqual(t, "2020-01-01T00:00:00Z", saved.UpdatedAt)
	stamped, err := time.Parse(time.RFC3339, saved.UpdatedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), stamped, time.Minute)
}

func TestDeleteInvoice_RemovesAndPersists(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	inv, _ := s.CreateInvoice(ctx)
	require.NoError(t, s.DeleteInvoice(ctx, inv.ID))

	assert.Empty(t, s.ListInvoices(""))
	_, err := s.GetInvoice(inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteInvoice_AbsentIDIsNoOp(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	inv, _ := s.CreateInvoice(ctx)
	savesBefore := len(p.saves)

	require.NoError(t, s.DeleteInvoice(ctx, "missing"))

	list := s.ListInvoices("")
	require.Len(t, list, 1)
	assert.Equal(t, inv.ID, list[0].ID)
	assert.Equal(t, savesBefore, len(p.saves), "a no-op delete must not touch storage")
}

func TestGetInvoice_ReadOnly(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	inv, _ := s.CreateInvoice(ctx)
	savesBefore := len(p.saves)

	got, err := s.GetInvoice(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, savesBefore, len(p.saves), "lookups never write")

	// The returned value is a private copy, not a window into the store.
	got.Items[0].Description = "mutated"
	fresh, err := s.GetInvoice(inv.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.Items[0].Description)
}

func TestNewStore_LoadsPersistedCollection(t *testing.T) {
	persisted := []entity.Invoice{
		entity.NewInvoice(entity.Invoice{Number: "INV-A"}),
		entity.NewInvoice(entity.Invoice{Number: "INV-B"}),
	}
	s := newTestStore(t, &fakePersister{loaded: persisted})

	list := s.ListInvoices("")
	require.Len(t, list, 2)
	assert.Equal(t, "INV-A", list[0].Number)
	assert.Equal(t, "INV-B", list[1].Number)
}

func TestListInvoices_Filter(t *testing.T) {
	persisted := []entity.Invoice{
		entity.NewInvoice(entity.Invoice{Number: "INV-100", To: entity.Party{Name: "Acme Pty"}}),
		entity.NewInvoice(entity.Invoice{Number: "INV-200", From: entity.Party{Name: "Jane Roe"}}),
	}
	s := newTestStore(t, &fakePersister{loaded: persisted})

	assert.Len(t, s.ListInvoices("acme"), 1)
	assert.Len(t, s.ListInvoices("jane"), 1)
	assert.Len(t, s.ListInvoices("inv-"), 2)
	assert.Empty(t, s.ListInvoices("nomatch"))
}

func TestMutations_SurfaceSaveErrors(t *testing.T) {
	p := &fakePersister{saveErr: errors.New("disk full")}
	s := newTestStore(t, p)
	ctx := context.Background()

	_, err := s.CreateInvoice(ctx)
	require.Error(t, err)

	// The in-memory mutation is kept; only the write failed.
	assert.Len(t, s.ListInvoices(""), 1)
}
