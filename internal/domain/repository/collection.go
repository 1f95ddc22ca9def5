package repository

import (
	"context"

	"github.com/mvdwalt/sidebill/internal/domain/entity"
)

// CollectionStore persists the whole invoice collection as one durable slot.
//
// Load is total over the stored bytes: a missing slot, unparsable JSON or a
// structurally invalid container all degrade to an empty collection, never
// an error. Errors are reserved for the storage primitive itself failing.
//
// Save fully overwrites the slot with the given collection.
type CollectionStore interface {
	Load(ctx context.Context) ([]entity.Invoice, error)
	Save(ctx context.Context, invoices []entity.Invoice) error
}
