// Package bolt persists the invoice collection in a local BoltDB file:
// one bucket, one fixed versioned key, JSON value {"invoices":[...]}.
// The local file plays the role a browser's localStorage slot would.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/mvdwalt/sidebill/internal/domain/entity"
)

const (
	bucketName = "sidebill"
	stateKey   = "invoices_v1"
)

// envelope is the stored shape of the slot.
type envelope struct {
	Invoices []entity.Invoice `json:"invoices"`
}

// Store is a BoltDB-backed collection store.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the bolt database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureBucket(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads the whole collection from the slot. A missing slot, unparsable
// JSON, a non-object value or a missing/invalid invoices field all yield an
// empty collection. An error is only returned when the database itself
// cannot be read.
func (s *Store) Load(ctx context.Context) ([]entity.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(stateKey)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read storage slot: %w", err)
	}
	if raw == nil {
		return []entity.Invoice{}, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Corrupt slot: degrade to an empty collection.
		return []entity.Invoice{}, nil
	}
	if env.Invoices == nil {
		return []entity.Invoice{}, nil
	}
	return env.Invoices, nil
}

// Save serializes {"invoices":[...]} and fully overwrites the slot.
func (s *Store) Save(ctx context.Context, invoices []entity.Invoice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if invoices == nil {
		invoices = []entity.Invoice{}
	}

	payload, err := json.Marshal(envelope{Invoices: invoices})
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("storage bucket is missing")
		}
		return b.Put([]byte(stateKey), payload)
	})
	if err != nil {
		return fmt.Errorf("write storage slot: %w", err)
	}
	return nil
}

func (s *Store) ensureBucket() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketName)); err != nil {
			return fmt.Errorf("create storage bucket: %w", err)
		}
		return nil
	})
}
