package store

import (
	"context"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/scango/internal/transaction"
)

const bucketName = "transactions"

// Bolt persists transactions as JSON documents in a single-file BoltDB
// database. Bolt serializes writers, so UpdateTransaction is atomic.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the database at path and ensures the bucket
// exists.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close releases the database file lock.
func (s *Bolt) Close() error {
	return s.db.Close()
}

func (s *Bolt) CreateTransaction(_ context.Context, t *transaction.Transaction) error {
	data, err := marshalRecord(t)
	if err != nil {
		return fmt.Errorf("encoding transaction: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		if b.Get(t.ID[:]) != nil {
			return fmt.Errorf("duplicate id %s", t.ID)
		}

		return b.Put(t.ID[:], data)
	})
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Bolt) GetTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	var out *transaction.Transaction

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get(id[:])
		if v == nil {
			return transaction.ErrNotFound
		}

		var err error
		out, err = unmarshalRecord(v)

		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Bolt) UpdateTransaction(_ context.Context, id uuid.UUID, fn func(*transaction.Transaction) error) (*transaction.Transaction, error) {
	var out *transaction.Transaction

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		v := b.Get(id[:])
		if v == nil {
			return transaction.ErrNotFound
		}

		current, err := unmarshalRecord(v)
		if err != nil {
			return fmt.Errorf("decoding transaction: %w", err)
		}

		if err := fn(current); err != nil {
			return err
		}

		data, err := marshalRecord(current)
		if err != nil {
			return fmt.Errorf("encoding transaction: %w", err)
		}

		out = current

		return b.Put(id[:], data)
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Bolt) ListTransactions(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	txs := []*transaction.Transaction{}

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(_, v []byte) error {
			t, err := unmarshalRecord(v)
			if err != nil {
				return err
			}

			if filter.Matches(t) {
				txs = append(txs, t)
			}

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	sortByCreated(txs)

	return txs, nil
}
