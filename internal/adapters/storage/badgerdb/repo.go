// Package badgerdb stores day documents in a badger directory.
package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/hylla/dayflow/internal/adapters/storage/docstore"
	"github.com/hylla/dayflow/internal/app"
	"github.com/hylla/dayflow/internal/domain"
)

// Repository is a badger-backed app.Repository.
type Repository struct {
	db *badger.DB
}

var _ app.Repository = (*Repository)(nil)

// Open opens or creates a badger store in dir.
func Open(dir string) (*Repository, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("badger dir is required")
	}
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Repository{db: db}, nil
}

// OpenInMemory opens a store that lives only for the process.
func OpenInMemory() (*Repository, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger memory: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close flushes and closes the store.
func (r *Repository) Close() error {
	return r.db.Close()
}

// ListDays iterates the user's key prefix. Keys sort by date.
func (r *Repository) ListDays(_ context.Context, userID string) ([]domain.Day, error) {
	out := make([]domain.Day, 0)
	prefix := docstore.DayPrefix(userID)
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var day domain.Day
			err := it.Item().Value(func(val []byte) error {
				decoded, err := docstore.DecodeDay(val)
				day = decoded
				return err
			})
			if err != nil {
				return err
			}
			out = append(out, day)
		}
		return nil
	})
	return out, err
}

// PutDay writes the day document.
func (r *Repository) PutDay(_ context.Context, userID, date string, day domain.Day) error {
	if err := docstore.ValidUserID(userID); err != nil {
		return err
	}
	value, err := docstore.EncodeDay(day)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docstore.DayKey(userID, date), value)
	})
}

// DeleteDay removes the day document.
func (r *Repository) DeleteDay(_ context.Context, userID, date string) error {
	key := docstore.DayKey(userID, date)
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return app.ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// GetTagSet reads the tag-set document.
func (r *Repository) GetTagSet(_ context.Context, userID string) ([]domain.Tag, bool, error) {
	var tags []domain.Tag
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docstore.TagSetKey(userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := docstore.DecodeTags(val)
			tags = decoded
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return tags, true, nil
}

// PutTagSet overwrites the tag-set document.
func (r *Repository) PutTagSet(_ context.Context, userID string, tags []domain.Tag) error {
	if err := docstore.ValidUserID(userID); err != nil {
		return err
	}
	value, err := docstore.EncodeTags(tags)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docstore.TagSetKey(userID), value)
	})
}
