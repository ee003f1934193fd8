// Package boltdb stores day documents in a bbolt file.
package boltdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/hylla/dayflow/internal/adapters/storage/docstore"
	"github.com/hylla/dayflow/internal/app"
	"github.com/hylla/dayflow/internal/domain"
)

var (
	daysBucket = []byte("days")
	tagsBucket = []byte("tags")
)

var errDatabaseLocked = errors.New("database is locked by another dayflow process")

// Repository is a bbolt-backed app.Repository.
type Repository struct {
	db *bolt.DB
}

var _ app.Repository = (*Repository)(nil)

// Open opens or creates the bolt file at path.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("bolt path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bolt dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) || errors.Is(err, bolt.ErrTimeout) {
			return nil, errDatabaseLocked
		}
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{daysBucket, tagsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bolt buckets: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close closes the underlying file.
func (r *Repository) Close() error {
	return r.db.Close()
}

// ListDays scans the user's key prefix in date order.
func (r *Repository) ListDays(_ context.Context, userID string) ([]domain.Day, error) {
	out := make([]domain.Day, 0)
	prefix := docstore.DayPrefix(userID)
	err := r.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(daysBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			day, err := docstore.DecodeDay(v)
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
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(daysBucket).Put(docstore.DayKey(userID, date), value)
	})
}

// DeleteDay removes the day document.
func (r *Repository) DeleteDay(_ context.Context, userID, date string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(daysBucket)
		key := docstore.DayKey(userID, date)
		if b.Get(key) == nil {
			return app.ErrNotFound
		}
		return b.Delete(key)
	})
}

// GetTagSet reads the tag-set document.
func (r *Repository) GetTagSet(_ context.Context, userID string) ([]domain.Tag, bool, error) {
	var (
		tags  []domain.Tag
		found bool
	)
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(tagsBucket).Get(docstore.TagSetKey(userID))
		if raw == nil {
			return nil
		}
		decoded, err := docstore.DecodeTags(raw)
		if err != nil {
			return err
		}
		tags, found = decoded, true
		return nil
	})
	return tags, found, err
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
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(tagsBucket).Put(docstore.TagSetKey(userID), value)
	})
}
