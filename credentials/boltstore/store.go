// Package boltstore persists the credential pair in a local bbolt file so a
// CLI session survives between invocations.
package boltstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-auth-client/credentials"
	"go.etcd.io/bbolt"
)

const bucketCredentials = "credentials"

var (
	keyAccess  = []byte("access")
	keyRefresh = []byte("refresh")
)

var _ credentials.Store = (*Store)(nil)

type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the bolt file at path and ensures the credentials bucket exists.
// The file is created 0600 since it holds bearer secrets.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketCredentials)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketCredentials, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetAccess(_ context.Context) (string, error) {
	return s.get(keyAccess)
}

func (s *Store) SetAccess(_ context.Context, token string) error {
	return s.put(keyAccess, token)
}

func (s *Store) GetRefresh(_ context.Context) (string, error) {
	return s.get(keyRefresh)
}

func (s *Store) SetRefresh(_ context.Context, token string) error {
	return s.put(keyRefresh, token)
}

func (s *Store) ClearAll(_ context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketCredentials))
		if bucket == nil {
			return nil
		}
		for _, key := range [][]byte{keyAccess, keyRefresh} {
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("failed to delete %s: %w", key, err)
			}
		}
		return nil
	})
}

func (s *Store) get(key []byte) (string, error) {
	var value string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketCredentials))
		if bucket == nil {
			return nil
		}
		// string() copies; the slice is only valid inside the transaction
		value = string(bucket.Get(key))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) put(key []byte, token string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(bucketCredentials))
		if err != nil {
			return fmt.Errorf("%s bucket not found: %w", bucketCredentials, err)
		}
		if token == "" {
			return bucket.Delete(key)
		}
		if err := bucket.Put(key, []byte(token)); err != nil {
			return fmt.Errorf("failed to store %s: %w", key, err)
		}
		return nil
	})
}
