// Package boltstore provides a BBolt-backed token store.
package boltstore

import (
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/onionrsv/console-session/tokenstore"
)

const (
	bucketName      = "session"
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
)

// Store implements tokenstore.Repo backed by a BBolt database.
type Store struct {
	db *bbolt.DB
}

var _ tokenstore.Repo = (*Store)(nil)

// New returns a Store backed by the given BBolt database.
func New(db *bbolt.DB) *Store {
	return &Store{db: db}
}

// NewFromFile opens a BBolt database at the given path and returns a Store.
func NewFromFile(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, errors.Wrap(err, "[boltstore.NewFromFile] bbolt.Open")
	}
	return New(db), nil
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes both tokens in a single transaction.
func (s *Store) Save(pair tokenstore.TokenPair) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		if err := b.Put([]byte(accessTokenKey), []byte(pair.AccessToken)); err != nil {
			return err
		}
		return b.Put([]byte(refreshTokenKey), []byte(pair.RefreshToken))
	})
	return errors.Wrap(err, "[boltstore.Save] db.Update")
}

// Load reads the stored pair. A missing bucket or missing keys yield an
// empty pair, not an error.
func (s *Store) Load() (tokenstore.TokenPair, error) {
	var pair tokenstore.TokenPair
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		pair.AccessToken = string(b.Get([]byte(accessTokenKey)))
		pair.RefreshToken = string(b.Get([]byte(refreshTokenKey)))
		return nil
	})
	if err != nil {
		return tokenstore.TokenPair{}, errors.Wrap(err, "[boltstore.Load] db.View")
	}
	return pair, nil
}

// Clear removes both tokens in a single transaction.
func (s *Store) Clear() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		if err := b.Delete([]byte(accessTokenKey)); err != nil {
			return err
		}
		return b.Delete([]byte(refreshTokenKey))
	})
	return errors.Wrap(err, "[boltstore.Clear] db.Update")
}
