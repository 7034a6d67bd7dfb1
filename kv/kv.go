// Package kv wraps bitcask with hashed keys for small persistent sets.
package kv

import (
	"time"

	"git.mills.io/prologic/bitcask"

	"smartfilter/logger"
)

type Store struct {
	data *bitcask.Bitcask
}

// Open opens (or creates) the store at path and starts a daily merge
// to reclaim space.
func Open(path string) (*Store, error) {
	data, err := bitcask.Open(path)
	if err != nil {
		return nil, err
	}
	s := &Store{data: data}

	go func() {
		for {
			time.Sleep(24 * time.Hour)
			s.Merge()
		}
	}()

	return s, nil
}

func (s *Store) Close() error {
	return s.data.Close()
}

// Merge reclaims space from deleted keys.
func (s *Store) Merge() {
	if err := s.data.Merge(); err != nil {
		logger.Error("Error merging store", "error", err)
	}
}

func (s *Store) Put(key string, value []byte) error {
	return s.data.Put(cacheKey(key), value)
}

func (s *Store) Get(key string) ([]byte, error) {
	return s.data.Get(cacheKey(key))
}

func (s *Store) Has(key string) bool {
	return s.data.Has(cacheKey(key))
}

func (s *Store) Delete(key string) error {
	return s.data.Delete(cacheKey(key))
}

// Fold calls fn for every stored value. Keys are hashed so only values
// are recoverable; callers store self-describing values.
func (s *Store) Fold(fn func(value []byte) error) error {
	return s.data.Fold(func(key []byte) error {
		value, err := s.data.Get(key)
		if err != nil {
			return err
		}
		return fn(value)
	})
}
