package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/its-jojoo/otterboard/internal/adapter/storage"
)

// ErrUnavailable is returned while a failure mode is switched on.
var ErrUnavailable = errors.New("memory store unavailable")

// Store is an in-process Backend. It can be told to fail reads or writes to
// mimic a full or locked-down profile.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte

	failReads  bool
	failWrites bool
	writes     int
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failReads {
		return nil, ErrUnavailable
	}
	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return ErrUnavailable
	}
	s.data[key] = append([]byte(nil), value...)
	s.writes++
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return ErrUnavailable
	}
	if _, ok := s.data[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.data, key)
	return nil
}

func (s *Store) Close() error { return nil }

// FailReads toggles read failures.
func (s *Store) FailReads(on bool) {
	s.mu.Lock()
	s.failReads = on
	s.mu.Unlock()
}

// FailWrites toggles write failures (quota exceeded, private mode).
func (s *Store) FailWrites(on bool) {
	s.mu.Lock()
	s.failWrites = on
	s.mu.Unlock()
}

// Writes counts successful Put calls.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Raw returns the stored bytes for key, or nil.
func (s *Store) Raw(key string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key]
}
