// Package store holds the whole ledger state in memory behind a single
// mutex. Every public operation on the state runs as one atomic
// transaction; a successful update flushes the full snapshot through the
// configured blob adapter.
package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// BlobStore persists the store as one opaque blob under a fixed key.
type BlobStore interface {
	// Load returns the stored snapshot, or (nil, nil) when none exists.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// Store is the single process-wide ledger state.
type Store struct {
	mu     sync.RWMutex
	state  *State
	blob   BlobStore
	logger *zap.Logger
}

// Open loads the persisted snapshot through blob, or starts empty when
// nothing is stored yet.
func Open(ctx context.Context, blob BlobStore, logger *zap.Logger) (*Store, error) {
	raw, err := blob.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: load snapshot: %w", err)
	}

	state := newState()
	if len(raw) > 0 {
		state, err = decodeState(raw)
		if err != nil {
			return nil, fmt.Errorf("store: decode snapshot: %w", err)
		}
	}

	logger.Info("store opened",
		zap.Int("users", len(state.Users)),
		zap.Int("cards", len(state.Cards)),
		zap.Int("applications", len(state.Applications)))

	return &Store{state: state, blob: blob, logger: logger}, nil
}

// Update runs fn over the state under the write lock and flushes the
// snapshot when fn succeeds. Callers must validate before mutating so a
// returned error leaves no partial state behind.
func (s *Store) Update(ctx context.Context, fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.state); err != nil {
		return err
	}
	return s.flushLocked(ctx)
}

// View runs fn over the state under the read lock. fn must not retain
// references past its return.
func (s *Store) View(fn func(*State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// Reset discards all state and the persisted snapshot, returning the
// store to empty collections.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.blob.Reset(ctx); err != nil {
		return fmt.Errorf("store: reset snapshot: %w", err)
	}
	s.state = newState()
	s.logger.Info("store reset")
	return nil
}

func (s *Store) flushLocked(ctx context.Context) error {
	raw, err := encodeState(s.state)
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}
	if err := s.blob.Save(ctx, raw); err != nil {
		return fmt.Errorf("store: save snapshot: %w", err)
	}
	return nil
}
