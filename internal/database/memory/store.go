// Package memory is an in-process storage backend implementing every repository
// interface. It backs development mode and the service unit tests.
//
// A transaction holds a store-wide lock from Begin until Commit or Rollback, so
// units of work are serializable. Mutations record an undo entry; Rollback
// replays them in reverse.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// ErrTxDone is returned when committing a transaction that already ended.
var ErrTxDone = errors.New("transaction already committed or rolled back")

// Store holds all state of the in-memory backend.
type Store struct {
	sem chan struct{}

	collectibles  map[string]domain.Collectible
	inventory     map[domain.EntryKey]int
	packs         map[string]*domain.Pack
	proposals     map[string]*domain.TradeProposal
	reservations  map[domain.EntryKey]domain.Reservation
	notifications map[string]*domain.Notification
	purchases     map[string]domain.Purchase
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		sem:           make(chan struct{}, 1),
		collectibles:  make(map[string]domain.Collectible),
		inventory:     make(map[domain.EntryKey]int),
		packs:         make(map[string]*domain.Pack),
		proposals:     make(map[string]*domain.TradeProposal),
		reservations:  make(map[domain.EntryKey]domain.Reservation),
		notifications: make(map[string]*domain.Notification),
		purchases:     make(map[string]domain.Purchase),
	}
}

// acquire takes the store lock, giving up when ctx is done.
func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.sem
}

// read runs fn under the store lock for non-transactional reads and writes.
func (s *Store) read(ctx context.Context, fn func() error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	return fn()
}

// Ping reports whether the store lock can be taken before ctx ends.
func (s *Store) Ping(ctx context.Context) error {
	return s.read(ctx, func() error { return nil })
}

func (s *Store) begin(ctx context.Context) (*storeTx, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	return &storeTx{s: s}, nil
}

// storeTx is the single transaction type behind every repository Tx interface.
type storeTx struct {
	s    *Store
	mu   sync.Mutex
	undo []func()
	done bool
}

func (t *storeTx) record(fn func()) {
	t.undo = append(t.undo, fn)
}

// Commit keeps every mutation and releases the store lock
func (t *storeTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.undo = nil
	t.s.release()
	return nil
}

// Rollback undoes every mutation. Rolling back a finished transaction is a no-op.
func (t *storeTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.s.release()
	return nil
}

func (t *storeTx) checkOpen() error {
	if t.done {
		return ErrTxDone
	}
	return nil
}
