// Package store keeps the shared, optimistically-updated record lists that
// every mounted view reads from.
//
// A Store is an explicit object owned by the application root. Consumers
// Subscribe when they mount and Unsubscribe when they unmount; every
// confirmed mutation is applied to the list before any listener runs, and
// listeners run synchronously in registration order.
//
// Mutations are not serialised against each other. Two overlapping Update
// calls for the same id leave the list holding whichever response arrived
// last, not whichever call was made last. Snapshot.Version lets a consumer
// discard a snapshot older than one it has already rendered.
package store

import (
	"context"
	"sync"
	"sync/atomic"

	"certa/pkg/appapi"

	"go.uber.org/zap"
)

// Record is anything with a stable id.
type Record interface {
	RecordID() string
}

// Backend is the remote side of a Store.
type Backend[T Record, F any, In any] interface {
	List(ctx context.Context, filter F) ([]T, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id string, in In) (T, error)
	Delete(ctx context.Context, id string) error
}

// Snapshot is an immutable view of a Store at one version. Items is a copy;
// listeners must treat the records themselves as read-only.
type Snapshot[T Record] struct {
	Items     []T
	Loading   bool
	LastError string
	Version   uint64
}

// Listener receives a snapshot after every state change.
type Listener[T Record] interface {
	OnChange(Snapshot[T])
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc[T Record] func(Snapshot[T])

func (f ListenerFunc[T]) OnChange(s Snapshot[T]) { f(s) }

// Subscription identifies a registered listener.
type Subscription uint64

type subscriber[T Record] struct {
	id       Subscription
	listener Listener[T]
	active   *atomic.Bool
}

// Store is the shared cache for one resource type.
type Store[T Record, F any, In any] struct {
	name    string
	backend Backend[T, F, In]
	logger  *zap.Logger

	mu        sync.Mutex
	items     []T
	loading   bool
	lastError string
	version   uint64
	nextID    Subscription
	subs      []subscriber[T]
}

// New returns an empty Store named name (used in logs).
func New[T Record, F any, In any](name string, backend Backend[T, F, In]) *Store[T, F, In] {
	return &Store[T, F, In]{
		name:    name,
		backend: backend,
		logger:  appapi.Log().Zap().Named("store").With(zap.String("store", name)),
	}
}

// Subscribe registers l and returns a handle for Unsubscribe. Every
// Subscribe must be paired with an Unsubscribe or the listener set grows
// for the life of the process.
func (s *Store[T, F, In]) Subscribe(l Listener[T]) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	active := &atomic.Bool{}
	active.Store(true)
	s.subs = append(s.subs, subscriber[T]{id: s.nextID, listener: l, active: active})
	return s.nextID
}

// Unsubscribe removes the listener. No delivery starts after Unsubscribe
// returns, including the rest of a notification that is already running.
// A delivery that began on another goroutine before the call may still be
// inside OnChange when Unsubscribe returns; Unsubscribe does not wait for
// it, since listeners hand work to the UI goroutine that usually calls
// Unsubscribe. Listeners that care guard on their own mounted state.
// Unknown handles are ignored.
func (s *Store[T, F, In]) Unsubscribe(id Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			sub.active.Store(false)
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// SubscriberCount reports how many listeners are registered.
func (s *Store[T, F, In]) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Snapshot returns the current state.
func (s *Store[T, F, In]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Get returns the cached record with id.
func (s *Store[T, F, In]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Len returns the number of cached records.
func (s *Store[T, F, In]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Load replaces the list with the backend's result for filter.
//
// While a load is in flight further calls return nil immediately without
// touching the backend. On failure the previous items are kept, LastError
// is set and the error is also returned. Listeners are notified once when
// loading starts and once when it completes.
func (s *Store[T, F, In]) Load(ctx context.Context, filter F) error {
	_, err := s.TryLoad(ctx, filter)
	return err
}

// TryLoad is Load that also reports whether it fetched. It returns false
// without touching the backend when another load is already in flight, so
// a caller whose filter differs can load again once that one completes.
func (s *Store[T, F, In]) TryLoad(ctx context.Context, filter F) (bool, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		s.logger.Debug("load already in flight")
		return false, nil
	}
	s.loading = true
	s.version++
	s.mu.Unlock()
	s.notify()

	items, err := s.backend.List(ctx, filter)

	s.mu.Lock()
	if err != nil {
		s.lastError = err.Error()
		s.logger.Warn("load failed", zap.Error(err))
	} else {
		s.items = append(make([]T, 0, len(items)), items...)
		s.lastError = ""
	}
	s.loading = false
	s.version++
	s.mu.Unlock()
	s.notify()

	return true, err
}

// Create sends in to the backend and prepends the returned record. A
// failure is returned to the caller and leaves the list untouched.
func (s *Store[T, F, In]) Create(ctx context.Context, in In) (T, error) {
	created, err := s.backend.Create(ctx, in)
	if err != nil {
		var zero T
		return zero, err
	}

	s.mu.Lock()
	if i := s.indexLocked(created.RecordID()); i >= 0 {
		s.items = append(s.items[:i:i], s.items[i+1:]...)
	}
	s.items = append([]T{created}, s.items...)
	s.version++
	s.mu.Unlock()
	s.notify()

	return created, nil
}

// Update sends in to the backend and replaces the record with id in place.
// If id is not cached the list is left as it is; the returned record is
// what callers holding a detail copy should use.
func (s *Store[T, F, In]) Update(ctx context.Context, id string, in In) (T, error) {
	updated, err := s.backend.Update(ctx, id, in)
	if err != nil {
		var zero T
		return zero, err
	}
	s.apply(id, updated)
	return updated, nil
}

// Delete removes the record with id on the backend and then locally.
// Clearing any selection that pointed at it is the caller's job.
func (s *Store[T, F, In]) Delete(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.items = append(s.items[:i:i], s.items[i+1:]...)
	}
	s.version++
	s.mu.Unlock()
	s.notify()

	return nil
}

// apply replaces the cached record with id by rec and notifies.
func (s *Store[T, F, In]) apply(id string, rec T) {
	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.items[i] = rec
	} else {
		s.logger.Debug("update for uncached record", zap.String("id", id))
	}
	s.version++
	s.mu.Unlock()
	s.notify()
}

func (s *Store[T, F, In]) indexLocked(id string) int {
	for i, item := range s.items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T, F, In]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Items:     append(make([]T, 0, len(s.items)), s.items...),
		Loading:   s.loading,
		LastError: s.lastError,
		Version:   s.version,
	}
}

// notify delivers the current snapshot to every active listener, in
// registration order, outside the lock so listeners may call back into
// the store.
func (s *Store[T, F, In]) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	subs := append([]subscriber[T](nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.active.Load() {
			sub.listener.OnChange(snap)
		}
	}
}
