package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type person struct {
	ID   string
	Name string
}

func (p person) RecordID() string { return p.ID }

type personFilter struct{ Search string }

type personInput struct{ Name string }

// fakeBackend records calls; a non-nil gate blocks List until closed.
type fakeBackend struct {
	mu        sync.Mutex
	listCalls int32
	gate      chan struct{}
	entered   chan struct{}

	listResult []person
	listErr    error
	createFn   func(personInput) (person, error)
	updateFn   func(string, personInput) (person, error)
	deleteErr  error
}

func (b *fakeBackend) List(ctx context.Context, f personFilter) ([]person, error) {
	atomic.AddInt32(&b.listCalls, 1)
	if b.entered != nil {
		b.entered <- struct{}{}
	}
	if b.gate != nil {
		<-b.gate
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listResult, b.listErr
}

func (b *fakeBackend) Create(ctx context.Context, in personInput) (person, error) {
	return b.createFn(in)
}

func (b *fakeBackend) Update(ctx context.Context, id string, in personInput) (person, error) {
	return b.updateFn(id, in)
}

func (b *fakeBackend) Delete(ctx context.Context, id string) error {
	return b.deleteErr
}

type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot[person]
}

func (r *recorder) OnChange(s Snapshot[person]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *recorder) last() Snapshot[person] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

func newPeople(b *fakeBackend) *Store[person, personFilter, personInput] {
	return New[person, personFilter, personInput]("people", b)
}

func seed(t *testing.T, s *Store[person, personFilter, personInput], b *fakeBackend, items ...person) {
	t.Helper()
	b.listResult = items
	require.NoError(t, s.Load(context.Background(), personFilter{}))
}

func TestLoadReplacesItemsAndNotifiesStartAndEnd(t *testing.T) {
	b := &fakeBackend{listResult: []person{{"P1", "Alice"}, {"P2", "Bob"}}}
	s := newPeople(b)
	rec := &recorder{}
	s.Subscribe(rec)

	require.NoError(t, s.Load(context.Background(), personFilter{}))

	require.Equal(t, 2, rec.count())
	assert.True(t, rec.snaps[0].Loading)
	assert.False(t, rec.snaps[1].Loading)
	assert.Empty(t, rec.snaps[1].LastError)
	assert.Equal(t, b.listResult, rec.snaps[1].Items)
	assert.Less(t, rec.snaps[0].Version, rec.snaps[1].Version)
}

func TestLoadIsDeduplicatedWhileInFlight(t *testing.T) {
	b := &fakeBackend{
		gate:       make(chan struct{}),
		entered:    make(chan struct{}, 1),
		listResult: []person{{"P1", "Alice"}},
	}
	s := newPeople(b)

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background(), personFilter{}) }()
	<-b.entered

	require.True(t, s.Snapshot().Loading)
	require.NoError(t, s.Load(context.Background(), personFilter{}))
	assert.True(t, s.Snapshot().Loading, "suppressed load must not change the loading flag")
	ran, err := s.TryLoad(context.Background(), personFilter{})
	require.NoError(t, err)
	assert.False(t, ran)

	close(b.gate)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), atomic.LoadInt32(&b.listCalls))
	assert.False(t, s.Snapshot().Loading)

	ran, err = s.TryLoad(context.Background(), personFilter{})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestLoadFailureKeepsStaleItems(t *testing.T) {
	b := &fakeBackend{}
	s := newPeople(b)
	seed(t, s, b, person{"P1", "Alice"})
	before := s.Snapshot().Items

	b.listErr = errors.New("backend unavailable")
	err := s.Load(context.Background(), personFilter{})
	require.Error(t, err)

	snap := s.Snapshot()
	if diff := cmp.Diff(before, snap.Items); diff != "" {
		t.Fatalf("items changed after failed load (-before +after):\n%s", diff)
	}
	assert.Equal(t, "backend unavailable", snap.LastError)
	assert.False(t, snap.Loading)

	b.listErr = nil
	require.NoError(t, s.Load(context.Background(), personFilter{}))
	assert.Empty(t, s.Snapshot().LastError)
}

func TestCreatePrependsAndNotifiesAfterApplying(t *testing.T) {
	b := &fakeBackend{createFn: func(in personInput) (person, error) {
		return person{ID: "P9", Name: in.Name}, nil
	}}
	s := newPeople(b)
	seed(t, s, b, person{"P1", "Alice"})

	var sawCreated bool
	s.Subscribe(ListenerFunc[person](func(snap Snapshot[person]) {
		_, ok := s.Get("P9")
		sawCreated = ok && len(snap.Items) == 2 && snap.Items[0].ID == "P9"
	}))

	created, err := s.Create(context.Background(), personInput{Name: "Zoe"})
	require.NoError(t, err)
	assert.Equal(t, person{"P9", "Zoe"}, created)
	assert.True(t, sawCreated)

	matches := 0
	for _, p := range s.Snapshot().Items {
		if p == created {
			matches++
		}
	}
	assert.Equal(t, 1, matches)
}

func TestCreateDoesNotDuplicateAnAlreadyCachedID(t *testing.T) {
	b := &fakeBackend{createFn: func(in personInput) (person, error) {
		return person{ID: "P1", Name: in.Name}, nil
	}}
	s := newPeople(b)
	seed(t, s, b, person{"P0", "Old"}, person{"P1", "Alice"})

	_, err := s.Create(context.Background(), personInput{Name: "Alice B"})
	require.NoError(t, err)
	assert.Equal(t, []person{{"P1", "Alice B"}, {"P0", "Old"}}, s.Snapshot().Items)
}

func TestCreateFailureIsReturnedAndListUnchanged(t *testing.T) {
	conflict := errors.New("Session conflicts detected for Monday 9:00")
	b := &fakeBackend{createFn: func(personInput) (person, error) { return person{}, conflict }}
	s := newPeople(b)
	seed(t, s, b, person{"P1", "Alice"})
	rec := &recorder{}
	s.Subscribe(rec)

	_, err := s.Create(context.Background(), personInput{Name: "Zoe"})
	assert.Same(t, conflict, err)
	assert.Equal(t, []person{{"P1", "Alice"}}, s.Snapshot().Items)
	assert.Empty(t, s.Snapshot().LastError, "write errors are not folded into LastError")
	assert.Zero(t, rec.count())
}

func TestUpdateReplacesInPlaceAndNotifiesOnce(t *testing.T) {
	b := &fakeBackend{updateFn: func(id string, in personInput) (person, error) {
		return person{ID: id, Name: in.Name}, nil
	}}
	s := newPeople(b)
	seed(t, s, b, person{"P0", "Bob"}, person{"P1", "Alice"}, person{"P2", "Carol"})
	rec := &recorder{}
	s.Subscribe(rec)

	updated, err := s.Update(context.Background(), "P1", personInput{Name: "Alicia"})
	require.NoError(t, err)
	assert.Equal(t, person{"P1", "Alicia"}, updated)
	assert.Equal(t, []person{{"P0", "Bob"}, {"P1", "Alicia"}, {"P2", "Carol"}}, s.Snapshot().Items)
	assert.Equal(t, 1, rec.count())
}

func TestUpdateOfUncachedIDLeavesListAlone(t *testing.T) {
	b := &fakeBackend{updateFn: func(id string, in personInput) (person, error) {
		return person{ID: id, Name: in.Name}, nil
	}}
	s := newPeople(b)
	seed(t, s, b, person{"P1", "Alice"})

	updated, err := s.Update(context.Background(), "P404", personInput{Name: "Ghost"})
	require.NoError(t, err)
	assert.Equal(t, "Ghost", updated.Name)
	assert.Equal(t, []person{{"P1", "Alice"}}, s.Snapshot().Items)
}

func TestDeleteRemovesRecord(t *testing.T) {
	b := &fakeBackend{}
	s := newPeople(b)
	seed(t, s, b, person{"P1", "Alice"}, person{"P2", "Bob"})

	require.NoError(t, s.Delete(context.Background(), "P1"))
	assert.Equal(t, []person{{"P2", "Bob"}}, s.Snapshot().Items)

	b.deleteErr = errors.New("forbidden")
	require.Error(t, s.Delete(context.Background(), "P2"))
	assert.Equal(t, 1, s.Len())
}

func TestListenersRunInRegistrationOrder(t *testing.T) {
	b := &fakeBackend{}
	s := newPeople(b)

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		s.Subscribe(ListenerFunc[person](func(Snapshot[person]) { order = append(order, i) }))
	}
	seed(t, s, b)

	assert.Equal(t, []int{1, 2, 3, 1, 2, 3}, order)
}

func TestUnsubscribedListenerIsNeverCalledAgain(t *testing.T) {
	b := &fakeBackend{deleteErr: nil}
	s := newPeople(b)
	gone := &recorder{}
	stay := &recorder{}
	id := s.Subscribe(gone)
	s.Subscribe(stay)

	seed(t, s, b, person{"P1", "Alice"})
	require.Equal(t, 2, gone.count())

	s.Unsubscribe(id)
	s.Unsubscribe(id)
	assert.Equal(t, 1, s.SubscriberCount())

	require.NoError(t, s.Delete(context.Background(), "P1"))
	assert.Equal(t, 2, gone.count())
	assert.Equal(t, 3, stay.count())
}

func TestUnsubscribeDuringNotifySkipsLaterListener(t *testing.T) {
	b := &fakeBackend{}
	s := newPeople(b)
	later := &recorder{}
	var laterID Subscription
	s.Subscribe(ListenerFunc[person](func(snap Snapshot[person]) {
		if len(snap.Items) > 0 {
			s.Unsubscribe(laterID)
		}
	}))
	laterID = s.Subscribe(later)

	seed(t, s, b, person{"P1", "Alice"})
	// Loading start reached it; the completion notification did not.
	assert.Equal(t, 1, later.count())
	assert.Equal(t, 1, s.SubscriberCount())
}

func TestListenerMayReadStoreDuringNotify(t *testing.T) {
	b := &fakeBackend{}
	s := newPeople(b)
	var lens []int
	s.Subscribe(ListenerFunc[person](func(Snapshot[person]) { lens = append(lens, s.Len()) }))

	seed(t, s, b, person{"P1", "Alice"})
	assert.Equal(t, []int{0, 1}, lens)
}

func TestSnapshotItemsAreCopies(t *testing.T) {
	b := &fakeBackend{}
	s := newPeople(b)
	seed(t, s, b, person{"P1", "Alice"})

	snap := s.Snapshot()
	snap.Items[0].Name = "Mallory"
	got, ok := s.Get("P1")
	require.True(t, ok)
	assert.Equal(t, "Alice", got.Name)
}
