package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/gradual/internal/domain/alarm"
	"github.com/oshokin/gradual/internal/playback"
	"github.com/oshokin/gradual/internal/repository/alarms"
)

var errStorageDown = fmt.Errorf("%w: disk unplugged", alarms.ErrStorageUnavailable)

// memoryStore is an in-memory Store keeping insertion order.
type memoryStore struct {
	// mu guards every field.
	mu sync.Mutex
	// order lists IDs in insertion order.
	order []uuid.UUID
	// records maps IDs to stored alarms.
	records map[uuid.UUID]*alarm.Alarm
	// listErr is returned by ListEnabled when set.
	listErr error
	// lists counts ListEnabled calls.
	lists int
	// updates counts successful Update calls.
	updates int
}

func newMemoryStore(list ...*alarm.Alarm) *memoryStore {
	s := &memoryStore{
		records: make(map[uuid.UUID]*alarm.Alarm),
	}

	for _, a := range list {
		s.order = append(s.order, a.ID)
		s.records[a.ID] = a.Clone()
	}

	return s
}

// ListEnabled implements Store.
func (s *memoryStore) ListEnabled(context.Context) ([]*alarm.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists++

	if s.listErr != nil {
		return nil, s.listErr
	}

	var result []*alarm.Alarm

	for _, id := range s.order {
		if a, found := s.records[id]; found && a.Enabled {
			result = append(result, a.Clone())
		}
	}

	return result, nil
}

// Update implements Store.
func (s *memoryStore) Update(_ context.Context, id uuid.UUID, fn alarms.MutateFunc) (*alarm.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, found := s.records[id]
	if !found {
		return nil, alarms.ErrNotFound
	}

	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	s.records[id] = working
	s.updates++

	return working.Clone(), nil
}

// Delete implements Store.
func (s *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.records[id]; !found {
		return alarms.ErrNotFound
	}

	delete(s.records, id)

	return nil
}

// get returns a copy of the stored alarm or nil.
func (s *memoryStore) get(id uuid.UUID) *alarm.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.records[id].Clone()
}

// listCalls returns how many times ListEnabled ran.
func (s *memoryStore) listCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lists
}

// fakePlayer records playback requests.
type fakePlayer struct {
	// mu guards every field.
	mu sync.Mutex
	// status is returned by CurrentPlayback.
	status *playback.Status
	// statusErr is returned by CurrentPlayback when set.
	statusErr error
	// playErr is returned by Play when set.
	playErr error
	// requests holds every Play call.
	requests []playback.Request
}

// CurrentPlayback implements playback.Controller.
func (p *fakePlayer) CurrentPlayback(context.Context) (*playback.Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status, p.statusErr
}

// Play implements playback.Controller.
func (p *fakePlayer) Play(_ context.Context, request playback.Request) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, request)

	return p.playErr
}

// played returns a copy of the recorded requests.
func (p *fakePlayer) played() []playback.Request {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]playback.Request(nil), p.requests...)
}

// fakeNotifier records notified alarm IDs.
type fakeNotifier struct {
	// mu guards ids.
	mu sync.Mutex
	// ids are the notified alarms.
	ids []uuid.UUID
}

// AlarmPlayed implements Notifier.
func (n *fakeNotifier) AlarmPlayed(_ context.Context, a *alarm.Alarm) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.ids = append(n.ids, a.ID)
}

// failingResolver fails every moment lookup.
type failingResolver struct{}

// Resolve implements schedule.MomentResolver.
func (failingResolver) Resolve(context.Context, string, time.Time) (time.Time, error) {
	return time.Time{}, errors.New("location unresolved")
}

// at returns the given weekday and clock time in the week of 2024-06-17 (a Monday).
func at(day alarm.Weekday, hour, minute, second int) time.Time {
	return time.Date(2024, time.June, 17+int(day), hour, minute, second, 0, time.UTC)
}

// newAlarm builds an enabled fixed-time alarm.
func newAlarm(t *testing.T, hour, minute int, days ...alarm.Weekday) *alarm.Alarm {
	t.Helper()

	ds, err := alarm.NewDays(days...)
	require.NoError(t, err)

	return alarm.New(hour, minute, ds)
}
