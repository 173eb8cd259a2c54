package event

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/google/uuid"
)

type StubEventRepository struct {
	mu     sync.Mutex
	events map[int]map[string]calendar.Event
}

func NewStubEventRepository() *StubEventRepository {
	return &StubEventRepository{events: make(map[int]map[string]calendar.Event)}
}

func (r *StubEventRepository) WithTransaction(ctx context.Context, fn func(repo EventRepository) error) error {
	return fn(r)
}

func (r *StubEventRepository) StoreEvent(ctx context.Context, userId int, event calendar.Event) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.UID = uuid.NewString()
	if r.events[userId] == nil {
		r.events[userId] = make(map[string]calendar.Event)
	}
	r.events[userId][event.UID] = event
	return event.UID, nil
}

func (r *StubEventRepository) GetEvents(ctx context.Context, userId int, from, to time.Time) ([]calendar.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]calendar.Event, 0)
	for _, e := range r.events[userId] {
		if !e.StartTime.After(to) && (!e.EndTime.Before(from) || e.Recurrence != "") {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].UID < events[j].UID
		}
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

func (r *StubEventRepository) GetEvent(ctx context.Context, userId int, uid string) (calendar.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[userId][uid]
	if !ok {
		return calendar.Event{}, ErrEventNotFound
	}
	return e, nil
}

func (r *StubEventRepository) UpdateEvent(ctx context.Context, userId int, event calendar.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[userId][event.UID]; !ok {
		return ErrEventNotFound
	}
	r.events[userId][event.UID] = event
	return nil
}

func (r *StubEventRepository) DeleteEvent(ctx context.Context, userId int, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[userId][uid]; !ok {
		return ErrEventNotFound
	}
	delete(r.events[userId], uid)
	return nil
}
