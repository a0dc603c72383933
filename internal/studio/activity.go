package studio

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind classifies an activity entry.
type EventKind string

const (
	EventCreate EventKind = "create"
	EventEdit   EventKind = "edit"
	EventDeploy EventKind = "deploy"
	EventRun    EventKind = "run"
	EventError  EventKind = "error"
	EventDelete EventKind = "delete"
)

// Event is one entry of an entity's history.
type Event struct {
	ID       string    `json:"id"`
	EntityID string    `json:"entity_id"`
	Kind     EventKind `json:"kind"`
	Actor    string    `json:"actor"`
	Message  string    `json:"message,omitempty"`
	TS       time.Time `json:"ts"`
}

// Validate checks the required fields.
func (e Event) Validate() error {
	if strings.TrimSpace(e.EntityID) == "" {
		return fmt.Errorf("entity id is required")
	}
	if !isValidKind(e.Kind) {
		return fmt.Errorf("invalid event kind %q", e.Kind)
	}
	if strings.TrimSpace(e.Actor) == "" {
		return fmt.Errorf("actor is required")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}

// IsAttention reports whether the event needs an operator's attention.
func (e Event) IsAttention() bool {
	return e.Kind == EventError
}

func isValidKind(k EventKind) bool {
	switch k {
	case EventCreate, EventEdit, EventDeploy, EventRun, EventError, EventDelete:
		return true
	}
	return false
}

// ActivityLog keeps recent events per entity. Events older than the TTL
// are dropped on read; a zero TTL keeps everything.
type ActivityLog struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string][]Event // keyed by entity id
}

// NewActivityLog returns an empty log.
func NewActivityLog(ttl time.Duration) *ActivityLog {
	return &ActivityLog{ttl: ttl, data: make(map[string][]Event)}
}

// Record validates and stores e, assigning an id when missing.
func (l *ActivityLog) Record(e Event) (Event, error) {
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data[e.EntityID] = append(l.data[e.EntityID], e)
	return e, nil
}

// Seed records catalog seed events relative to now.
func (l *ActivityLog) Seed(seed []SeedEvent, now time.Time) error {
	for i, s := range seed {
		ago, _ := time.ParseDuration(s.Ago)
		_, err := l.Record(Event{
			EntityID: s.Entity,
			Kind:     s.Kind,
			Actor:    s.Actor,
			Message:  s.Message,
			TS:       now.Add(-ago),
		})
		if err != nil {
			return fmt.Errorf("seed event %d: %w", i, err)
		}
	}
	return nil
}

// History returns the entity's events, newest first.
func (l *ActivityLog) History(entityID string, now time.Time) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(entityID, now)
	events := append([]Event(nil), l.data[entityID]...)
	sortNewestFirst(events)
	return events
}

// Snapshot returns every live event, newest first.
func (l *ActivityLog) Snapshot(now time.Time) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for id := range l.data {
		l.pruneLocked(id, now)
		out = append(out, l.data[id]...)
	}
	sortNewestFirst(out)
	return out
}

// SnapshotAttention returns the live events that need attention.
func (l *ActivityLog) SnapshotAttention(now time.Time) []Event {
	var out []Event
	for _, e := range l.Snapshot(now) {
		if e.IsAttention() {
			out = append(out, e)
		}
	}
	return out
}

// Forget drops an entity's history.
func (l *ActivityLog) Forget(entityID string) {
	l.mu.Lock()
	delete(l.data, entityID)
	l.mu.Unlock()
}

// Reset drops everything.
func (l *ActivityLog) Reset() {
	l.mu.Lock()
	l.data = make(map[string][]Event)
	l.mu.Unlock()
}

func (l *ActivityLog) pruneLocked(entityID string, now time.Time) {
	if l.ttl <= 0 {
		return
	}
	events := l.data[entityID]
	kept := events[:0]
	for _, e := range events {
		if now.Sub(e.TS) <= l.ttl {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(l.data, entityID)
		return
	}
	l.data[entityID] = kept
}

func sortNewestFirst(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].TS.Equal(events[j].TS) {
			return events[i].EntityID < events[j].EntityID
		}
		return events[i].TS.After(events[j].TS)
	})
}
