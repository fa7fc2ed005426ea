/*
Package event contains the community event store.

Events carry an attendee set that only changes through idempotent join/leave
attendance operations; everything else is immutable after creation.
*/
package event

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"commhub/internal/pkg/errs"
	"commhub/internal/pkg/logx"
	"commhub/internal/pkg/randx"
)

// Event describes a community event and who is attending it.
type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	OrganizerID   string    `json:"organizerId"`
	OrganizerName string    `json:"organizerName"`

	// Attendees is a set of logical user ids; the organizer is always a
	// member from creation.
	Attendees []string `json:"attendees"`

	CreatedAt time.Time `json:"createdAt"`
}

func (e *Event) clone() Event {
	out := *e
	out.Attendees = make([]string, len(e.Attendees))
	copy(out.Attendees, e.Attendees)
	return out
}

// Store holds all events created during the process lifetime. Mutations
// arrive serialized through the hub loop; reads may run concurrently.
type Store struct {
	mu     sync.RWMutex
	events []*Event
	byID   map[string]*Event
	logger zerolog.Logger
}

// NewStore constructs an empty event store.
func NewStore() *Store {
	return &Store{
		byID:   make(map[string]*Event),
		logger: logx.Logger().With().Str("component", "event_store").Logger(),
	}
}

// Create validates and stores a new event. Title, date, and location are
// required; the attendee set starts as {organizer}.
func (s *Store) Create(title, description string, date time.Time, location, organizerID, organizerName string) (Event, *errs.CustomError) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(location) == "" || date.IsZero() {
		return Event{}, errs.NewError(errs.ErrInvalidEvent)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev := &Event{
		ID:            randx.EventID(),
		Title:         title,
		Description:   description,
		Date:          date,
		Location:      location,
		OrganizerID:   organizerID,
		OrganizerName: organizerName,
		Attendees:     []string{organizerID},
		CreatedAt:     time.Now(),
	}

	s.events = append(s.events, ev)
	s.byID[ev.ID] = ev

	s.logger.Info().
		Str("event_id", ev.ID).
		Str("title", ev.Title).
		Time("date", ev.Date).
		Msg("Event created.")

	return ev.clone(), nil
}

// SetAttendance adds or removes userID from the event's attendee set.
// Adding an existing attendee or removing an absent one is a no-op that still
// returns the current event.
func (s *Store) SetAttendance(eventID, userID string, attending bool) (Event, *errs.CustomError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.byID[eventID]
	if !ok {
		return Event{}, errs.NewError(errs.ErrUnknownEvent)
	}

	idx := -1
	for i, id := range ev.Attendees {
		if id == userID {
			idx = i
			break
		}
	}

	switch {
	case attending && idx < 0:
		ev.Attendees = append(ev.Attendees, userID)
	case !attending && idx >= 0:
		ev.Attendees = append(ev.Attendees[:idx], ev.Attendees[idx+1:]...)
	}

	return ev.clone(), nil
}

// Get looks up an event by id.
func (s *Store) Get(eventID string) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.byID[eventID]
	if !ok {
		return Event{}, false
	}
	return ev.clone(), true
}

// All returns every event in creation order.
func (s *Store) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		events = append(events, ev.clone())
	}
	return events
}

// Upcoming returns events with a date strictly after now, ascending by date.
// An event dated exactly now is excluded.
func (s *Store) Upcoming(now time.Time) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	upcoming := make([]Event, 0)
	for _, ev := range s.events {
		if ev.Date.After(now) {
			upcoming = append(upcoming, ev.clone())
		}
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].Date.Before(upcoming[j].Date)
	})

	return upcoming
}
