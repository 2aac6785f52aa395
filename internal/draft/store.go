// Package draft keeps the events being edited.
//
// A Store is an immutable snapshot: every mutation returns a new Store and
// leaves the receiver as it was. Events and rows are addressed by position.
// Positions shift when an earlier event or row is removed, so callers must
// not cache an index across a mutation; a stale index that falls outside the
// current range is rejected with ErrIndexOutOfRange rather than clamped.
package draft

import (
	"errors"
	"fmt"
	"strings"

	"rgehrsitz/pilc/internal/rules"
)

var (
	ErrEmptyLabel      = errors.New("event label cannot be empty")
	ErrDuplicateEvent  = errors.New("event label already in use")
	ErrUnknownEvent    = errors.New("unknown event")
	ErrUnknownSlot     = errors.New("unknown row slot")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Event is one named rule set. Every section in rules.SupportedSections is
// present, possibly with no rows.
type Event struct {
	Label    string                  `json:"label"`
	Sections map[rules.Section][]Row `json:"sections"`
}

// Rows returns the rows of section.
func (e Event) Rows(section rules.Section) []Row {
	return e.Sections[section]
}

func newEvent(label string) Event {
	sections := make(map[rules.Section][]Row, len(rules.SupportedSections))
	for _, s := range rules.SupportedSections {
		sections[s] = []Row{}
	}
	return Event{Label: label, Sections: sections}
}

func (e Event) clone() Event {
	sections := make(map[rules.Section][]Row, len(e.Sections))
	for s, rows := range e.Sections {
		cp := make([]Row, len(rows))
		copy(cp, rows)
		sections[s] = cp
	}
	return Event{Label: e.Label, Sections: sections}
}

// Store is the ordered list of draft events. The zero value is empty.
type Store struct {
	events []Event
}

func (s Store) indexOf(label string) int {
	for i, e := range s.events {
		if e.Label == label {
			return i
		}
	}
	return -1
}

// replace returns a copy of s whose event i is ev. Other events are shared;
// they are never mutated in place.
func (s Store) replace(i int, ev Event) Store {
	events := make([]Event, len(s.events))
	copy(events, s.events)
	events[i] = ev
	return Store{events: events}
}

func (s Store) event(label string) (int, Event, error) {
	i := s.indexOf(label)
	if i < 0 {
		return -1, Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, label)
	}
	return i, s.events[i], nil
}

// AddEvent appends an event with every section empty.
func (s Store) AddEvent(label string) (Store, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return s, ErrEmptyLabel
	}
	if s.indexOf(label) >= 0 {
		return s, fmt.Errorf("%w: %q", ErrDuplicateEvent, label)
	}
	events := make([]Event, len(s.events), len(s.events)+1)
	copy(events, s.events)
	return Store{events: append(events, newEvent(label))}, nil
}

// RemoveEvent deletes the event at index. Later events shift down by one.
func (s Store) RemoveEvent(index int) (Store, error) {
	if index < 0 || index >= len(s.events) {
		return s, fmt.Errorf("%w: event %d (have %d)", ErrIndexOutOfRange, index, len(s.events))
	}
	events := make([]Event, 0, len(s.events)-1)
	events = append(events, s.events[:index]...)
	events = append(events, s.events[index+1:]...)
	return Store{events: events}, nil
}

// AddRow appends an empty row to a section and returns its index.
func (s Store) AddRow(eventLabel string, section rules.Section) (Store, int, error) {
	if !section.Valid() {
		return s, -1, fmt.Errorf("%w: %q", rules.ErrUnknownSection, section)
	}
	i, ev, err := s.event(eventLabel)
	if err != nil {
		return s, -1, err
	}
	ev = ev.clone()
	ev.Sections[section] = append(ev.Sections[section], Row{})
	return s.replace(i, ev), len(ev.Sections[section]) - 1, nil
}

// RemoveRow deletes a row. Later rows of the section shift down by one.
func (s Store) RemoveRow(eventLabel string, section rules.Section, index int) (Store, error) {
	if !section.Valid() {
		return s, fmt.Errorf("%w: %q", rules.ErrUnknownSection, section)
	}
	i, ev, err := s.event(eventLabel)
	if err != nil {
		return s, err
	}
	rows := ev.Sections[section]
	if index < 0 || index >= len(rows) {
		return s, fmt.Errorf("%w: row %d of %s in event '%s' (have %d)", ErrIndexOutOfRange, index, section, eventLabel, len(rows))
	}
	ev = ev.clone()
	ev.Sections[section] = append(ev.Sections[section][:index], ev.Sections[section][index+1:]...)
	return s.replace(i, ev), nil
}

// SetField writes one slot of a row.
func (s Store) SetField(key RowKey, value string) (Store, error) {
	if !key.Section.Valid() {
		return s, fmt.Errorf("%w: %q", rules.ErrUnknownSection, key.Section)
	}
	i, ev, err := s.event(key.Event)
	if err != nil {
		return s, err
	}
	rows := ev.Sections[key.Section]
	if key.Index < 0 || key.Index >= len(rows) {
		return s, fmt.Errorf("%w: %s (have %d rows)", ErrIndexOutOfRange, key, len(rows))
	}
	row, err := rows[key.Index].with(key.Slot, value)
	if err != nil {
		return s, err
	}
	ev = ev.clone()
	ev.Sections[key.Section][key.Index] = row
	return s.replace(i, ev), nil
}

// Row returns the row addressed by key; key.Slot is ignored.
func (s Store) Row(key RowKey) (Row, error) {
	_, ev, err := s.event(key.Event)
	if err != nil {
		return Row{}, err
	}
	rows := ev.Sections[key.Section]
	if key.Index < 0 || key.Index >= len(rows) {
		return Row{}, fmt.Errorf("%w: %s (have %d rows)", ErrIndexOutOfRange, key, len(rows))
	}
	return rows[key.Index], nil
}

// Event returns a copy of the event with label.
func (s Store) Event(label string) (Event, bool) {
	i := s.indexOf(label)
	if i < 0 {
		return Event{}, false
	}
	return s.events[i].clone(), true
}

// Events returns a copy of every event in order.
func (s Store) Events() []Event {
	out := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.clone())
	}
	return out
}

func (s Store) Len() int {
	return len(s.events)
}

// Labels returns the event labels in order.
func (s Store) Labels() []string {
	labels := make([]string, 0, len(s.events))
	for _, e := range s.events {
		labels = append(labels, e.Label)
	}
	return labels
}
