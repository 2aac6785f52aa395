package preprocessor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"rgehrsitz/pilc/internal/draft"
	"rgehrsitz/pilc/internal/registry"
	"rgehrsitz/pilc/internal/resolver"
	"rgehrsitz/pilc/internal/rules"
)

// ComponentEntry is one component as the backend stores it.
type ComponentEntry struct {
	Label string      `json:"LABEL"`
	Value interface{} `json:"VALUE"`
}

// RowEntry is one serialized row. Check rows carry VALUE, effect rows carry
// ARG; both are omitted when the predicate takes no value.
type RowEntry struct {
	Label  string      `json:"LABEL"`
	Method string      `json:"METHOD"`
	Value  interface{} `json:"VALUE,omitempty"`
	Arg    interface{} `json:"ARG,omitempty"`
}

// EventEntry is one serialized event. Every section is present, possibly
// as an empty array.
type EventEntry struct {
	Label      string     `json:"LABEL"`
	Conditions []RowEntry `json:"CONDITIONS"`
	Effects    []RowEntry `json:"EFFECTS"`
	Activate   []RowEntry `json:"ACTIVATE"`
	Deactivate []RowEntry `json:"DEACTIVATE"`
}

// Rows returns a pointer to the slice holding section's rows.
func (e *EventEntry) Rows(section rules.Section) *[]RowEntry {
	switch section {
	case rules.SectionConditions:
		return &e.Conditions
	case rules.SectionEffects:
		return &e.Effects
	case rules.SectionActivate:
		return &e.Activate
	case rules.SectionDeactivate:
		return &e.Deactivate
	}
	return nil
}

func newEventEntry(label string) EventEntry {
	return EventEntry{
		Label:      label,
		Conditions: []RowEntry{},
		Effects:    []RowEntry{},
		Activate:   []RowEntry{},
		Deactivate: []RowEntry{},
	}
}

// Document is the body of PUT /dataEvents/{id}.
type Document struct {
	Components map[string][]ComponentEntry `json:"COMPONENTS"`
	Events     []EventEntry                `json:"EVENTS"`
}

// SerializeComponents groups the registry by backend component type. This is
// also the body of PUT /dataComponents.
func SerializeComponents(reg registry.Registry) map[string][]ComponentEntry {
	out := make(map[string][]ComponentEntry)
	for _, group := range reg.Grouped() {
		entries := make([]ComponentEntry, 0, len(group.Components))
		for _, c := range group.Components {
			entries = append(entries, ComponentEntry{Label: c.Label, Value: settingValue(c.Setting)})
		}
		out[group.Category.WireType()] = entries
	}
	return out
}

// Pin numbers and initial values go out as numbers, media paths as strings.
func settingValue(setting string) interface{} {
	if n, err := strconv.Atoi(strings.TrimSpace(setting)); err == nil {
		return n
	}
	return setting
}

// ValidateEvents checks every row of every event and returns an
// *IncompleteFormError listing each row that is not complete.
func ValidateEvents(store draft.Store, reg registry.Registry, catalog *rules.Catalog) error {
	log.Debug().Int("events", store.Len()).Msg("Started validating events...")
	var problems []FieldProblem
	for _, ev := range store.Events() {
		for _, section := range rules.SupportedSections {
			for i, row := range ev.Rows(section) {
				resolved := resolver.Resolve(row, section, reg, catalog)
				if resolved.State == resolver.StateComplete {
					continue
				}
				key := draft.RowKey{Event: ev.Label, Section: section, Index: i, Slot: problemSlot(resolved.State)}
				problems = append(problems, FieldProblem{
					Field:  key.String(),
					Row:    &key,
					Reason: problemReason(resolved),
				})
			}
		}
	}
	if len(problems) > 0 {
		return &IncompleteFormError{Page: PageEvents, Problems: problems}
	}
	return nil
}

func problemSlot(state resolver.RowState) draft.Slot {
	switch state {
	case resolver.StateNeedsPredicate:
		return draft.SlotPredicate
	case resolver.StateNeedsValue, resolver.StateInvalidValue:
		return draft.SlotValue
	default:
		return draft.SlotSubject
	}
}

func problemReason(r resolver.ResolvedRow) string {
	switch r.State {
	case resolver.StateEmpty:
		return "row is empty"
	case resolver.StateNeedsSubject:
		return "select a component"
	case resolver.StateNeedsPredicate:
		return "select a check or action for this component"
	case resolver.StateNeedsValue:
		return "enter a value"
	case resolver.StateInvalidValue:
		return r.Problem
	}
	return r.State.String()
}

// SerializeEvents validates the registry and the draft and flattens both into
// the document the backend persists. Nothing is returned when validation
// fails; the caller must not submit.
func SerializeEvents(store draft.Store, reg registry.Registry, catalog *rules.Catalog) (*Document, error) {
	if err := ValidateComponents(reg); err != nil {
		return nil, err
	}
	if err := ValidateEvents(store, reg, catalog); err != nil {
		return nil, err
	}

	doc := &Document{
		Components: SerializeComponents(reg),
		Events:     make([]EventEntry, 0, store.Len()),
	}
	for _, ev := range store.Events() {
		entry := newEventEntry(ev.Label)
		for _, section := range rules.SupportedSections {
			rows := entry.Rows(section)
			for i, row := range ev.Rows(section) {
				resolved := resolver.Resolve(row, section, reg, catalog)
				value, err := wireValue(*resolved.ValueSpec, row.Value)
				if err != nil {
					return nil, fmt.Errorf("row %d of %s in event '%s': %w", i, section, ev.Label, err)
				}
				re := RowEntry{Label: row.Subject, Method: resolved.Method}
				if section.UsesActions() {
					re.Arg = value
				} else {
					re.Value = value
				}
				*rows = append(*rows, re)
			}
		}
		doc.Events = append(doc.Events, entry)
	}

	log.Info().Int("events", len(doc.Events)).Int("componentTypes", len(doc.Components)).Msg("Serialized events")
	return doc, nil
}

// wireValue converts a checked value to what the backend expects: numbers
// for numeric and timer fields, the catalog token for enum options.
func wireValue(spec rules.FieldSpec, value string) (interface{}, error) {
	switch spec.Kind {
	case rules.KindNone:
		return nil, nil
	case rules.KindEnum:
		if err := resolver.CheckValue(spec, value); err != nil {
			return nil, err
		}
		return spec.Token(value), nil
	case rules.KindNumeric:
		return resolver.NumericValue(spec, value)
	case rules.KindTimer:
		return resolver.TimerSeconds(value)
	}
	return nil, fmt.Errorf("unsupported field kind %s", spec.Kind)
}
