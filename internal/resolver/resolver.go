// Package resolver derives, for one draft row, which subjects and predicates
// may be chosen and what shape the value must take.
//
// Resolution is pure and total. A dangling subject or a predicate that no
// longer fits the subject's category is a normal editing state, reported
// through RowState, never an error.
package resolver

import (
	"rgehrsitz/pilc/internal/draft"
	"rgehrsitz/pilc/internal/registry"
	"rgehrsitz/pilc/internal/rules"
)

// RowState summarises what a row still needs.
type RowState int

const (
	// StateEmpty: nothing chosen yet.
	StateEmpty RowState = iota
	// StateNeedsSubject: the subject is unset or names no component.
	StateNeedsSubject
	// StateNeedsPredicate: the predicate is unset or not valid for the
	// subject's category and section; it has to be re-selected.
	StateNeedsPredicate
	// StateNeedsValue: the predicate requires a value that is unset.
	StateNeedsValue
	// StateInvalidValue: the value does not satisfy the value spec.
	StateInvalidValue
	StateComplete
)

var stateNames = [...]string{"empty", "needs-subject", "needs-predicate", "needs-value", "invalid-value", "complete"}

func (s RowState) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

func (s RowState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ResolvedRow is the field metadata of one row. ValueSpec is nil when no
// value input should be shown.
type ResolvedRow struct {
	SubjectOptions   []string         `json:"subjectOptions"`
	PredicateOptions []string         `json:"predicateOptions"`
	ValueSpec        *rules.FieldSpec `json:"valueSpec,omitempty"`
	// Method is the backend identifier of the chosen predicate.
	Method string   `json:"method,omitempty"`
	State  RowState `json:"state"`
	// Problem explains StateInvalidValue.
	Problem string `json:"problem,omitempty"`
}

// Resolve computes the metadata of row within section.
func Resolve(row draft.Row, section rules.Section, reg registry.Registry, catalog *rules.Catalog) ResolvedRow {
	resolved := ResolvedRow{
		SubjectOptions:   reg.Labels(),
		PredicateOptions: []string{},
	}

	category, ok := reg.Resolve(row.Subject)
	if row.Subject == "" || !ok {
		resolved.State = StateNeedsSubject
		if row.IsEmpty() {
			resolved.State = StateEmpty
		}
		return resolved
	}

	entry, err := catalog.Lookup(category)
	if err != nil {
		// Registry categories are always valid; a custom catalog is
		// validated to cover them all.
		resolved.State = StateNeedsSubject
		return resolved
	}
	resolved.PredicateOptions = entry.Names(section)

	rule, ok := entry.Find(section, row.Predicate)
	if row.Predicate == "" || !ok {
		resolved.State = StateNeedsPredicate
		return resolved
	}
	spec := rule.Field
	resolved.ValueSpec = &spec
	resolved.Method = rule.Method

	switch {
	case !spec.Required():
		resolved.State = StateComplete
	case row.Value == "":
		resolved.State = StateNeedsValue
	default:
		if err := CheckValue(spec, row.Value); err != nil {
			resolved.State = StateInvalidValue
			resolved.Problem = err.Error()
		} else {
			resolved.State = StateComplete
		}
	}
	return resolved
}

// ResolvedEvent holds the resolution of every row of an event, per section,
// in row order.
type ResolvedEvent struct {
	Label    string                          `json:"label"`
	Sections map[rules.Section][]ResolvedRow `json:"sections"`
}

// Complete reports whether every row of the event is complete.
func (e ResolvedEvent) Complete() bool {
	for _, rows := range e.Sections {
		for _, r := range rows {
			if r.State != StateComplete {
				return false
			}
		}
	}
	return true
}

// ResolveEvent resolves every row of ev.
func ResolveEvent(ev draft.Event, reg registry.Registry, catalog *rules.Catalog) ResolvedEvent {
	out := ResolvedEvent{
		Label:    ev.Label,
		Sections: make(map[rules.Section][]ResolvedRow, len(rules.SupportedSections)),
	}
	for _, section := range rules.SupportedSections {
		rows := ev.Rows(section)
		resolved := make([]ResolvedRow, 0, len(rows))
		for _, row := range rows {
			resolved = append(resolved, Resolve(row, section, reg, catalog))
		}
		out.Sections[section] = resolved
	}
	return out
}
