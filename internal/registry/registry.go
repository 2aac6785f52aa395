// Package registry holds the user-defined components an event can refer to.
//
// A Registry is an immutable value: every mutation returns a new Registry and
// leaves the receiver untouched, so a snapshot handed to a renderer never
// changes underneath it. Labels are unique; they are the join key between
// components and event rows.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"rgehrsitz/pilc/internal/rules"
)

var (
	ErrEmptyLabel      = errors.New("component label cannot be empty")
	ErrDuplicateLabel  = errors.New("component label already in use")
	ErrUnknownLabel    = errors.New("unknown component label")
	ErrIndexOutOfRange = errors.New("component index out of range")
)

// Component is one user-named hardware instance.
type Component struct {
	Label    string         `json:"label"`
	Category rules.Category `json:"category"`
	// Setting is the hardware parameter: GPIO pin, ADC channel, initial
	// timer/counter value or media path.
	Setting string `json:"setting,omitempty"`
}

// Registry is an ordered set of components keyed by label. The zero value is
// an empty registry.
type Registry struct {
	components []Component
}

// New builds a registry from components, rejecting empty or duplicate labels.
func New(components ...Component) (Registry, error) {
	var r Registry
	seen := make(map[string]bool, len(components))
	for i, c := range components {
		c.Label = strings.TrimSpace(c.Label)
		if c.Label == "" {
			return Registry{}, fmt.Errorf("component %d: %w", i, ErrEmptyLabel)
		}
		if seen[c.Label] {
			return Registry{}, fmt.Errorf("component %d: %w: %q", i, ErrDuplicateLabel, c.Label)
		}
		if !c.Category.Valid() {
			return Registry{}, fmt.Errorf("component %d: %w: %q", i, rules.ErrUnknownCategory, c.Category)
		}
		seen[c.Label] = true
		r.components = append(r.components, c)
	}
	return r, nil
}

func (r Registry) indexOf(label string) int {
	for i, c := range r.components {
		if c.Label == label {
			return i
		}
	}
	return -1
}

func (r Registry) clone() []Component {
	out := make([]Component, len(r.components))
	copy(out, r.components)
	return out
}

// Upsert inserts a component or overwrites the one with the same label,
// keeping its position.
func (r Registry) Upsert(label string, category rules.Category, setting string) (Registry, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return r, ErrEmptyLabel
	}
	if !category.Valid() {
		return r, fmt.Errorf("%w: %q", rules.ErrUnknownCategory, category)
	}
	components := r.clone()
	c := Component{Label: label, Category: category, Setting: setting}
	if i := r.indexOf(label); i >= 0 {
		components[i] = c
	} else {
		components = append(components, c)
	}
	return Registry{components: components}, nil
}

// Remove deletes the component with label. Removing an absent label is not
// an error.
func (r Registry) Remove(label string) Registry {
	i := r.indexOf(label)
	if i < 0 {
		return r
	}
	components := r.clone()
	return Registry{components: append(components[:i], components[i+1:]...)}
}

// RemoveAt deletes the component at a position. Positions shift on delete;
// an index must not be reused across mutations.
func (r Registry) RemoveAt(index int) (Registry, Component, error) {
	if index < 0 || index >= len(r.components) {
		return r, Component{}, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(r.components))
	}
	removed := r.components[index]
	components := r.clone()
	return Registry{components: append(components[:index], components[index+1:]...)}, removed, nil
}

// Rename changes a component's label. The new label must not be in use by
// another component.
func (r Registry) Rename(oldLabel, newLabel string) (Registry, error) {
	newLabel = strings.TrimSpace(newLabel)
	if newLabel == "" {
		return r, ErrEmptyLabel
	}
	i := r.indexOf(oldLabel)
	if i < 0 {
		return r, fmt.Errorf("%w: %q", ErrUnknownLabel, oldLabel)
	}
	if oldLabel == newLabel {
		return r, nil
	}
	if r.indexOf(newLabel) >= 0 {
		return r, fmt.Errorf("%w: %q", ErrDuplicateLabel, newLabel)
	}
	components := r.clone()
	components[i].Label = newLabel
	return Registry{components: components}, nil
}

// Resolve returns the category of label.
func (r Registry) Resolve(label string) (rules.Category, bool) {
	if i := r.indexOf(label); i >= 0 {
		return r.components[i].Category, true
	}
	return "", false
}

func (r Registry) Get(label string) (Component, bool) {
	if i := r.indexOf(label); i >= 0 {
		return r.components[i], true
	}
	return Component{}, false
}

func (r Registry) Len() int {
	return len(r.components)
}

// Labels returns every label in registry order.
func (r Registry) Labels() []string {
	labels := make([]string, 0, len(r.components))
	for _, c := range r.components {
		labels = append(labels, c.Label)
	}
	return labels
}

// Components returns a copy of the registry's contents.
func (r Registry) Components() []Component {
	return r.clone()
}

// Group is the components of one category.
type Group struct {
	Category   rules.Category
	Components []Component
}

// Grouped splits the registry by category in the fixed category order,
// skipping empty categories. Order within a group is registry order.
func (r Registry) Grouped() []Group {
	var groups []Group
	for _, category := range rules.SupportedCategories {
		var members []Component
		for _, c := range r.components {
			if c.Category == category {
				members = append(members, c)
			}
		}
		if len(members) > 0 {
			groups = append(groups, Group{Category: category, Components: members})
		}
	}
	return groups
}
