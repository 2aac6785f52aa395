// internal/rules/rule.go

package rules

import (
	"fmt"
	"strings"
)

// FieldKind selects the input widget for a row's value slot.
type FieldKind int

const (
	KindNone FieldKind = iota
	KindEnum
	KindNumeric
	KindTimer
)

var kindNames = [...]string{
	KindNone:    "none",
	KindEnum:    "enum",
	KindNumeric: "numeric",
	KindTimer:   "timer",
}

// Older catalogs name kinds after the form widget.
var kindAliases = map[string]FieldKind{
	"n/a":    KindNone,
	"select": KindEnum,
	"number": KindNumeric,
}

func (k FieldKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

func (k FieldKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("invalid field kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *FieldKind) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range kindNames {
		if n == name {
			*k = FieldKind(i)
			return nil
		}
	}
	if alias, ok := kindAliases[name]; ok {
		*k = alias
		return nil
	}
	return fmt.Errorf("unsupported field kind %q", string(text))
}

// Bounds is an inclusive integer range.
type Bounds struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

func (b Bounds) Contains(n int) bool {
	return n >= b.Min && n <= b.Max
}

// FieldSpec describes one dynamically typed input. Options is only set for
// KindEnum; Bounds only for KindNumeric, and a nil Bounds means unbounded.
type FieldSpec struct {
	Kind    FieldKind `json:"kind" yaml:"kind"`
	Options []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Bounds  *Bounds   `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	// Tokens overrides the backend spelling of individual enum options.
	Tokens map[string]string `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// Required reports whether a row using this spec needs a value.
func (f FieldSpec) Required() bool {
	return f.Kind != KindNone
}

// Token is the backend spelling of an enum option.
func (f FieldSpec) Token(option string) string {
	if token, ok := f.Tokens[option]; ok {
		return token
	}
	return DefaultToken(option)
}

// OptionForToken maps a backend value back to the option it stands for.
// The option itself and its default token are accepted too.
func (f FieldSpec) OptionForToken(token string) (string, bool) {
	for _, option := range f.Options {
		if token == option || token == f.Token(option) || token == DefaultToken(option) {
			return option, true
		}
	}
	return "", false
}

// DefaultToken turns an option label such as "Held Down" into "HELD_DOWN".
func DefaultToken(option string) string {
	return strings.ToUpper(strings.Join(strings.Fields(option), "_"))
}

// Rule is one named check or action of a category.
type Rule struct {
	Name   string    `json:"name" yaml:"name"`
	Method string    `json:"method" yaml:"method"` // backend method identifier
	Field  FieldSpec `json:"field" yaml:",inline"`
}

// Entry is the vocabulary of one category. Checks serve the Conditions,
// Activate and Deactivate sections; Actions serve Effects. Order matters:
// it is the option order shown to the user.
type Entry struct {
	Category Category `json:"category" yaml:"category"`
	Checks   []Rule   `json:"checks" yaml:"checks"`
	Actions  []Rule   `json:"actions" yaml:"actions"`
}

// Rules returns the checks or actions that apply to section.
func (e *Entry) Rules(section Section) []Rule {
	if section.UsesActions() {
		return e.Actions
	}
	return e.Checks
}

// Names returns the ordered rule names for section.
func (e *Entry) Names(section Section) []string {
	rules := e.Rules(section)
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name)
	}
	return names
}

// Find looks up a rule by name within section.
func (e *Entry) Find(section Section, name string) (Rule, bool) {
	for _, r := range e.Rules(section) {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}
