package draft

import (
	"fmt"
	"strings"

	"rgehrsitz/pilc/internal/rules"
)

// Slot names one of a row's three fields.
type Slot int

const (
	SlotSubject Slot = iota
	SlotPredicate
	SlotValue
)

var slotNames = [...]string{"subject", "predicate", "value"}

func (s Slot) String() string {
	if s >= 0 && int(s) < len(slotNames) {
		return slotNames[s]
	}
	return fmt.Sprintf("Slot(%d)", int(s))
}

func (s Slot) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(slotNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSlot, int(s))
	}
	return []byte(slotNames[s]), nil
}

func (s *Slot) UnmarshalText(text []byte) error {
	parsed, err := ParseSlot(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseSlot(s string) (Slot, error) {
	for i, name := range slotNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Slot(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSlot, s)
}

// Row is one condition or action line. An empty string means the slot is
// unset.
type Row struct {
	Subject   string `json:"subject,omitempty"`
	Predicate string `json:"predicate,omitempty"`
	Value     string `json:"value,omitempty"`
}

func (r Row) Get(slot Slot) string {
	switch slot {
	case SlotSubject:
		return r.Subject
	case SlotPredicate:
		return r.Predicate
	default:
		return r.Value
	}
}

func (r Row) IsEmpty() bool {
	return r.Subject == "" && r.Predicate == "" && r.Value == ""
}

func (r Row) with(slot Slot, value string) (Row, error) {
	switch slot {
	case SlotSubject:
		r.Subject = value
	case SlotPredicate:
		r.Predicate = value
	case SlotValue:
		r.Value = value
	default:
		return r, fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
	}
	return r, nil
}

// RowKey addresses a single field of a row. Index is positional; it goes
// stale as soon as an earlier row of the same section is removed.
type RowKey struct {
	Event   string        `json:"event"`
	Section rules.Section `json:"section"`
	Index   int           `json:"index"`
	Slot    Slot          `json:"slot"`
}

func (k RowKey) String() string {
	return fmt.Sprintf("%s[%d].%s of event '%s'", k.Section, k.Index, k.Slot, k.Event)
}
