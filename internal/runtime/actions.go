// runtime/actions.go

package runtime

import (
	"fmt"

	"rgehrsitz/pilc/internal/draft"
	"rgehrsitz/pilc/internal/preprocessor"
	"rgehrsitz/pilc/internal/rules"
)

// Opcode identifies the state transition an Action performs.
type Opcode byte

const (
	// Event page
	ADD_EVENT Opcode = iota
	REMOVE_EVENT
	ADD_ROW
	REMOVE_ROW
	SET_FIELD

	// Components page
	UPSERT_COMPONENT
	REMOVE_COMPONENT
	REMOVE_COMPONENT_AT
	RENAME_COMPONENT
	SET_COMPONENTS

	// Whole-state
	LOAD_DEFINITIONS
	CLEAR_MESSAGES
)

func (op Opcode) String() string {
	switch op {
	case ADD_EVENT:
		return "ADD_EVENT"
	case REMOVE_EVENT:
		return "REMOVE_EVENT"
	case ADD_ROW:
		return "ADD_ROW"
	case REMOVE_ROW:
		return "REMOVE_ROW"
	case SET_FIELD:
		return "SET_FIELD"
	case UPSERT_COMPONENT:
		return "UPSERT_COMPONENT"
	case REMOVE_COMPONENT:
		return "REMOVE_COMPONENT"
	case REMOVE_COMPONENT_AT:
		return "REMOVE_COMPONENT_AT"
	case RENAME_COMPONENT:
		return "RENAME_COMPONENT"
	case SET_COMPONENTS:
		return "SET_COMPONENTS"
	case LOAD_DEFINITIONS:
		return "LOAD_DEFINITIONS"
	case CLEAR_MESSAGES:
		return "CLEAR_MESSAGES"
	default:
		return fmt.Sprintf("UNKNOWN_OPCODE(%d)", byte(op))
	}
}

// Action is one user edit. Only the fields its Opcode reads are set; use the
// constructors below.
type Action struct {
	Op          Opcode
	Event       string
	Section     rules.Section
	Index       int
	Key         draft.RowKey
	Value       string
	Label       string
	NewLabel    string
	Category    rules.Category
	Components  []preprocessor.ComponentRow
	Definitions *preprocessor.Definitions
}

func AddEvent(label string) Action {
	return Action{Op: ADD_EVENT, Event: label}
}

func RemoveEvent(index int) Action {
	return Action{Op: REMOVE_EVENT, Index: index}
}

func AddRow(event string, section rules.Section) Action {
	return Action{Op: ADD_ROW, Event: event, Section: section}
}

func RemoveRow(event string, section rules.Section, index int) Action {
	return Action{Op: REMOVE_ROW, Event: event, Section: section, Index: index}
}

func SetField(key draft.RowKey, value string) Action {
	return Action{Op: SET_FIELD, Key: key, Value: value}
}

func UpsertComponent(label string, category rules.Category, setting string) Action {
	return Action{Op: UPSERT_COMPONENT, Label: label, Category: category, Value: setting}
}

func RemoveComponent(label string) Action {
	return Action{Op: REMOVE_COMPONENT, Label: label}
}

func RemoveComponentAt(index int) Action {
	return Action{Op: REMOVE_COMPONENT_AT, Index: index}
}

func RenameComponent(oldLabel, newLabel string) Action {
	return Action{Op: RENAME_COMPONENT, Label: oldLabel, NewLabel: newLabel}
}

// SetComponents replaces the registry with the Components page as typed.
func SetComponents(rows []preprocessor.ComponentRow) Action {
	return Action{Op: SET_COMPONENTS, Components: rows}
}

// LoadDefinitions replaces registry and draft, e.g. with what the backend
// currently stores.
func LoadDefinitions(defs *preprocessor.Definitions) Action {
	return Action{Op: LOAD_DEFINITIONS, Definitions: defs}
}

func ClearMessages() Action {
	return Action{Op: CLEAR_MESSAGES}
}
