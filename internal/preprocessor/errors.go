package preprocessor

import (
	"fmt"

	"rgehrsitz/pilc/internal/draft"
)

// Pages a form error can belong to.
const (
	PageComponents = "components"
	PageEvents     = "events"
)

const incompleteFormMessage = "Please fill out all the fields."

// FieldProblem is one field that blocks submission.
type FieldProblem struct {
	// Field is a readable location, e.g. "Effects[0].value of event 'Night'".
	Field string `json:"field"`
	// Row is set for event rows.
	Row    *draft.RowKey `json:"row,omitempty"`
	Reason string        `json:"reason"`
}

// IncompleteFormError blocks submission of a page until every listed field
// is filled in or re-selected.
type IncompleteFormError struct {
	Page     string         `json:"page"`
	Problems []FieldProblem `json:"problems"`
}

func (e *IncompleteFormError) Error() string {
	if len(e.Problems) == 0 {
		return fmt.Sprintf("%s form is incomplete", e.Page)
	}
	first := e.Problems[0]
	return fmt.Sprintf("%s form is incomplete: %d field(s) need attention, first %s: %s",
		e.Page, len(e.Problems), first.Field, first.Reason)
}

// Message is the text shown inline on the page.
func (e *IncompleteFormError) Message() string {
	return incompleteFormMessage
}
