package preprocessor

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"rgehrsitz/pilc/internal/registry"
	"rgehrsitz/pilc/internal/rules"
)

// ComponentRow is one row of the Components page as the user typed it. The
// category comes from the section the row sits in.
type ComponentRow struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Setting  string `json:"setting"`
}

// BuildRegistry validates the Components page and turns it into a registry.
// Every row needs a known category, a label and a setting, and labels must be
// unique across the page.
func BuildRegistry(rows []ComponentRow) (registry.Registry, error) {
	log.Debug().Int("rows", len(rows)).Msg("Started validating components...")
	var (
		problems   []FieldProblem
		components []registry.Component
		seen       = make(map[string]int, len(rows))
	)
	for i, row := range rows {
		field := func(name string) string {
			return fmt.Sprintf("component %d %s", i, name)
		}
		category, err := rules.ParseCategory(row.Category)
		if err != nil {
			problems = append(problems, FieldProblem{Field: field("category"), Reason: err.Error()})
		}
		label := strings.TrimSpace(row.Label)
		if label == "" {
			problems = append(problems, FieldProblem{Field: field("label"), Reason: "enter a label"})
		} else if first, dup := seen[label]; dup {
			problems = append(problems, FieldProblem{
				Field:  field("label"),
				Reason: fmt.Sprintf("label '%s' is already used by component %d", label, first),
			})
		} else {
			seen[label] = i
		}
		if strings.TrimSpace(row.Setting) == "" {
			problems = append(problems, FieldProblem{Field: field("setting"), Reason: "enter a setting"})
		}
		components = append(components, registry.Component{Label: label, Category: category, Setting: strings.TrimSpace(row.Setting)})
	}
	if len(problems) > 0 {
		return registry.Registry{}, &IncompleteFormError{Page: PageComponents, Problems: problems}
	}
	return registry.New(components...)
}

// ValidateComponents checks a registry before it is sent. Labels and
// categories are enforced by the registry itself; the setting can still be
// empty after an upsert.
func ValidateComponents(reg registry.Registry) error {
	var problems []FieldProblem
	for i, c := range reg.Components() {
		if strings.TrimSpace(c.Setting) == "" {
			problems = append(problems, FieldProblem{
				Field:  fmt.Sprintf("component %d setting", i),
				Reason: fmt.Sprintf("enter a setting for '%s'", c.Label),
			})
		}
	}
	if len(problems) > 0 {
		return &IncompleteFormError{Page: PageComponents, Problems: problems}
	}
	return nil
}
