package preprocessor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"rgehrsitz/pilc/internal/draft"
	"rgehrsitz/pilc/internal/registry"
	"rgehrsitz/pilc/internal/resolver"
	"rgehrsitz/pilc/internal/rules"
)

// Definitions is an editing session restored from a backend document.
type Definitions struct {
	Registry registry.Registry
	Draft    draft.Store
}

// ParseDefinitions reads a {COMPONENTS, EVENTS} document back into a registry
// and a draft. Parsing is lenient about row contents: methods and values that
// do not match the catalog are kept as typed so ValidateDefinitions can point
// at them. Structural problems (bad JSON, unknown component types, duplicate
// labels) are errors.
func ParseDefinitions(data []byte, catalog *rules.Catalog) (*Definitions, error) {
	log.Info().Msg("Started parsing definitions...")
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("failed to parse definitions: invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("failed to parse definitions: expected a JSON object")
	}

	reg, err := parseComponents(doc.Get("COMPONENTS"))
	if err != nil {
		return nil, err
	}
	store, err := parseEvents(doc.Get("EVENTS"), reg, catalog)
	if err != nil {
		return nil, err
	}

	log.Info().Int("components", reg.Len()).Int("events", store.Len()).Msg("Parsed definitions")
	return &Definitions{Registry: reg, Draft: store}, nil
}

// ValidateDefinitions applies the submission checks to parsed definitions.
func ValidateDefinitions(defs *Definitions, catalog *rules.Catalog) error {
	log.Info().Msg("Started validating definitions...")
	if err := ValidateComponents(defs.Registry); err != nil {
		return err
	}
	return ValidateEvents(defs.Draft, defs.Registry, catalog)
}

func parseComponents(section gjson.Result) (registry.Registry, error) {
	if !section.Exists() {
		return registry.Registry{}, nil
	}
	if !section.IsObject() {
		return registry.Registry{}, fmt.Errorf("'COMPONENTS' must be an object")
	}

	var components []registry.Component
	var err error
	section.ForEach(func(key, entries gjson.Result) bool {
		var category rules.Category
		category, err = rules.ParseCategory(key.String())
		if err != nil {
			err = fmt.Errorf("invalid component type in 'COMPONENTS': %w", err)
			return false
		}
		for i, entry := range entries.Array() {
			label := entry.Get("LABEL")
			if !label.Exists() {
				err = fmt.Errorf("missing 'LABEL' in component %d of '%s'", i, key.String())
				return false
			}
			components = append(components, registry.Component{
				Label:    label.String(),
				Category: category,
				Setting:  entry.Get("VALUE").String(),
			})
		}
		return true
	})
	if err != nil {
		return registry.Registry{}, err
	}
	reg, err := registry.New(components...)
	if err != nil {
		return registry.Registry{}, fmt.Errorf("invalid 'COMPONENTS': %w", err)
	}
	return reg, nil
}

func parseEvents(section gjson.Result, reg registry.Registry, catalog *rules.Catalog) (draft.Store, error) {
	var store draft.Store
	if !section.Exists() {
		return store, nil
	}
	if !section.IsArray() {
		return store, fmt.Errorf("'EVENTS' must be an array")
	}

	for i, ev := range section.Array() {
		label := strings.TrimSpace(ev.Get("LABEL").String())
		next, err := store.AddEvent(label)
		if err != nil {
			return store, fmt.Errorf("event %d: %w", i, err)
		}
		store = next

		for _, sec := range rules.SupportedSections {
			rows := ev.Get(sec.WireKey())
			if !rows.Exists() {
				rows = ev.Get(string(sec))
			}
			for j, r := range rows.Array() {
				row := parseRow(r, sec, reg, catalog)
				var index int
				store, index, err = store.AddRow(label, sec)
				if err != nil {
					return store, fmt.Errorf("row %d of %s in event '%s': %w", j, sec, label, err)
				}
				for slot, value := range map[draft.Slot]string{
					draft.SlotSubject:   row.Subject,
					draft.SlotPredicate: row.Predicate,
					draft.SlotValue:     row.Value,
				} {
					key := draft.RowKey{Event: label, Section: sec, Index: index, Slot: slot}
					if store, err = store.SetField(key, value); err != nil {
						return store, err
					}
				}
			}
		}
	}
	return store, nil
}

// parseRow maps a backend row back to what the user would have picked: the
// method identifier back to the rule name, wire values back to display form.
func parseRow(r gjson.Result, section rules.Section, reg registry.Registry, catalog *rules.Catalog) draft.Row {
	row := draft.Row{
		Subject:   r.Get("LABEL").String(),
		Predicate: r.Get("METHOD").String(),
	}
	raw := r.Get("VALUE")
	if section.UsesActions() || !raw.Exists() {
		if arg := r.Get("ARG"); arg.Exists() {
			raw = arg
		}
	}
	row.Value = raw.String()

	category, ok := reg.Resolve(row.Subject)
	if !ok {
		return row
	}
	entry, err := catalog.Lookup(category)
	if err != nil {
		return row
	}
	for _, rule := range entry.Rules(section) {
		if rule.Method != row.Predicate && rule.Name != row.Predicate {
			continue
		}
		row.Predicate = rule.Name
		row.Value = displayValue(rule.Field, raw)
		break
	}
	return row
}

func displayValue(spec rules.FieldSpec, raw gjson.Result) string {
	if !raw.Exists() {
		return ""
	}
	switch spec.Kind {
	case rules.KindNone:
		return ""
	case rules.KindEnum:
		if option, ok := spec.OptionForToken(raw.String()); ok {
			return option
		}
	case rules.KindNumeric:
		if raw.Type == gjson.Number {
			return strconv.FormatInt(raw.Int(), 10)
		}
	case rules.KindTimer:
		if raw.Type == gjson.Number {
			return resolver.FormatTimer(int(raw.Int()))
		}
	}
	return raw.String()
}
