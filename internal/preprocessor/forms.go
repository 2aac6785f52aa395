package preprocessor

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"rgehrsitz/pilc/internal/rules"
)

// Header is the column captions of a form section.
type Header struct {
	Name  string `json:"name"`
	Check string `json:"check,omitempty"`
	Input string `json:"input,omitempty"`
	Value string `json:"value,omitempty"`
}

// InputDescriptor describes one column's default widget.
type InputDescriptor struct {
	Kind       string   `json:"name"`
	Options    []string `json:"options,omitempty"`
	Min        *int     `json:"min,omitempty"`
	Max        *int     `json:"max,omitempty"`
	ValueField string   `json:"valueField,omitempty"`
	TextField  string   `json:"textField,omitempty"`
	Disabled   bool     `json:"disabled,omitempty"`
}

// FormSection is one titled block of rows on a page.
type FormSection struct {
	Name   string            `json:"sectionName"`
	Header Header            `json:"headerRow"`
	Inputs []InputDescriptor `json:"inputdata"`
}

// Category maps a Components page section to its category.
func (s FormSection) Category() (rules.Category, error) {
	return rules.ParseCategory(s.Name)
}

// Section maps an Events page section to its event section.
func (s FormSection) Section() (rules.Section, error) {
	return rules.ParseSection(s.Name)
}

// Form is one sub-form: the ordered sections rendered together.
type Form struct {
	Sections []FormSection `json:"sections"`
}

// ParseForms reads the page descriptors served by GET /components/ and
// GET /events/. The payload is an array of sub-forms, each an array of
// sections; a bare section at the top level is treated as a one-section
// sub-form.
func ParseForms(data []byte) ([]Form, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("form descriptors are not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("form descriptors must be a JSON array")
	}

	var forms []Form
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		var form Form
		switch {
		case value.IsArray():
			value.ForEach(func(_, section gjson.Result) bool {
				var s FormSection
				s, err = parseSection(section)
				if err != nil {
					err = fmt.Errorf("form %d: %w", key.Int(), err)
					return false
				}
				form.Sections = append(form.Sections, s)
				return true
			})
		case value.IsObject():
			var s FormSection
			s, err = parseSection(value)
			if err != nil {
				err = fmt.Errorf("form %d: %w", key.Int(), err)
			}
			form.Sections = append(form.Sections, s)
		default:
			err = fmt.Errorf("form %d: expected an array or object, got %s", key.Int(), value.Type)
		}
		if err != nil {
			return false
		}
		forms = append(forms, form)
		return true
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Int("forms", len(forms)).Msg("Parsed form descriptors")
	return forms, nil
}

func parseSection(section gjson.Result) (FormSection, error) {
	name := section.Get("sectionName")
	if !name.Exists() || name.String() == "" {
		return FormSection{}, fmt.Errorf("missing 'sectionName' in section")
	}
	s := FormSection{
		Name: name.String(),
		Header: Header{
			Name:  section.Get("headerRow.name").String(),
			Check: section.Get("headerRow.check").String(),
			Input: section.Get("headerRow.input").String(),
			Value: section.Get("headerRow.value").String(),
		},
	}
	for _, input := range section.Get("inputdata").Array() {
		d := InputDescriptor{
			Kind:       input.Get("name").String(),
			ValueField: input.Get("valueField").String(),
			TextField:  input.Get("textField").String(),
			Disabled:   input.Get("disabled").Bool(),
		}
		for _, option := range input.Get("options").Array() {
			d.Options = append(d.Options, option.String())
		}
		if lo := input.Get("min"); lo.Exists() {
			v := int(lo.Int())
			d.Min = &v
		}
		if hi := input.Get("max"); hi.Exists() {
			v := int(hi.Int())
			d.Max = &v
		}
		s.Inputs = append(s.Inputs, d)
	}
	return s, nil
}
