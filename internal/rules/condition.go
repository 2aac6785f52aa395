// internal/rules/condition.go

package rules

import (
	"fmt"
	"strings"
)

// Category is the hardware kind a component belongs to.
type Category string

const (
	DigitalOutput Category = "DigitalOutput"
	DigitalInput  Category = "DigitalInput"
	AnalogInput   Category = "AnalogInput"
	Timer         Category = "Timer"
	Counter       Category = "Counter"
	VideoPlayer   Category = "VideoPlayer"
	AudioPlayer   Category = "AudioPlayer"
)

var SupportedCategories = []Category{
	DigitalOutput,
	DigitalInput,
	AnalogInput,
	Timer,
	Counter,
	VideoPlayer,
	AudioPlayer,
}

var categoryNames = map[Category]struct {
	display string
	wire    string
}{
	DigitalOutput: {"Digital Outputs", "DIGITAL_OUTPUT"},
	DigitalInput:  {"Digital Inputs", "DIGITAL_INPUT"},
	AnalogInput:   {"Analog Inputs", "ANALOG_INPUT"},
	Timer:         {"Timers", "TIMER"},
	Counter:       {"Counters", "COUNTER"},
	VideoPlayer:   {"Video Player", "SIMPLE_VIDEO_PLAYER"},
	AudioPlayer:   {"Audio Player", "SIMPLE_AUDIO_PLAYER"},
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// DisplayName is the heading used on the Components page.
func (c Category) DisplayName() string {
	return categoryNames[c].display
}

// WireType is the component type key the controller backend expects.
func (c Category) WireType() string {
	return categoryNames[c].wire
}

// ParseCategory accepts the tag, the display name or the wire type.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range SupportedCategories {
		names := categoryNames[c]
		if s == string(c) || strings.EqualFold(s, names.display) || strings.EqualFold(s, names.wire) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Section names one of the four row groups of an event.
type Section string

const (
	SectionConditions Section = "Conditions"
	SectionEffects    Section = "Effects"
	SectionActivate   Section = "Activate"
	SectionDeactivate Section = "Deactivate"
)

var SupportedSections = []Section{
	SectionConditions,
	SectionEffects,
	SectionActivate,
	SectionDeactivate,
}

// UsesActions reports whether rows in s pick from a category's actions
// rather than its checks.
func (s Section) UsesActions() bool {
	return s == SectionEffects
}

// WireKey is the key of the section inside a serialized event.
func (s Section) WireKey() string {
	return strings.ToUpper(string(s))
}

func (s Section) Valid() bool {
	for _, supported := range SupportedSections {
		if s == supported {
			return true
		}
	}
	return false
}

// ParseSection matches a section by name, case-insensitively.
func ParseSection(s string) (Section, error) {
	for _, supported := range SupportedSections {
		if strings.EqualFold(strings.TrimSpace(s), string(supported)) {
			return supported, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
}
