package resolver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rgehrsitz/pilc/internal/rules"
)

var ErrInvalidValue = errors.New("invalid value")

// CheckValue reports whether value satisfies spec. An empty value is only
// accepted for KindNone.
func CheckValue(spec rules.FieldSpec, value string) error {
	switch spec.Kind {
	case rules.KindNone:
		return nil
	case rules.KindEnum:
		for _, option := range spec.Options {
			if value == option {
				return nil
			}
		}
		return fmt.Errorf("%w: %q is not one of %s", ErrInvalidValue, value, strings.Join(spec.Options, ", "))
	case rules.KindNumeric:
		_, err := NumericValue(spec, value)
		return err
	case rules.KindTimer:
		_, err := TimerSeconds(value)
		return err
	default:
		return fmt.Errorf("%w: unsupported field kind %s", ErrInvalidValue, spec.Kind)
	}
}

// NumericValue parses an integer value and checks it against the spec's
// bounds.
func NumericValue(spec rules.FieldSpec, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidValue, value)
	}
	if spec.Bounds != nil && !spec.Bounds.Contains(n) {
		return 0, fmt.Errorf("%w: %d is outside %d..%d", ErrInvalidValue, n, spec.Bounds.Min, spec.Bounds.Max)
	}
	return n, nil
}

// MaxTimerSeconds is 99:59:59, the largest reading a timer field shows.
const MaxTimerSeconds = 99*3600 + 59*60 + 59

// TimerSeconds converts a clock reading to seconds. Accepted forms are
// HH:MM:SS, MM:SS and a bare number of seconds, up to MaxTimerSeconds.
func TimerSeconds(value string) (int, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) > 3 || value == "" {
		return 0, fmt.Errorf("%w: %q is not a time (HH:MM:SS)", ErrInvalidValue, value)
	}

	total := 0
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q is not a time (HH:MM:SS)", ErrInvalidValue, value)
		}
		// Minutes and seconds after the leading field wrap at 60.
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("%w: %q has a field of %d", ErrInvalidValue, value, n)
		}
		// total and n stay at or below MaxTimerSeconds, so this cannot overflow.
		if n > MaxTimerSeconds {
			return 0, fmt.Errorf("%w: %q is longer than %s", ErrInvalidValue, value, FormatTimer(MaxTimerSeconds))
		}
		total = total*60 + n
		if total > MaxTimerSeconds {
			return 0, fmt.Errorf("%w: %q is longer than %s", ErrInvalidValue, value, FormatTimer(MaxTimerSeconds))
		}
	}
	return total, nil
}

// FormatTimer renders seconds as HH:MM:SS.
func FormatTimer(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}
