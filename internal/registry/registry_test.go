package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgehrsitz/pilc/internal/rules"
)

func mustRegistry(t *testing.T, components ...Component) Registry {
	t.Helper()
	r, err := New(components...)
	require.NoError(t, err)
	return r
}

func TestUpsert_InsertsAndOverwritesInPlace(t *testing.T) {
	var r Registry
	r, err := r.Upsert("lamp", rules.DigitalOutput, "17")
	require.NoError(t, err)
	r, err = r.Upsert("button", rules.DigitalInput, "4")
	require.NoError(t, err)

	updated, err := r.Upsert("lamp", rules.DigitalOutput, "18")
	require.NoError(t, err)

	assert.Equal(t, []string{"lamp", "button"}, updated.Labels())
	lamp, ok := updated.Get("lamp")
	require.True(t, ok)
	assert.Equal(t, "18", lamp.Setting)

	old, _ := r.Get("lamp")
	assert.Equal(t, "17", old.Setting, "receiver must not change")
}

func TestUpsert_RejectsEmptyLabelAndUnknownCategory(t *testing.T) {
	var r Registry
	_, err := r.Upsert("  ", rules.Timer, "")
	assert.ErrorIs(t, err, ErrEmptyLabel)

	_, err = r.Upsert("relay", rules.Category("Relay"), "")
	assert.ErrorIs(t, err, rules.ErrUnknownCategory)
}

func TestRemove_IsIdempotent(t *testing.T) {
	r := mustRegistry(t, Component{Label: "lamp", Category: rules.DigitalOutput})

	once := r.Remove("lamp")
	twice := once.Remove("lamp")

	assert.Equal(t, 0, once.Len())
	assert.Equal(t, 0, twice.Len())
	assert.Equal(t, 1, r.Len())
}

func TestRemoveAt_ShiftsAndRejectsStaleIndex(t *testing.T) {
	r := mustRegistry(t,
		Component{Label: "a", Category: rules.Timer},
		Component{Label: "b", Category: rules.Timer},
		Component{Label: "c", Category: rules.Timer},
	)

	next, removed, err := r.RemoveAt(0)
	require.NoError(t, err)
	assert.Equal(t, "a", removed.Label)
	assert.Equal(t, []string{"b", "c"}, next.Labels())

	_, _, err = next.RemoveAt(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, _, err = next.RemoveAt(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestResolve(t *testing.T) {
	r := mustRegistry(t, Component{Label: "pot", Category: rules.AnalogInput, Setting: "0"})

	c, ok := r.Resolve("pot")
	assert.True(t, ok)
	assert.Equal(t, rules.AnalogInput, c)

	_, ok = r.Resolve("missing")
	assert.False(t, ok)
}

func TestRename_EnforcesUniqueness(t *testing.T) {
	r := mustRegistry(t,
		Component{Label: "a", Category: rules.Counter},
		Component{Label: "b", Category: rules.Counter},
	)

	_, err := r.Rename("a", "b")
	assert.ErrorIs(t, err, ErrDuplicateLabel)

	_, err = r.Rename("missing", "z")
	assert.ErrorIs(t, err, ErrUnknownLabel)

	renamed, err := r.Rename("a", "z")
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "b"}, renamed.Labels())
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New(
		Component{Label: "a", Category: rules.Counter},
		Component{Label: "a", Category: rules.Timer},
	)
	assert.ErrorIs(t, err, ErrDuplicateLabel)
}

func TestGrouped_FollowsCategoryOrder(t *testing.T) {
	r := mustRegistry(t,
		Component{Label: "song", Category: rules.AudioPlayer},
		Component{Label: "lamp", Category: rules.DigitalOutput},
		Component{Label: "fan", Category: rules.DigitalOutput},
	)

	groups := r.Grouped()
	require.Len(t, groups, 2)
	assert.Equal(t, rules.DigitalOutput, groups[0].Category)
	assert.Equal(t, "lamp", groups[0].Components[0].Label)
	assert.Equal(t, "fan", groups[0].Components[1].Label)
	assert.Equal(t, rules.AudioPlayer, groups[1].Category)
}
