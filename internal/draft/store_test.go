package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgehrsitz/pilc/internal/rules"
)

func storeWithEvent(t *testing.T, label string) Store {
	t.Helper()
	var s Store
	s, err := s.AddEvent(label)
	require.NoError(t, err)
	return s
}

func addRows(t *testing.T, s Store, event string, section rules.Section, subjects ...string) Store {
	t.Helper()
	for _, subject := range subjects {
		next, i, err := s.AddRow(event, section)
		require.NoError(t, err)
		next, err = next.SetField(RowKey{Event: event, Section: section, Index: i, Slot: SlotSubject}, subject)
		require.NoError(t, err)
		s = next
	}
	return s
}

func TestAddEvent_HasEverySectionEmpty(t *testing.T) {
	s := storeWithEvent(t, "Morning")

	ev, ok := s.Event("Morning")
	require.True(t, ok)
	for _, section := range rules.SupportedSections {
		rows, present := ev.Sections[section]
		assert.True(t, present, "section %s", section)
		assert.Empty(t, rows)
	}
}

func TestAddEvent_RejectsDuplicateAndEmpty(t *testing.T) {
	s := storeWithEvent(t, "Morning")

	_, err := s.AddEvent("Morning")
	assert.ErrorIs(t, err, ErrDuplicateEvent)

	_, err = s.AddEvent("   ")
	assert.ErrorIs(t, err, ErrEmptyLabel)
}

func TestRemoveEvent_ShiftsAndRejectsStaleIndex(t *testing.T) {
	s := storeWithEvent(t, "a")
	s, _ = s.AddEvent("b")
	s, _ = s.AddEvent("c")

	next, err := s.RemoveEvent(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, next.Labels())
	assert.Equal(t, []string{"a", "b", "c"}, s.Labels(), "receiver must not change")

	_, err = next.RemoveEvent(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = next.RemoveEvent(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestAddRow_Errors(t *testing.T) {
	s := storeWithEvent(t, "Morning")

	_, _, err := s.AddRow("Evening", rules.SectionConditions)
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, _, err = s.AddRow("Morning", rules.Section("Triggers"))
	assert.ErrorIs(t, err, rules.ErrUnknownSection)
}

func TestRemoveRow_ShiftsLaterRows(t *testing.T) {
	s := storeWithEvent(t, "Morning")
	s = addRows(t, s, "Morning", rules.SectionEffects, "r0", "r1", "r2", "r3")

	next, err := s.RemoveRow("Morning", rules.SectionEffects, 1)
	require.NoError(t, err)

	row, err := next.Row(RowKey{Event: "Morning", Section: rules.SectionEffects, Index: 1})
	require.NoError(t, err)
	assert.Equal(t, "r2", row.Subject, "row previously at 2 moves to 1")

	row, err = next.Row(RowKey{Event: "Morning", Section: rules.SectionEffects, Index: 2})
	require.NoError(t, err)
	assert.Equal(t, "r3", row.Subject)

	_, err = next.Row(RowKey{Event: "Morning", Section: rules.SectionEffects, Index: 3})
	assert.ErrorIs(t, err, ErrIndexOutOfRange, "stale index past the end is rejected")

	_, err = next.SetField(RowKey{Event: "Morning", Section: rules.SectionEffects, Index: 3, Slot: SlotValue}, "x")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = next.RemoveRow("Morning", rules.SectionEffects, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSetField_WritesOnlyTheAddressedSlot(t *testing.T) {
	s := storeWithEvent(t, "Morning")
	s = addRows(t, s, "Morning", rules.SectionConditions, "button")

	key := RowKey{Event: "Morning", Section: rules.SectionConditions, Index: 0, Slot: SlotPredicate}
	next, err := s.SetField(key, "Equal To")
	require.NoError(t, err)

	row, err := next.Row(key)
	require.NoError(t, err)
	assert.Equal(t, Row{Subject: "button", Predicate: "Equal To"}, row)

	old, err := s.Row(key)
	require.NoError(t, err)
	assert.Equal(t, Row{Subject: "button"}, old, "receiver must not change")

	key.Slot = Slot(7)
	_, err = next.SetField(key, "x")
	assert.ErrorIs(t, err, ErrUnknownSlot)
}

func TestReferencesAndClearDependents(t *testing.T) {
	s := storeWithEvent(t, "a")
	s, _ = s.AddEvent("b")
	s = addRows(t, s, "a", rules.SectionConditions, "lamp", "button")
	s = addRows(t, s, "b", rules.SectionEffects, "lamp")

	for _, key := range []RowKey{
		{Event: "a", Section: rules.SectionConditions, Index: 0, Slot: SlotPredicate},
		{Event: "b", Section: rules.SectionEffects, Index: 0, Slot: SlotPredicate},
	} {
		var err error
		s, err = s.SetField(key, "Set Value")
		require.NoError(t, err)
		key.Slot = SlotValue
		s, err = s.SetField(key, "High")
		require.NoError(t, err)
	}

	refs := s.References("lamp")
	assert.Equal(t, []RowKey{
		{Event: "a", Section: rules.SectionConditions, Index: 0, Slot: SlotSubject},
		{Event: "b", Section: rules.SectionEffects, Index: 0, Slot: SlotSubject},
	}, refs)

	cleared := s.ClearDependents("lamp")
	row, err := cleared.Row(RowKey{Event: "b", Section: rules.SectionEffects, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, Row{Subject: "lamp"}, row)

	untouched, err := cleared.Row(RowKey{Event: "a", Section: rules.SectionConditions, Index: 1})
	require.NoError(t, err)
	assert.Equal(t, Row{Subject: "button"}, untouched)

	row, err = s.Row(RowKey{Event: "b", Section: rules.SectionEffects, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, "High", row.Value, "receiver must not change")
}

func TestRenameSubject(t *testing.T) {
	s := storeWithEvent(t, "a")
	s = addRows(t, s, "a", rules.SectionActivate, "old", "other")

	renamed := s.RenameSubject("old", "new")

	assert.Empty(t, renamed.References("old"))
	assert.Len(t, renamed.References("new"), 1)
	assert.Len(t, s.References("old"), 1)
}

func TestParseSlot(t *testing.T) {
	slot, err := ParseSlot("Value")
	require.NoError(t, err)
	assert.Equal(t, SlotValue, slot)

	_, err = ParseSlot("colour")
	assert.ErrorIs(t, err, ErrUnknownSlot)
}
