package draft

import "rgehrsitz/pilc/internal/rules"

// References lists every row whose subject is componentLabel, in event then
// section then row order. Keys carry SlotSubject.
func (s Store) References(componentLabel string) []RowKey {
	var keys []RowKey
	for _, ev := range s.events {
		for _, section := range rules.SupportedSections {
			for i, row := range ev.Sections[section] {
				if row.Subject == componentLabel {
					keys = append(keys, RowKey{Event: ev.Label, Section: section, Index: i, Slot: SlotSubject})
				}
			}
		}
	}
	return keys
}

// ClearDependents resets predicate and value of every row whose subject is
// componentLabel. Used when a component's category changes and the old
// predicates no longer apply.
func (s Store) ClearDependents(componentLabel string) Store {
	return s.rewriteRows(func(row Row) (Row, bool) {
		if row.Subject != componentLabel || (row.Predicate == "" && row.Value == "") {
			return row, false
		}
		row.Predicate, row.Value = "", ""
		return row, true
	})
}

// RenameSubject points rows that reference oldLabel at newLabel.
func (s Store) RenameSubject(oldLabel, newLabel string) Store {
	return s.rewriteRows(func(row Row) (Row, bool) {
		if row.Subject != oldLabel {
			return row, false
		}
		row.Subject = newLabel
		return row, true
	})
}

// rewriteRows applies fn to every row and copies only the events it changed.
func (s Store) rewriteRows(fn func(Row) (Row, bool)) Store {
	out := s
	for i, ev := range s.events {
		var updated *Event
		for _, section := range rules.SupportedSections {
			for j, row := range ev.Sections[section] {
				next, changed := fn(row)
				if !changed {
					continue
				}
				if updated == nil {
					cp := ev.clone()
					updated = &cp
				}
				updated.Sections[section][j] = next
			}
		}
		if updated != nil {
			out = out.replace(i, *updated)
		}
	}
	return out
}
