package plan

import "goalplan/internal/model"

// Selector is a group's long-term-goal option list plus the active choice.
// Selected indexes into Options; -1 means no active selection (the user must
// re-pick).
type Selector struct {
	Options  []string
	Selected int
}

// Populate clears and rebuilds the option list for the given category. If
// desired exactly matches one of the new options it becomes the active
// selection; otherwise the selector ends up with no selection. Deliberately
// no auto-correction to a default: losing a selection on category switch is
// observable behavior.
func (s *Selector) Populate(c model.Category, desired string) {
	s.Options = model.OptionsFor(c)
	s.Selected = -1
	for i, opt := range s.Options {
		if opt == desired {
			s.Selected = i
			break
		}
	}
}

// Value returns the active selection's label, or "" when nothing is selected.
func (s *Selector) Value() string {
	if s.Selected < 0 || s.Selected >= len(s.Options) {
		return ""
	}
	return s.Options[s.Selected]
}

// Select moves the active selection to option i (clamped no-op when out of
// range).
func (s *Selector) Select(i int) {
	if i < 0 || i >= len(s.Options) {
		return
	}
	s.Selected = i
}

// Entry is one free-text short-term goal row. Entries are identified by
// pointer, not position, so removal stays unambiguous while rows move.
type Entry struct {
	Text string
}

// Group is one long-term goal and its ordered short-term entries. Index is
// unique among live groups and strictly exceeds all earlier live indices at
// assignment time; downstream consumers key off the index value, not the
// position, so gaps after removals are fine.
type Group struct {
	Index      int
	Selector   Selector
	ShortTerms []*Entry
}
