package plan

import (
	"strings"

	"goalplan/internal/model"
)

// Seed describes one previously saved group used to initialize the editor.
type Seed struct {
	Index      int
	LongTerm   string
	ShortTerms []string
}

// Editor owns the ordered collection of live goal groups and the category
// source. Invariants maintained across every operation:
//
//   - at least one group is always live; removing the last group is a no-op
//   - every group holds at least one short-term entry; removing a group's
//     sole entry clears its text instead of deleting the row
//   - group indices are unique among live groups; a new index is max live
//     index + 1, so every new index strictly exceeds all still-live ones and
//     sequences may have gaps after removals (no dense renumbering)
//
// All mutations happen synchronously in the caller's event handler, so there
// is no locking here.
type Editor struct {
	Source CategorySource
	Groups []*Group
}

// NewEditor builds the editor from server-supplied seeds and the initial
// category. Seeded groups keep their saved indices and long-term labels; a
// saved label that is not in the current category's list yields no active
// selection. With no seeds the editor starts with one default group.
func NewEditor(seeds []Seed, initial model.Category) *Editor {
	e := &Editor{Source: CategorySource{Initial: string(initial)}}
	c := e.Category()
	for _, sd := range seeds {
		g := &Group{Index: sd.Index}
		g.Selector.Populate(c, sd.LongTerm)
		for _, st := range sd.ShortTerms {
			g.ShortTerms = append(g.ShortTerms, &Entry{Text: st})
		}
		if len(g.ShortTerms) == 0 {
			g.ShortTerms = []*Entry{{}}
		}
		e.Groups = append(e.Groups, g)
	}
	if len(e.Groups) == 0 {
		e.AddGroup()
	}
	return e
}

// Category re-resolves the active category from the source.
func (e *Editor) Category() model.Category {
	return e.Source.Resolve()
}

func (e *Editor) nextIndex() int {
	next := 0
	for _, g := range e.Groups {
		if g.Index >= next {
			next = g.Index + 1
		}
	}
	return next
}

// AddGroup appends a new group with one blank short-term entry and the
// current category's default long-term goal preselected, and returns it so
// the view can move focus to its selector.
func (e *Editor) AddGroup() *Group {
	c := e.Category()
	g := &Group{
		Index:      e.nextIndex(),
		ShortTerms: []*Entry{{}},
	}
	g.Selector.Populate(c, model.DefaultGoal(c))
	e.Groups = append(e.Groups, g)
	return g
}

// RemoveGroup removes g and everything it holds. The last remaining group
// can never be removed; that case reports false and changes nothing.
func (e *Editor) RemoveGroup(g *Group) bool {
	if len(e.Groups) <= 1 {
		return false
	}
	for i, x := range e.Groups {
		if x == g {
			e.Groups = append(e.Groups[:i], e.Groups[i+1:]...)
			return true
		}
	}
	return false
}

// AddShortTerm appends a blank entry to g and returns it for focusing.
func (e *Editor) AddShortTerm(g *Group) *Entry {
	en := &Entry{}
	g.ShortTerms = append(g.ShortTerms, en)
	return en
}

// RemoveShortTerm deletes en from g. Deleting the sole remaining entry is
// refused: the entry's text is cleared instead and the call reports false.
func (e *Editor) RemoveShortTerm(g *Group, en *Entry) bool {
	if len(g.ShortTerms) == 1 {
		if g.ShortTerms[0] == en {
			g.ShortTerms[0].Text = ""
		}
		return false
	}
	for i, x := range g.ShortTerms {
		if x == en {
			g.ShortTerms = append(g.ShortTerms[:i], g.ShortTerms[i+1:]...)
			return true
		}
	}
	return false
}

// RefreshAllGroups repopulates every group's selector against the current
// category, using each group's current selection (not its seed value) as the
// desired label. A selection survives the refresh only when that exact label
// exists in the new list. Selectors keep their identity; only option data is
// replaced, so views must not re-bind handlers here.
func (e *Editor) RefreshAllGroups() {
	c := e.Category()
	for _, g := range e.Groups {
		g.Selector.Populate(c, g.Selector.Value())
	}
}

// SetCategory records the new category in the source (hidden store and
// visible control together) and refreshes all selectors.
func (e *Editor) SetCategory(c model.Category) {
	e.Source.Set(c)
	e.RefreshAllGroups()
}

// Payload converts the live groups into storage form, mirroring the original
// form submission rules: groups whose selector has no active selection are
// skipped, blank short-term rows are dropped, and Ord is assigned 1-based in
// visual order. An empty result means nothing savable.
func (e *Editor) Payload() []model.GoalGroup {
	var out []model.GoalGroup
	for _, g := range e.Groups {
		lt := strings.TrimSpace(g.Selector.Value())
		if lt == "" {
			continue
		}
		gg := model.GoalGroup{Index: g.Index, LongTerm: lt, Ord: len(out) + 1}
		for _, en := range g.ShortTerms {
			if st := strings.TrimSpace(en.Text); st != "" {
				gg.ShortTerms = append(gg.ShortTerms, st)
			}
		}
		out = append(out, gg)
	}
	return out
}
