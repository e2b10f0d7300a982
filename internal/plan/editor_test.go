package plan

import (
	"testing"

	"goalplan/internal/model"
)

func TestResolveCategory_Precedence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  CategorySource
		want model.Category
	}{
		{"hidden wins", CategorySource{Hidden: "生活", Control: "定向", Initial: "定向"}, model.CategoryDailyLiving},
		{"control when hidden empty", CategorySource{Control: "生活", Initial: "定向"}, model.CategoryDailyLiving},
		{"initial when others empty", CategorySource{Initial: "生活"}, model.CategoryDailyLiving},
		{"default orientation", CategorySource{}, model.CategoryOrientation},
		{"unknown coerced to orientation", CategorySource{Hidden: "nonsense"}, model.CategoryOrientation},
		{"whitespace is empty", CategorySource{Hidden: "  ", Control: "生活"}, model.CategoryDailyLiving},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.src.Resolve(); got != tc.want {
				t.Fatalf("Resolve() = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestSelector_PopulateMatchesCatalogExactly(t *testing.T) {
	t.Parallel()

	for _, c := range []model.Category{model.CategoryOrientation, model.CategoryDailyLiving} {
		opts := model.OptionsFor(c)
		for _, desired := range append([]string{"", "不存在的目標"}, opts...) {
			var s Selector
			s.Populate(c, desired)
			if len(s.Options) != len(opts) {
				t.Fatalf("cat %q: got %d options; want %d", c, len(s.Options), len(opts))
			}
			for i := range opts {
				if s.Options[i] != opts[i] {
					t.Fatalf("cat %q: option %d = %q; want %q", c, i, s.Options[i], opts[i])
				}
			}
			inList := false
			for _, o := range opts {
				if o == desired {
					inList = true
					break
				}
			}
			if inList && s.Value() != desired {
				t.Fatalf("cat %q: desired %q in list but Value() = %q", c, desired, s.Value())
			}
			if !inList && s.Selected != -1 {
				t.Fatalf("cat %q: desired %q not in list but Selected = %d", c, desired, s.Selected)
			}
		}
	}
}

func TestNewEditor_SeedsAndAddGroupIndices(t *testing.T) {
	t.Parallel()

	e := NewEditor([]Seed{{Index: 0, LongTerm: "人導法"}}, model.CategoryOrientation)
	if len(e.Groups) != 1 {
		t.Fatalf("expected 1 seeded group; got %d", len(e.Groups))
	}
	if got := e.Groups[0].Selector.Value(); got != "人導法" {
		t.Fatalf("seeded selection = %q; want 人導法", got)
	}

	e.AddGroup()
	e.AddGroup()

	if len(e.Groups) != 3 {
		t.Fatalf("expected 3 groups; got %d", len(e.Groups))
	}
	wantIdx := []int{0, 1, 2}
	for i, g := range e.Groups {
		if g.Index != wantIdx[i] {
			t.Fatalf("group %d index = %d; want %d", i, g.Index, wantIdx[i])
		}
	}
	first := model.DefaultGoal(model.CategoryOrientation)
	for _, g := range e.Groups[1:] {
		if g.Selector.Value() != first {
			t.Fatalf("added group defaults to %q; want %q", g.Selector.Value(), first)
		}
		if len(g.ShortTerms) != 1 || g.ShortTerms[0].Text != "" {
			t.Fatalf("added group should start with exactly one blank entry")
		}
	}
}

func TestNewEditor_NoSeedsStartsWithOneGroup(t *testing.T) {
	t.Parallel()

	e := NewEditor(nil, model.CategoryDailyLiving)
	if len(e.Groups) != 1 {
		t.Fatalf("expected 1 group; got %d", len(e.Groups))
	}
	if got := e.Groups[0].Selector.Value(); got != model.DefaultGoal(model.CategoryDailyLiving) {
		t.Fatalf("default selection = %q", got)
	}
}

func TestNewEditor_SeedLabelMissingFromCategoryYieldsNoSelection(t *testing.T) {
	t.Parallel()

	// 手杖技巧 exists only under orientation.
	e := NewEditor([]Seed{{Index: 0, LongTerm: "手杖技巧"}}, model.CategoryDailyLiving)
	if e.Groups[0].Selector.Selected != -1 {
		t.Fatalf("expected no selection; got %d (%q)", e.Groups[0].Selector.Selected, e.Groups[0].Selector.Value())
	}
}

func TestIndicesNeverReusedAfterRemoval(t *testing.T) {
	t.Parallel()

	e := NewEditor(nil, model.CategoryOrientation) // group 0
	b := e.AddGroup()                              // 1
	c := e.AddGroup()                              // 2

	if !e.RemoveGroup(c) {
		t.Fatalf("expected removal of group 2 to succeed")
	}
	d := e.AddGroup()
	// max(live)=1, so the new index is 2 again only because 2 is no longer
	// live; it must still strictly exceed every live index.
	if d.Index != 2 {
		t.Fatalf("new index = %d; want 2", d.Index)
	}

	if !e.RemoveGroup(b) {
		t.Fatalf("expected removal to succeed")
	}
	f := e.AddGroup()
	if f.Index != 3 {
		t.Fatalf("new index = %d; want 3 (gaps allowed, no dense renumbering)", f.Index)
	}

	seen := map[int]bool{}
	for _, g := range e.Groups {
		if seen[g.Index] {
			t.Fatalf("duplicate live index %d", g.Index)
		}
		seen[g.Index] = true
	}
}

func TestRemoveGroup_LastGroupIsNoOp(t *testing.T) {
	t.Parallel()

	e := NewEditor(nil, model.CategoryOrientation)
	g := e.Groups[0]
	if e.RemoveGroup(g) {
		t.Fatalf("removing the last group must be refused")
	}
	if len(e.Groups) != 1 || e.Groups[0] != g {
		t.Fatalf("collection changed by refused removal")
	}

	// Arbitrary add/remove sequences never empty the collection.
	for i := 0; i < 20; i++ {
		if i%3 == 0 {
			e.AddGroup()
		}
		e.RemoveGroup(e.Groups[0])
		if len(e.Groups) == 0 {
			t.Fatalf("collection became empty at step %d", i)
		}
	}
}

func TestShortTermEntries_LastEntryClearsInsteadOfDeleting(t *testing.T) {
	t.Parallel()

	e := NewEditor(nil, model.CategoryOrientation)
	g := e.Groups[0]
	g.ShortTerms[0].Text = "跟隨引導者行走"

	if e.RemoveShortTerm(g, g.ShortTerms[0]) {
		t.Fatalf("removing the sole entry must be refused")
	}
	if len(g.ShortTerms) != 1 {
		t.Fatalf("sole entry row was removed")
	}
	if g.ShortTerms[0].Text != "" {
		t.Fatalf("sole entry text = %q; want cleared", g.ShortTerms[0].Text)
	}

	en2 := e.AddShortTerm(g)
	en2.Text = "second"
	if !e.RemoveShortTerm(g, g.ShortTerms[0]) {
		t.Fatalf("expected removal to succeed with two entries")
	}
	if len(g.ShortTerms) != 1 || g.ShortTerms[0] != en2 {
		t.Fatalf("wrong entry removed")
	}
}

func TestRemoveShortTerm_UnknownEntryIsNoOp(t *testing.T) {
	t.Parallel()

	e := NewEditor(nil, model.CategoryOrientation)
	g := e.Groups[0]
	e.AddShortTerm(g)
	if e.RemoveShortTerm(g, &Entry{}) {
		t.Fatalf("removing a foreign entry must report false")
	}
	if len(g.ShortTerms) != 2 {
		t.Fatalf("entry count changed by foreign removal")
	}
}

func TestSetCategory_RefreshPreservesOnlyStillValidSelections(t *testing.T) {
	t.Parallel()

	e := NewEditor([]Seed{{Index: 0, LongTerm: "手杖技巧"}}, model.CategoryOrientation)
	if e.Groups[0].Selector.Value() != "手杖技巧" {
		t.Fatalf("precondition: seed selection not applied")
	}

	e.SetCategory(model.CategoryDailyLiving)

	g := e.Groups[0]
	want := model.OptionsFor(model.CategoryDailyLiving)
	if len(g.Selector.Options) != len(want) {
		t.Fatalf("options not rebuilt for new category")
	}
	if g.Selector.Selected != -1 {
		t.Fatalf("手杖技巧 is orientation-only; expected no selection, got %q", g.Selector.Value())
	}

	// Switching back does not resurrect the old selection either: the
	// refresh reads the current (now empty) value, not the seed.
	e.SetCategory(model.CategoryOrientation)
	if e.Groups[0].Selector.Selected != -1 {
		t.Fatalf("selection must stay empty after switching back, got %q", e.Groups[0].Selector.Value())
	}
}

func TestRefreshAllGroups_UsesCurrentSelectionNotSeed(t *testing.T) {
	t.Parallel()

	e := NewEditor([]Seed{{Index: 0, LongTerm: "人導法"}}, model.CategoryOrientation)
	g := e.Groups[0]

	// User re-picks a different label after load.
	for i, opt := range g.Selector.Options {
		if opt == "概念發展" {
			g.Selector.Select(i)
		}
	}
	e.RefreshAllGroups()
	if g.Selector.Value() != "概念發展" {
		t.Fatalf("refresh lost the current selection: %q", g.Selector.Value())
	}
}

func TestPayload_SkipsBlankAndAssignsOrd(t *testing.T) {
	t.Parallel()

	e := NewEditor([]Seed{
		{Index: 0, LongTerm: "人導法", ShortTerms: []string{" 跟隨引導者 ", "", "上下樓梯"}},
	}, model.CategoryOrientation)
	g2 := e.AddGroup()
	g2.Selector.Selected = -1 // user cleared it via category switch

	got := e.Payload()
	if len(got) != 1 {
		t.Fatalf("expected 1 savable group; got %d", len(got))
	}
	if got[0].LongTerm != "人導法" || got[0].Ord != 1 || got[0].Index != 0 {
		t.Fatalf("unexpected payload group: %+v", got[0])
	}
	if len(got[0].ShortTerms) != 2 || got[0].ShortTerms[0] != "跟隨引導者" {
		t.Fatalf("short terms not trimmed/filtered: %v", got[0].ShortTerms)
	}
}
