package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"

	"goalplan/internal/model"
	"goalplan/internal/plan"
	"goalplan/internal/store"
)

// api is the slice of the workspace server the editor needs.
// *client.Client satisfies it; tests inject fakes.
type api interface {
	AckCode(ctx context.Context) error
	FetchPlan(ctx context.Context, code string) (model.Objectives, []plan.Seed, error)
	SaveObjectives(ctx context.Context, code string, obj model.Objectives, groups []model.GoalGroup) error
	Download(ctx context.Context, code, dir string) (string, error)
	DeleteWorkspace(ctx context.Context, code string) error
}

type mode int

const (
	modeEditor mode = iota
	modeCodeModal
	modeConfirmDelete
	modeHelp
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

type appModel struct {
	api  api
	cfg  *store.GlobalConfig
	code string

	editor *plan.Editor
	header model.Objectives

	width  int
	height int

	mode mode

	// Focus walks a flattened row list: the category row (focusGroup == -1),
	// then per group its selector row (focusEntry == -1) followed by its
	// short-term entry rows.
	focusGroup int
	focusEntry int

	// One text input per live entry, created when the entry is created and
	// never re-bound on refresh.
	inputs map[*plan.Entry]*textinput.Model

	confirmFocus confirmModalFocus

	// busy mirrors the "button disabled while a request is outstanding"
	// rule: the triggering action is refused until its reply arrives.
	busy      bool
	busyLabel string

	notice string

	downloadDir  string
	downloadPath string
}

func newAppModel(a api, cfg *store.GlobalConfig, code string, header model.Objectives, ed *plan.Editor, downloadDir string) appModel {
	m := appModel{
		api:         a,
		cfg:         cfg,
		code:        code,
		editor:      ed,
		header:      header,
		focusGroup:  -1,
		focusEntry:  -1,
		inputs:      map[*plan.Entry]*textinput.Model{},
		downloadDir: downloadDir,
	}
	for _, g := range ed.Groups {
		for _, en := range g.ShortTerms {
			m.bindEntry(en)
		}
	}
	if cfg != nil && !cfg.Acked(code) {
		m.mode = modeCodeModal
	}
	m.syncInputFocus()
	return m
}

// bindEntry creates the text input for a newly created entry. Binding
// happens exactly once per entry; selector refreshes never touch inputs.
func (m *appModel) bindEntry(en *plan.Entry) *textinput.Model {
	if in, ok := m.inputs[en]; ok {
		return in
	}
	in := textinput.New()
	in.Placeholder = "短期目標"
	in.Prompt = ""
	in.SetValue(en.Text)
	m.inputs[en] = &in
	return &in
}

func (m *appModel) dropEntryBindings(g *plan.Group) {
	for _, en := range g.ShortTerms {
		delete(m.inputs, en)
	}
}

// focusedGroup returns the group owning the focus, or nil on the category
// row.
func (m *appModel) focusedGroup() *plan.Group {
	if m.focusGroup < 0 || m.focusGroup >= len(m.editor.Groups) {
		return nil
	}
	return m.editor.Groups[m.focusGroup]
}

func (m *appModel) focusedEntry() *plan.Entry {
	g := m.focusedGroup()
	if g == nil || m.focusEntry < 0 || m.focusEntry >= len(g.ShortTerms) {
		return nil
	}
	return g.ShortTerms[m.focusEntry]
}

// syncInputFocus gives terminal focus to the focused entry's input (if any)
// and blurs everything else.
func (m *appModel) syncInputFocus() {
	focused := m.focusedEntry()
	for en, in := range m.inputs {
		if en == focused {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// clampFocus repairs the focus coordinates after a structural change.
func (m *appModel) clampFocus() {
	if len(m.editor.Groups) == 0 {
		m.focusGroup, m.focusEntry = -1, -1
		return
	}
	if m.focusGroup >= len(m.editor.Groups) {
		m.focusGroup = len(m.editor.Groups) - 1
		m.focusEntry = -1
	}
	if g := m.focusedGroup(); g != nil && m.focusEntry >= len(g.ShortTerms) {
		m.focusEntry = len(g.ShortTerms) - 1
	}
	m.syncInputFocus()
}

// focusNext/focusPrev walk the flattened rows.
func (m *appModel) focusNext() {
	if m.focusGroup == -1 {
		if len(m.editor.Groups) > 0 {
			m.focusGroup, m.focusEntry = 0, -1
		}
		m.syncInputFocus()
		return
	}
	g := m.focusedGroup()
	if m.focusEntry < len(g.ShortTerms)-1 {
		m.focusEntry++
	} else if m.focusGroup < len(m.editor.Groups)-1 {
		m.focusGroup++
		m.focusEntry = -1
	}
	m.syncInputFocus()
}

func (m *appModel) focusPrev() {
	if m.focusGroup == -1 {
		return
	}
	if m.focusEntry > -1 {
		m.focusEntry--
	} else if m.focusGroup > 0 {
		m.focusGroup--
		m.focusEntry = len(m.editor.Groups[m.focusGroup].ShortTerms) - 1
	} else {
		m.focusGroup, m.focusEntry = -1, -1
	}
	m.syncInputFocus()
}

// focusOn points the focus at a specific group/entry pair.
func (m *appModel) focusOn(g *plan.Group, en *plan.Entry) {
	for gi, x := range m.editor.Groups {
		if x != g {
			continue
		}
		m.focusGroup = gi
		m.focusEntry = -1
		for ei, e := range g.ShortTerms {
			if e == en {
				m.focusEntry = ei
				break
			}
		}
		break
	}
	m.syncInputFocus()
}

// syncEntryTexts copies the input buffers back into the model so the plan
// stays the single source of truth before any save or render decision.
func (m *appModel) syncEntryTexts() {
	for en, in := range m.inputs {
		en.Text = in.Value()
	}
}

// objectives assembles the savable form header: the fetched header fields
// with the editor's current category.
func (m *appModel) objectives() model.Objectives {
	obj := m.header
	obj.Category = m.editor.Category()
	return obj
}
