package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"goalplan/internal/model"
	"goalplan/internal/plan"
	"goalplan/internal/store"
)

type fakeAPI struct {
	ackErr    error
	ackCalls  int
	fetchObj  model.Objectives
	fetchSeed []plan.Seed
	fetchErr  error

	savedObj    model.Objectives
	savedGroups []model.GoalGroup
	saveErr     error

	downloadPath string
	downloadErr  error

	deleteCalls int
	deleteErr   error
}

func (f *fakeAPI) AckCode(ctx context.Context) error {
	f.ackCalls++
	return f.ackErr
}

func (f *fakeAPI) FetchPlan(ctx context.Context, code string) (model.Objectives, []plan.Seed, error) {
	return f.fetchObj, f.fetchSeed, f.fetchErr
}

func (f *fakeAPI) SaveObjectives(ctx context.Context, code string, obj model.Objectives, groups []model.GoalGroup) error {
	f.savedObj = obj
	f.savedGroups = groups
	return f.saveErr
}

func (f *fakeAPI) Download(ctx context.Context, code, dir string) (string, error) {
	return f.downloadPath, f.downloadErr
}

func (f *fakeAPI) DeleteWorkspace(ctx context.Context, code string) error {
	f.deleteCalls++
	return f.deleteErr
}

func newTestModel(t *testing.T, f *fakeAPI) appModel {
	t.Helper()
	cfg := &store.GlobalConfig{}
	cfg.SetAcked("123456")
	header := model.Objectives{Category: model.CategoryOrientation}
	ed := plan.NewEditor(nil, model.CategoryOrientation)
	return newAppModel(f, cfg, "123456", header, ed, t.TempDir())
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewAppModel_StartsInCodeModalUntilAcked(t *testing.T) {
	f := &fakeAPI{}
	cfg := &store.GlobalConfig{}
	ed := plan.NewEditor(nil, model.CategoryOrientation)
	m := newAppModel(f, cfg, "654321", model.Objectives{}, ed, t.TempDir())
	if m.mode != modeCodeModal {
		t.Fatalf("mode = %d, want code modal", m.mode)
	}

	cfg.SetAcked("654321")
	m2 := newAppModel(f, cfg, "654321", model.Objectives{}, ed, t.TempDir())
	if m2.mode != modeEditor {
		t.Fatalf("acked code should start in the editor, got mode %d", m2.mode)
	}
}

func TestCodeModal_AckSuccessReloadsPlan(t *testing.T) {
	t.Setenv("GOALPLAN_CONFIG_DIR", t.TempDir())
	f := &fakeAPI{
		fetchObj:  model.Objectives{Category: model.CategoryDailyLiving},
		fetchSeed: []plan.Seed{{Index: 0, LongTerm: "飲食技能"}},
	}
	cfg := &store.GlobalConfig{}
	ed := plan.NewEditor(nil, model.CategoryOrientation)
	m := newAppModel(f, cfg, "111222", model.Objectives{}, ed, t.TempDir())

	mAny, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = mAny.(appModel)
	if !m.busy {
		t.Fatal("ack request should mark the model busy")
	}
	if cmd == nil {
		t.Fatal("enter should produce an ack command")
	}

	mAny, cmd = m.Update(cmd())
	m = mAny.(appModel)
	if m.busy {
		t.Fatal("busy should clear once the ack reply lands")
	}
	if m.mode != modeEditor {
		t.Fatalf("mode = %d, want editor after ack", m.mode)
	}
	if !cfg.Acked("111222") {
		t.Fatal("ack should be persisted in config")
	}
	if cmd == nil {
		t.Fatal("ack success should trigger a plan reload")
	}

	mAny, _ = m.Update(cmd())
	m = mAny.(appModel)
	if got := m.editor.Category(); got != model.CategoryDailyLiving {
		t.Fatalf("category after reload = %q, want 生活", got)
	}
	if got := m.editor.Groups[0].Selector.Value(); got != "飲食技能" {
		t.Fatalf("selection after reload = %q", got)
	}
}

func TestCodeModal_AckFailureStaysInModal(t *testing.T) {
	f := &fakeAPI{ackErr: errors.New("boom")}
	cfg := &store.GlobalConfig{}
	ed := plan.NewEditor(nil, model.CategoryOrientation)
	m := newAppModel(f, cfg, "111222", model.Objectives{}, ed, t.TempDir())

	mAny, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = mAny.(appModel)
	mAny, _ = m.Update(cmd())
	m = mAny.(appModel)

	if m.mode != modeCodeModal {
		t.Fatal("failed ack must keep the modal open")
	}
	if m.busy {
		t.Fatal("failed ack must re-enable the confirm action")
	}
	if m.notice == "" {
		t.Fatal("failed ack should surface a notice")
	}
	if cfg.Acked("111222") {
		t.Fatal("failed ack must not mark the code acknowledged")
	}

	// Retry works.
	f.ackErr = nil
	mAny, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = mAny.(appModel)
	mAny, _ = m.Update(cmd())
	m = mAny.(appModel)
	if m.mode != modeEditor {
		t.Fatal("retry after failure should succeed")
	}
	if f.ackCalls != 2 {
		t.Fatalf("ackCalls = %d, want 2", f.ackCalls)
	}
}

func TestEditor_AddGroupBindsAndFocusesNewRow(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})

	mAny, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	m = mAny.(appModel)

	if len(m.editor.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(m.editor.Groups))
	}
	if m.focusGroup != 1 || m.focusEntry != -1 {
		t.Fatalf("focus = (%d,%d), want new group's selector row", m.focusGroup, m.focusEntry)
	}
	en := m.editor.Groups[1].ShortTerms[0]
	if m.inputs[en] == nil {
		t.Fatal("new group's entry must have a bound input")
	}
}

func TestEditor_RemoveLastGroupRefused(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	m.focusGroup, m.focusEntry = 0, -1

	mAny, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	m = mAny.(appModel)
	if len(m.editor.Groups) != 1 {
		t.Fatalf("groups = %d, sole group must survive", len(m.editor.Groups))
	}
}

func TestEditor_RemoveSoleEntryClearsInput(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	en := m.editor.Groups[0].ShortTerms[0]
	m.inputs[en].SetValue("寫一半的目標")
	en.Text = "寫一半的目標"
	m.focusGroup, m.focusEntry = 0, 0

	mAny, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = mAny.(appModel)

	if len(m.editor.Groups[0].ShortTerms) != 1 {
		t.Fatal("sole entry row must stay")
	}
	if en.Text != "" || m.inputs[en].Value() != "" {
		t.Fatalf("sole entry should be cleared, got %q / %q", en.Text, m.inputs[en].Value())
	}
}

func TestEditor_EntryInputSurvivesCategoryToggle(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	en := m.editor.Groups[0].ShortTerms[0]
	in := m.inputs[en]
	m.focusGroup, m.focusEntry = 0, 0
	m.syncInputFocus()

	mAny, _ := m.Update(keyRune('認'))
	m = mAny.(appModel)

	// Toggle category from the category row and come back.
	m.focusGroup, m.focusEntry = -1, -1
	mAny, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = mAny.(appModel)

	if m.editor.Category() != model.CategoryDailyLiving {
		t.Fatalf("category = %q, want 生活", m.editor.Category())
	}
	if m.inputs[en] != in {
		t.Fatal("category toggle must not re-bind entry inputs")
	}
	if m.inputs[en].Value() != "認" {
		t.Fatalf("typed text lost across toggle: %q", m.inputs[en].Value())
	}
}

func TestEditor_SaveSendsCurrentCategoryAndKeepsHeader(t *testing.T) {
	f := &fakeAPI{}
	m := newTestModel(t, f)
	m.header = model.Objectives{
		TargetDate:   "2026-09-01",
		TeachingGoal: "獨立行走",
		Category:     model.CategoryOrientation,
	}
	m.focusGroup, m.focusEntry = -1, -1

	mAny, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = mAny.(appModel)
	g := m.editor.Groups[0]
	g.Selector.Select(0)

	mAny, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = mAny.(appModel)
	if !m.busy {
		t.Fatal("save should mark the model busy")
	}
	mAny, _ = m.Update(cmd())
	m = mAny.(appModel)

	if f.savedObj.Category != model.CategoryDailyLiving {
		t.Fatalf("saved category = %q, want the toggled 生活", f.savedObj.Category)
	}
	if f.savedObj.TeachingGoal != "獨立行走" || f.savedObj.TargetDate != "2026-09-01" {
		t.Fatalf("save must not clobber the fetched header, got %+v", f.savedObj)
	}
	if len(f.savedGroups) != 1 || f.savedGroups[0].LongTerm != "飲食技能" {
		t.Fatalf("saved groups = %+v", f.savedGroups)
	}
}

func TestEditor_BusyGuardRefusesSecondSave(t *testing.T) {
	f := &fakeAPI{}
	m := newTestModel(t, f)

	mAny, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = mAny.(appModel)
	if cmd == nil {
		t.Fatal("first save should fire")
	}
	mAny, cmd2 := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = mAny.(appModel)
	if cmd2 != nil {
		t.Fatal("second save while busy must be refused")
	}
}

func TestDownload_SuccessOpensConfirmAndDeleteQuits(t *testing.T) {
	f := &fakeAPI{downloadPath: "/tmp/out.txt"}
	m := newTestModel(t, f)

	mAny, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = mAny.(appModel)
	mAny, _ = m.Update(cmd())
	m = mAny.(appModel)

	if m.mode != modeConfirmDelete {
		t.Fatalf("mode = %d, want confirm-delete after download", m.mode)
	}
	if m.confirmFocus != confirmFocusCancel {
		t.Fatal("keep must be the default choice")
	}
	if m.downloadPath != "/tmp/out.txt" {
		t.Fatalf("downloadPath = %q", m.downloadPath)
	}

	// Move to delete and confirm.
	mAny, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = mAny.(appModel)
	mAny, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = mAny.(appModel)
	msg := cmd()
	if _, ok := msg.(deleteDoneMsg); !ok {
		t.Fatalf("confirm should issue the delete, got %T", msg)
	}
	if f.deleteCalls != 1 {
		t.Fatalf("deleteCalls = %d, want 1", f.deleteCalls)
	}
}

func TestDownload_KeepReturnsToEditor(t *testing.T) {
	f := &fakeAPI{downloadPath: "/tmp/out.txt"}
	m := newTestModel(t, f)

	mAny, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = mAny.(appModel)
	mAny, _ = m.Update(cmd())
	m = mAny.(appModel)

	mAny, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = mAny.(appModel)
	if m.mode != modeEditor {
		t.Fatal("keep should return to the editor")
	}
	if f.deleteCalls != 0 {
		t.Fatal("keep must not delete anything")
	}
}

func TestDownload_FailureStaysRetryable(t *testing.T) {
	f := &fakeAPI{downloadErr: errors.New("boom")}
	m := newTestModel(t, f)

	mAny, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = mAny.(appModel)
	mAny, _ = m.Update(cmd())
	m = mAny.(appModel)

	if m.mode != modeEditor {
		t.Fatal("failed download must not open the delete confirm")
	}
	if m.busy {
		t.Fatal("failed download must re-enable the trigger")
	}
	if m.notice == "" {
		t.Fatal("failed download should surface a notice")
	}
}

func TestDelete_FailureKeepsModalOpen(t *testing.T) {
	f := &fakeAPI{downloadPath: "/tmp/out.txt", deleteErr: errors.New("boom")}
	m := newTestModel(t, f)
	m.mode = modeConfirmDelete
	m.confirmFocus = confirmFocusConfirm

	mAny, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = mAny.(appModel)
	mAny, _ = m.Update(cmd())
	m = mAny.(appModel)

	if m.mode != modeConfirmDelete {
		t.Fatal("failed delete must keep the confirm open for retry")
	}
	if m.busy {
		t.Fatal("failed delete must re-enable the confirm")
	}
}

func TestFocus_WalksFlattenedRows(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})

	mAny, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	m = mAny.(appModel)
	m.focusGroup, m.focusEntry = -1, -1
	m.syncInputFocus()

	wantPath := [][2]int{{0, -1}, {0, 0}, {1, -1}, {1, 0}}
	for i, want := range wantPath {
		mAny, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = mAny.(appModel)
		if m.focusGroup != want[0] || m.focusEntry != want[1] {
			t.Fatalf("step %d: focus = (%d,%d), want (%d,%d)", i, m.focusGroup, m.focusEntry, want[0], want[1])
		}
	}

	// Bottom is sticky.
	mAny, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = mAny.(appModel)
	if m.focusGroup != 1 || m.focusEntry != 0 {
		t.Fatalf("focus past the end moved to (%d,%d)", m.focusGroup, m.focusEntry)
	}

	for i := len(wantPath) - 2; i >= 0; i-- {
		mAny, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
		m = mAny.(appModel)
		want := wantPath[i]
		if m.focusGroup != want[0] || m.focusEntry != want[1] {
			t.Fatalf("back step %d: focus = (%d,%d), want (%d,%d)", i, m.focusGroup, m.focusEntry, want[0], want[1])
		}
	}
}
