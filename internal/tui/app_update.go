package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"goalplan/internal/model"
	"goalplan/internal/plan"
	"goalplan/internal/store"
)

type ackDoneMsg struct{ err error }

type saveDoneMsg struct{ err error }

type downloadDoneMsg struct {
	path string
	err  error
}

type deleteDoneMsg struct{ err error }

type planReloadedMsg struct {
	header model.Objectives
	seeds  []plan.Seed
	err    error
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ackDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = "確認失敗，請再試一次。"
			return m, nil
		}
		// Acknowledged: remember it, then reload the workspace the way the
		// hosted page reloads after /ack-code succeeds.
		if m.cfg != nil {
			m.cfg.SetAcked(m.code)
			_ = store.SaveConfig(m.cfg)
		}
		m.mode = modeEditor
		return m, m.reloadPlanCmd()

	case planReloadedMsg:
		if msg.err != nil {
			m.notice = "重新載入失敗：" + msg.err.Error()
			return m, nil
		}
		m.header = msg.header
		m.editor = plan.NewEditor(msg.seeds, msg.header.Category)
		m.inputs = map[*plan.Entry]*textinput.Model{}
		for _, g := range m.editor.Groups {
			for _, en := range g.ShortTerms {
				m.bindEntry(en)
			}
		}
		m.focusGroup, m.focusEntry = -1, -1
		m.syncInputFocus()
		return m, nil

	case saveDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = "儲存失敗，請再試一次。"
			return m, nil
		}
		m.notice = "已儲存：教學目標（含多組長期/短期目標）"
		return m, nil

	case downloadDoneMsg:
		m.busy = false
		if msg.err != nil {
			// The trigger stays usable; nothing was written.
			m.notice = "下載失敗，請再試一次。"
			return m, nil
		}
		m.downloadPath = msg.path
		m.mode = modeConfirmDelete
		m.confirmFocus = confirmFocusCancel
		return m, nil

	case deleteDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = "刪除失敗，請再試一次。"
			return m, nil
		}
		// Mirrors the redirect home after a successful delete.
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeCodeModal:
		return m.updateCodeModal(msg)
	case modeConfirmDelete:
		return m.updateConfirmDelete(msg)
	case modeHelp:
		switch msg.String() {
		case "esc", "q", "ctrl+g":
			m.mode = modeEditor
		}
		return m, nil
	}
	return m.updateEditor(msg)
}

func (m appModel) updateCodeModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.busyLabel = "確認中…"
		return m, m.ackCmd()
	case "c", "y":
		if err := copyToClipboard(m.code); err != nil {
			m.notice = "無法使用剪貼簿，請手動抄下代碼。"
		} else {
			m.notice = "已複製代碼。"
		}
		return m, nil
	case "esc", "ctrl+g":
		// Dismiss without acknowledging; the prompt returns next session.
		m.mode = modeEditor
		return m, nil
	}
	return m, nil
}

func (m appModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "left", "right":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return m, nil
	case "enter":
		if m.confirmFocus == confirmFocusConfirm {
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.busyLabel = "刪除中…"
			return m, m.deleteCmd()
		}
		m.mode = modeEditor
		m.notice = "已下載：" + m.downloadPath
		return m, nil
	case "esc", "ctrl+g":
		m.mode = modeEditor
		m.notice = "已下載：" + m.downloadPath
		return m, nil
	}
	return m, nil
}

func (m appModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "down", "tab":
		m.focusNext()
		return m, nil
	case "up", "shift+tab":
		m.focusPrev()
		return m, nil

	case "ctrl+a":
		m.syncEntryTexts()
		g := m.editor.AddGroup()
		m.bindEntry(g.ShortTerms[0])
		m.focusOn(g, nil)
		return m, nil

	case "ctrl+x":
		if g := m.focusedGroup(); g != nil {
			if m.editor.RemoveGroup(g) {
				m.dropEntryBindings(g)
			}
			m.clampFocus()
		}
		return m, nil

	case "ctrl+n":
		if g := m.focusedGroup(); g != nil {
			m.syncEntryTexts()
			en := m.editor.AddShortTerm(g)
			m.bindEntry(en)
			m.focusOn(g, en)
		}
		return m, nil

	case "ctrl+d":
		g := m.focusedGroup()
		en := m.focusedEntry()
		if g != nil && en != nil {
			if m.editor.RemoveShortTerm(g, en) {
				delete(m.inputs, en)
			} else if in := m.inputs[en]; in != nil {
				// Sole entry: the row stays, its text was cleared.
				in.SetValue("")
			}
			m.clampFocus()
		}
		return m, nil

	case "ctrl+s":
		if m.busy {
			return m, nil
		}
		m.syncEntryTexts()
		m.busy = true
		m.busyLabel = "儲存中…"
		return m, m.saveCmd()

	case "ctrl+o":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.busyLabel = "下載中…"
		return m, m.downloadCmd()

	case "ctrl+t":
		id := toggleTheme()
		if m.cfg != nil {
			if m.cfg.UI == nil {
				m.cfg.UI = &store.UIConfig{}
			}
			m.cfg.UI.Theme = string(id)
			_ = store.SaveConfig(m.cfg)
		}
		return m, nil

	case "ctrl+k":
		m.mode = modeCodeModal
		return m, nil
	}

	// Row-local keys.
	if m.focusGroup == -1 {
		switch key {
		case "left", "right", "enter", " ":
			if m.editor.Category() == model.CategoryOrientation {
				m.editor.SetCategory(model.CategoryDailyLiving)
			} else {
				m.editor.SetCategory(model.CategoryOrientation)
			}
		case "?":
			m.mode = modeHelp
		}
		return m, nil
	}

	g := m.focusedGroup()
	if m.focusEntry == -1 {
		// Long-term selector row.
		switch key {
		case "left":
			g.Selector.Select(g.Selector.Selected - 1)
		case "right":
			if g.Selector.Selected == -1 {
				g.Selector.Select(0)
			} else {
				g.Selector.Select(g.Selector.Selected + 1)
			}
		case "?":
			m.mode = modeHelp
		}
		return m, nil
	}

	// Short-term entry row: feed the bound input, then mirror the buffer
	// into the model.
	en := m.focusedEntry()
	if in := m.inputs[en]; in != nil {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		en.Text = in.Value()
		return m, cmd
	}
	return m, nil
}

// ---- network commands ----
//
// Each command owns one request; the reply message re-enables the trigger.
// Failures leave all prior state untouched.

func (m appModel) ackCmd() tea.Cmd {
	a := m.api
	return func() tea.Msg {
		return ackDoneMsg{err: a.AckCode(context.Background())}
	}
}

func (m appModel) reloadPlanCmd() tea.Cmd {
	a, code := m.api, m.code
	return func() tea.Msg {
		header, seeds, err := a.FetchPlan(context.Background(), code)
		return planReloadedMsg{header: header, seeds: seeds, err: err}
	}
}

func (m appModel) saveCmd() tea.Cmd {
	a, code, obj, groups := m.api, m.code, m.objectives(), m.editor.Payload()
	return func() tea.Msg {
		return saveDoneMsg{err: a.SaveObjectives(context.Background(), code, obj, groups)}
	}
}

func (m appModel) downloadCmd() tea.Cmd {
	a, code, dir := m.api, m.code, m.downloadDir
	return func() tea.Msg {
		path, err := a.Download(context.Background(), code, dir)
		return downloadDoneMsg{path: path, err: err}
	}
}

func (m appModel) deleteCmd() tea.Cmd {
	a, code := m.api, m.code
	return func() tea.Msg {
		return deleteDoneMsg{err: a.DeleteWorkspace(context.Background(), code)}
	}
}
