package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"goalplan/internal/model"
	"goalplan/internal/plan"
)

const helpText = `# 操作說明

| 按鍵 | 動作 |
|------|------|
| tab / ↓, shift+tab / ↑ | 移動焦點 |
| ← / → | 切換類別或長期目標 |
| ctrl+a | 新增目標組 |
| ctrl+x | 刪除目前目標組 |
| ctrl+n | 新增短期目標 |
| ctrl+d | 刪除目前短期目標 |
| ctrl+s | 儲存 |
| ctrl+o | 下載教學記錄 |
| ctrl+k | 顯示工作代碼 |
| ctrl+t | 切換深淺主題 |
| ctrl+c | 離開 |

esc 返回編輯畫面。`

func (m appModel) View() string {
	if m.width == 0 {
		return ""
	}

	switch m.mode {
	case modeCodeModal:
		return m.overlay(m.viewCodeModal())
	case modeConfirmDelete:
		return m.overlay(m.viewConfirmDelete())
	case modeHelp:
		return m.overlay(renderMarkdown(helpText, m.contentWidth()))
	}
	return m.viewEditor()
}

func (m appModel) contentWidth() int {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	if w > 80 {
		w = 80
	}
	return w
}

func (m appModel) viewEditor() string {
	var b strings.Builder
	w := m.contentWidth()

	b.WriteString(styleTitle().Render("教學目標草稿"))
	b.WriteString("  ")
	b.WriteString(styleMuted().Render("代碼 " + m.code))
	b.WriteString("\n\n")

	b.WriteString(m.viewCategoryRow())
	b.WriteString("\n\n")

	for gi, g := range m.editor.Groups {
		selected := m.focusGroup == gi
		var gb strings.Builder

		gb.WriteString(styleMuted().Render(fmt.Sprintf("長期目標 %d", gi+1)))
		gb.WriteString("\n")
		gb.WriteString(m.viewSelectorRow(gi))
		gb.WriteString("\n")

		for ei, en := range g.ShortTerms {
			gb.WriteString(m.viewEntryRow(gi, ei, en))
			if ei < len(g.ShortTerms)-1 {
				gb.WriteString("\n")
			}
		}

		box := styleGroupBox(selected).Width(w).Render(gb.String())
		b.WriteString(box)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter(w))
	return b.String()
}

func (m appModel) viewCategoryRow() string {
	cat := m.editor.Category()
	orientation := styleButton(cat == model.CategoryOrientation).Render(string(model.CategoryOrientation))
	daily := styleButton(cat == model.CategoryDailyLiving).Render(string(model.CategoryDailyLiving))
	row := "類別：" + orientation + " " + daily
	if m.focusGroup == -1 {
		return styleSelectedRow().Render("▸ ") + row
	}
	return "  " + row
}

func (m appModel) viewSelectorRow(gi int) string {
	g := m.editor.Groups[gi]
	label := g.Selector.Value()
	if label == "" {
		label = "（請選擇）"
	}
	label = xansi.Truncate(label, m.contentWidth()-10, "…")
	row := "◂ " + label + " ▸"
	if m.focusGroup == gi && m.focusEntry == -1 {
		return styleSelectedRow().Render(row)
	}
	return row
}

func (m appModel) viewEntryRow(gi, ei int, en *plan.Entry) string {
	in := m.inputs[en]
	var body string
	if in != nil {
		body = in.View()
	} else {
		body = en.Text
	}
	marker := "  "
	if m.focusGroup == gi && m.focusEntry == ei {
		marker = styleSelectedRow().Render("▸ ")
	}
	return marker + "短期：" + body
}

func (m appModel) viewFooter(w int) string {
	var b strings.Builder
	if m.busy {
		b.WriteString(styleNotice().Render(m.busyLabel))
		b.WriteString("\n")
	} else if m.notice != "" {
		b.WriteString(styleNotice().Render(xansi.Truncate(m.notice, w, "…")))
		b.WriteString("\n")
	}
	b.WriteString(styleMuted().Render("ctrl+s 儲存 · ctrl+a 新組 · ctrl+n 新短期 · ctrl+o 下載 · ? 說明"))
	return b.String()
}

func (m appModel) viewCodeModal() string {
	var b strings.Builder
	b.WriteString(styleTitle().Render("請記下您的工作代碼"))
	b.WriteString("\n\n")
	b.WriteString("代碼：" + styleTitle().Render(m.code))
	b.WriteString("\n\n")
	b.WriteString("之後可憑此代碼回來繼續編輯。\n\n")
	if m.busy {
		b.WriteString(styleNotice().Render(m.busyLabel))
	} else {
		b.WriteString(styleButton(true).Render("enter 我已記下") + " " + styleButton(false).Render("c 複製"))
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(styleNotice().Render(m.notice))
	}
	return b.String()
}

func (m appModel) viewConfirmDelete() string {
	var b strings.Builder
	b.WriteString(styleTitle().Render("已下載教學記錄"))
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Render(m.downloadPath))
	b.WriteString("\n\n")
	b.WriteString("要刪除伺服器上的草稿嗎？刪除後無法復原。\n\n")
	if m.busy {
		b.WriteString(styleNotice().Render(m.busyLabel))
	} else {
		del := styleDanger().Bold(m.confirmFocus == confirmFocusConfirm).Render("刪除")
		keep := styleButton(m.confirmFocus == confirmFocusCancel).Render("保留")
		b.WriteString(del + "  " + keep)
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(styleNotice().Render(m.notice))
	}
	return b.String()
}

// overlay centers a boxed panel in the window.
func (m appModel) overlay(body string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.accent).
		Padding(1, 2).
		MaxWidth(m.contentWidth() + 6).
		Render(body)
	if m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
