// Package export renders a workspace's goal plan and teaching records as the
// plain-text handout teachers file away, and derives the download filename.
package export

import (
	"fmt"
	"strings"

	"goalplan/internal/model"
)

// BuildText renders the export document. The layout follows the printed
// form: a 教學目標 section listing each long-term goal with its numbered
// short-term goals, then a 【教學記錄】 section with one block per session.
func BuildText(groups []model.GoalGroup, recs []model.TeachingRecord) string {
	var lines []string

	lines = append(lines, "教學目標：")
	if len(groups) > 0 {
		for i, g := range groups {
			lines = append(lines, fmt.Sprintf("長期目標%d. %s", i+1, g.LongTerm))
			if len(g.ShortTerms) > 0 {
				for j, st := range g.ShortTerms {
					lines = append(lines, fmt.Sprintf("  短期目標%d. %s", j+1, st))
				}
			} else {
				lines = append(lines, "  （未填短期目標）")
			}
			lines = append(lines, "")
		}
	} else {
		lines = append(lines, "（未填）")
	}

	lines = append(lines, "【教學記錄】")
	if len(recs) == 0 {
		lines = append(lines, "（尚未新增）")
	} else {
		for i, r := range recs {
			lines = append(lines,
				fmt.Sprintf("第%d次", i+1),
				"教學日期："+r.TeachDate,
				"教學時間："+r.TeachTime,
				"教學成效評估：",
				r.Effectiveness,
				"")
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// Filename derives the download name from the plan's target date and the
// workspace code, e.g. "20260828_教學記錄_代碼123456.txt".
func Filename(targetDate, code string) string {
	ymd := strings.ReplaceAll(targetDate, "-", "")
	return fmt.Sprintf("%s_教學記錄_代碼%s.txt", ymd, code)
}

// WithBOM prefixes the document with a UTF-8 BOM so Windows Notepad detects
// the encoding.
func WithBOM(text string) []byte {
	return append([]byte{0xEF, 0xBB, 0xBF}, text...)
}
