package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	dmp "github.com/sergi/go-diff/diffmatchpatch"
)

var (
	diffDelLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
	diffAddLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"})
	faint       = lipgloss.NewStyle().Faint(true)
)

// RenderDiff renders a line diff of before and after. Unchanged lines are
// kept faint for context; blank unchanged lines are dropped.
func RenderDiff(before, after string) string {
	if before == after {
		return "No changes\n"
	}

	d := dmp.New()
	a, b, lines := d.DiffLinesToChars(before, after)
	diffs := d.DiffCharsToLines(d.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, df := range diffs {
		for _, line := range splitLines(df.Text) {
			switch df.Type {
			case dmp.DiffDelete:
				sb.WriteString(diffDelLine.Render("- " + line))
			case dmp.DiffInsert:
				sb.WriteString(diffAddLine.Render("+ " + line))
			default:
				if strings.TrimSpace(line) == "" {
					continue
				}
				sb.WriteString("  " + faint.Render(line))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}
