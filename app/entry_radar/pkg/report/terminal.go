package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorWarning = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")
	colorMuted   = lipgloss.Color("#565f89")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "structured", "ok":
		return cellStyle.Foreground(colorSuccess)
	case "raw", "fallback":
		return cellStyle.Foreground(colorWarning)
	default:
		return cellStyle.Foreground(colorError)
	}
}

// RenderTerminal 命令行评分表：每个市场一行，列为各维度评分与状态
func RenderTerminal(v View) string {
	headers := []string{"Market", "Status"}
	if v.Chart != nil {
		headers = append(headers, v.Chart.Labels...)
	}

	rows := make([][]string, 0, len(v.Markets))
	for _, m := range v.Markets {
		row := []string{m.Country, m.Status}
		if v.Chart != nil {
			byLabel := make(map[string]float64, len(m.Scores))
			for _, s := range m.Scores {
				byLabel[s.Label] = s.Score
			}
			for _, label := range v.Chart.Labels {
				if s, ok := byLabel[label]; ok {
					row = append(row, formatScore(s))
				} else {
					row = append(row, "-")
				}
			}
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 && row >= 0 && row < len(rows) {
				return statusStyle(rows[row][1])
			}
			return cellStyle
		})

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(v.Title))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s · %s", v.Industry, v.Model, joinOr(v.Priorities, ", ", "general market fit"))))
	sb.WriteString("\n\n")
	sb.WriteString(statusStyle(v.Brief.Status).UnsetPadding().Render("Brief: " + v.Brief.Status))
	sb.WriteString("\n")
	sb.WriteString(t.String())
	sb.WriteString("\n")
	if v.Best != nil {
		sb.WriteString(fmt.Sprintf("Recommended market: %s (composite %s)\n", v.Best.Country, formatScore(v.Best.Composite)))
	}
	return sb.String()
}
