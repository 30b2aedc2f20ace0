package report

import (
	"fmt"
	"io"
	"strings"
)

// RenderMarkdown 导出文档。顺序固定：标题、行业与优先级、推荐市场、公司简报、按请求顺序的各市场。
func RenderMarkdown(w io.Writer, v View) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", v.Title)
	fmt.Fprintf(&sb, "- **Industry:** %s\n", v.Industry)
	fmt.Fprintf(&sb, "- **Priorities:** %s\n", joinOr(v.Priorities, ", ", "general market fit"))
	if v.UseCase != "" {
		fmt.Fprintf(&sb, "- **Use case:** %s\n", v.UseCase)
	}
	if v.Model != "" {
		fmt.Fprintf(&sb, "- **Model:** %s\n", v.Model)
	}
	if !v.GeneratedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Generated:** %s\n", v.GeneratedAt.Format("2006-01-02 15:04"))
	}

	sb.WriteString("\n## Recommended market\n\n")
	if v.Best != nil {
		fmt.Fprintf(&sb, "**%s** (composite score %s)\n", v.Best.Country, formatScore(v.Best.Composite))
	} else {
		sb.WriteString("No composite scores were returned.\n")
	}

	sb.WriteString("\n## Company brief\n\n")
	switch {
	case v.Brief.Text != "":
		sb.WriteString(v.Brief.Text)
		sb.WriteString("\n")
		if v.Brief.Status == "fallback" {
			sb.WriteString("\n_Generated from the engagement inputs because the model call failed._\n")
		}
	default:
		fmt.Fprintf(&sb, "_Company brief unavailable: %s_\n", v.Brief.Error)
	}

	for _, m := range v.Markets {
		fmt.Fprintf(&sb, "\n## Market: %s\n\n", m.Country)
		writeMarket(&sb, m)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeMarket(sb *strings.Builder, m MarketView) {
	switch {
	case m.Failed():
		fmt.Fprintf(sb, "_Analysis unavailable: %s_\n", m.Error)
		return
	case m.Raw():
		sb.WriteString("_The model reply could not be parsed; raw output follows._\n\n")
		fence := codeFence(m.RawText)
		sb.WriteString(fence + "text\n")
		sb.WriteString(m.RawText)
		if !strings.HasSuffix(m.RawText, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString(fence + "\n")
		return
	}

	if m.Summary != "" {
		sb.WriteString(m.Summary)
		sb.WriteString("\n")
	}

	sb.WriteString("\n### PESTEL\n")
	for _, row := range m.Pestel {
		fmt.Fprintf(sb, "\n#### %s\n\n", row.Category)
		if len(row.Bullets) == 0 {
			sb.WriteString("- No data returned.\n")
			continue
		}
		for _, b := range row.Bullets {
			fmt.Fprintf(sb, "- %s\n", b)
		}
	}

	if len(m.Scores) > 0 {
		sb.WriteString("\n### Scores\n\n| Dimension | Score |\n| --- | --- |\n")
		for _, s := range m.Scores {
			fmt.Fprintf(sb, "| %s | %s |\n", s.Label, formatScore(s.Score))
		}
	}

	if m.Recommendation != "" {
		fmt.Fprintf(sb, "\n### Recommendation\n\n%s\n", m.Recommendation)
	}
	if m.EntryMode != "" {
		fmt.Fprintf(sb, "\n### Entry mode\n\n%s\n", m.EntryMode)
	}
	writeList(sb, "Recent signals", m.RecentSignals)
	if len(m.RiskMitigations) > 0 {
		sb.WriteString("\n### Risk mitigations\n\n")
		for _, r := range m.RiskMitigations {
			fmt.Fprintf(sb, "- **%s:** %s\n", r.Risk, r.Action)
		}
	}
	writeList(sb, "Citations", m.Citations)
	if len(m.Signals) > 0 {
		sb.WriteString("\n### News consulted\n\n")
		for _, a := range m.Signals {
			fmt.Fprintf(sb, "- [%s](%s)\n", a.Title, a.Link)
		}
	}
}

// codeFence 比原文中最长的连续反引号多一个，保证原文里的 ``` 不会提前结束代码块
func codeFence(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n### %s\n\n", title)
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it)
	}
}

func joinOr(items []string, sep, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, sep)
}

func formatScore(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.1f", f)
}
