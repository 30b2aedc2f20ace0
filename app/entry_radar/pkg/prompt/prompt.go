// Package prompt 构造发送给模型的提示词，纯函数、无副作用。
package prompt

import (
	"fmt"
	"strings"

	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
)

// Prompt 一次调用的 system + user 消息
type Prompt struct {
	System string
	User   string
}

const briefSystem = "You craft precise company briefs for market entry engagements. No filler, no markdown headings."

const marketSystem = "You are a senior consultant producing PESTEL market-entry analysis. " +
	"Return only one JSON object that follows the requested structure. If data is sparse, say so inside the fields."

const marketSchema = `{
  "summary": "two or three sentences on the market opportunity",
  "pestel": {
    "Political": ["short bullet", "..."],
    "Economic": ["..."],
    "Social": ["..."],
    "Technological": ["..."],
    "Environmental": ["..."],
    "Legal": ["..."]
  },
  "scores": {
    "Political": 0, "Economic": 0, "Social": 0,
    "Technological": 0, "Environmental": 0, "Legal": 0,
    "composite": 0
  },
  "recommendation": "one paragraph go / no-go recommendation",
  "entry_mode": "preferred entry mode, e.g. joint venture",
  "citations": ["source name or URL for the facts used"],
  "recent_signals": ["recent news or data point"],
  "risk_mitigations": {"theme": "action"}
}`

// CompanyBrief 公司简报提示词
func CompanyBrief(req dm.EngagementRequest) Prompt {
	var sb strings.Builder
	sb.WriteString("Write an executive brief for a market entry engagement.\n")
	fmt.Fprintf(&sb, "Company: %s\n", req.Company)
	fmt.Fprintf(&sb, "Industry: %s\n", req.Industry)
	if req.UseCase != "" {
		fmt.Fprintf(&sb, "Use case: %s\n", req.UseCase)
	}
	fmt.Fprintf(&sb, "Strategic priorities: %s\n", priorities(req.Priorities))
	fmt.Fprintf(&sb, "Target markets under review: %s\n", strings.Join(req.Markets, ", "))
	sb.WriteString("Provide three crisp sentences: who they serve, current positioning, and their main strategic lever.")

	return Prompt{System: briefSystem, User: sb.String()}
}

// MarketSnapshot 单个市场的 PESTEL JSON 提示词。brief 为空时不附带公司简报。
func MarketSnapshot(req dm.EngagementRequest, country, brief string, signals []dm.Article) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a market entry snapshot for %s entering %s.\n", req.Company, country)
	fmt.Fprintf(&sb, "Company: %s\n", req.Company)
	fmt.Fprintf(&sb, "Industry: %s\n", req.Industry)
	fmt.Fprintf(&sb, "Market: %s\n", country)
	if req.UseCase != "" {
		fmt.Fprintf(&sb, "Use case: %s\n", req.UseCase)
	}
	fmt.Fprintf(&sb, "Priorities: %s\n", priorities(req.Priorities))

	if brief = strings.TrimSpace(brief); brief != "" {
		fmt.Fprintf(&sb, "\nCompany brief:\n%s\n", brief)
	}

	if len(signals) > 0 {
		sb.WriteString("\nRecent signals for this market:\n")
		for i, art := range signals {
			fmt.Fprintf(&sb, "%d. %s (%s)", i+1, art.Title, art.Link)
			if art.PubDate != "" {
				fmt.Fprintf(&sb, " [%s]", art.PubDate)
			}
			sb.WriteString("\n")
			if art.Content != "" {
				fmt.Fprintf(&sb, "   %s\n", art.Content)
			}
		}
	}

	sb.WriteString("\nReturn JSON with exactly these keys and no markdown fences:\n")
	sb.WriteString(marketSchema)
	sb.WriteString("\nScores are integers from 0 to 100 where higher means a more attractive market for this company. ")
	sb.WriteString("Use realistic, timely signals and cite them; avoid placeholders.")

	return Prompt{System: marketSystem, User: sb.String()}
}

// HealthProbe 连通性检查提示词
func HealthProbe() Prompt {
	return Prompt{
		System: "Connectivity check.",
		User:   "You are a connectivity probe. Reply with READY.",
	}
}

func priorities(p []string) string {
	if len(p) == 0 {
		return "general market fit"
	}
	return strings.Join(p, ", ")
}
