package model

import (
	"strings"
	"time"
)

// Category PESTEL 维度
type Category string

const (
	Political     Category = "Political"
	Economic      Category = "Economic"
	Social        Category = "Social"
	Technological Category = "Technological"
	Environmental Category = "Environmental"
	Legal         Category = "Legal"
)

// Categories 固定顺序的 PESTEL 维度
var Categories = []Category{Political, Economic, Social, Technological, Environmental, Legal}

// ParseCategory 不区分大小写地识别维度名称
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Article 市场信号文章，作为提示词上下文
type Article struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Source  string `json:"source"`
	PubDate string `json:"pub_date,omitempty"`
	Content string `json:"-"` // 仅用于 LLM 上下文，不展示
}

// Usage token 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add 累加用量
func (u *Usage) Add(o Usage) {
	u.PromptTokens += o.PromptTokens
	u.CompletionTokens += o.CompletionTokens
	u.TotalTokens += o.TotalTokens
}

// BriefStatus 公司简报状态
type BriefStatus string

const (
	BriefOK       BriefStatus = "ok"
	BriefFallback BriefStatus = "fallback"
	BriefFailed   BriefStatus = "failed"
)

// CompanyBrief 公司简报，作为每个市场调用的共享上下文
type CompanyBrief struct {
	SummaryText string      `json:"summary_text"`
	GeneratedAt time.Time   `json:"generated_at"`
	Status      BriefStatus `json:"status"`
	RawText     string      `json:"raw_text,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Context 返回可作为后续提示词上下文的简报文本
func (b CompanyBrief) Context() string {
	if b.Status == BriefFailed {
		return ""
	}
	return b.SummaryText
}

// InsightStatus 市场结果类型
type InsightStatus string

const (
	// InsightStructured 成功解析出结构化字段
	InsightStructured InsightStatus = "structured"
	// InsightRaw 收到回复但无法解析，仅保留原文
	InsightRaw InsightStatus = "raw"
	// InsightFailed 调用失败，没有回复
	InsightFailed InsightStatus = "failed"
)

// MarketAnalysis 单个市场的结构化分析
type MarketAnalysis struct {
	Summary         string                `json:"summary,omitempty"`
	Pestel          map[Category][]string `json:"pestel"`
	Scores          map[Category]float64  `json:"scores,omitempty"`
	Composite       *float64              `json:"composite,omitempty"`
	Recommendation  string                `json:"recommendation,omitempty"`
	EntryMode       string                `json:"entry_mode,omitempty"`
	Citations       []string              `json:"citations,omitempty"`
	RecentSignals   []string              `json:"recent_signals,omitempty"`
	RiskMitigations map[string]string     `json:"risk_mitigations,omitempty"`
}

// HasScores 是否至少有一个数值评分
func (a *MarketAnalysis) HasScores() bool {
	return a != nil && (len(a.Scores) > 0 || a.Composite != nil)
}

// MarketInsight 单个市场的结果。Analysis 仅在 Status 为 structured 时非空，
// 只要收到回复 RawText 就保存未修改的原文。
type MarketInsight struct {
	Country  string          `json:"country"`
	Status   InsightStatus   `json:"status"`
	Analysis *MarketAnalysis `json:"analysis,omitempty"`
	RawText  string          `json:"raw_text,omitempty"`
	Error    string          `json:"error,omitempty"`
	Signals  []Article       `json:"signals,omitempty"`
	Usage    Usage           `json:"usage"`
}

// Structured 构造结构化结果
func Structured(country, raw string, a *MarketAnalysis) MarketInsight {
	return MarketInsight{Country: country, Status: InsightStructured, Analysis: a, RawText: raw}
}

// Raw 构造仅原文结果
func Raw(country, raw string) MarketInsight {
	return MarketInsight{Country: country, Status: InsightRaw, RawText: raw}
}

// Failed 构造失败结果
func Failed(country string, err error) MarketInsight {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return MarketInsight{Country: country, Status: InsightFailed, Error: msg}
}

// RunResult 一次运行的结果，市场顺序与请求一致
type RunResult struct {
	ID         string            `json:"id"`
	Request    EngagementRequest `json:"request"`
	Model      string            `json:"model"`
	Brief      CompanyBrief      `json:"brief"`
	Markets    []MarketInsight   `json:"markets"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Usage      Usage             `json:"usage"`
}

// BestMarket 综合评分最高的结构化市场，没有评分时返回 nil
func (r *RunResult) BestMarket() *MarketInsight {
	var best *MarketInsight
	for i := range r.Markets {
		m := &r.Markets[i]
		if m.Status != InsightStructured || m.Analysis == nil || m.Analysis.Composite == nil {
			continue
		}
		if best == nil || *m.Analysis.Composite > *best.Analysis.Composite {
			best = m
		}
	}
	return best
}

// Count 统计某种状态的市场数量
func (r *RunResult) Count(status InsightStatus) int {
	n := 0
	for _, m := range r.Markets {
		if m.Status == status {
			n++
		}
	}
	return n
}
