// Package report 把 RunResult 渲染为页面卡片、导出文档和终端评分表
package report

import (
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
)

// CompositeLabel 综合评分在图表和评分表中的名称
const CompositeLabel = "Composite"

// View 页面与导出文档共用的视图模型
type View struct {
	RunID       string       `json:"run_id"`
	Title       string       `json:"title"`
	Company     string       `json:"company"`
	Industry    string       `json:"industry"`
	Priorities  []string     `json:"priorities"`
	UseCase     string       `json:"use_case,omitempty"`
	Model       string       `json:"model"`
	GeneratedAt time.Time    `json:"generated_at"`
	Brief       BriefView    `json:"brief"`
	Best        *BestView    `json:"best,omitempty"`
	Markets     []MarketView `json:"markets"`
	Chart       *ChartData   `json:"chart,omitempty"`
	Usage       dm.Usage     `json:"usage"`
}

// BriefView 公司简报卡片
type BriefView struct {
	Status string        `json:"status"`
	Text   string        `json:"text"`
	HTML   template.HTML `json:"html"`
	Error  string        `json:"error,omitempty"`
}

// BestView 综合评分最高的市场
type BestView struct {
	Country   string  `json:"country"`
	Composite float64 `json:"composite"`
}

// MarketView 单个市场卡片。Status 为 raw 时只展示 RawText，为 failed 时只展示 Error。
type MarketView struct {
	Country            string        `json:"country"`
	Status             string        `json:"status"`
	Summary            string        `json:"summary,omitempty"`
	SummaryHTML        template.HTML `json:"summary_html,omitempty"`
	Pestel             []PestelRow   `json:"pestel,omitempty"`
	Scores             []ScoreRow    `json:"scores,omitempty"`
	Recommendation     string        `json:"recommendation,omitempty"`
	RecommendationHTML template.HTML `json:"recommendation_html,omitempty"`
	EntryMode          string        `json:"entry_mode,omitempty"`
	Citations          []string      `json:"citations,omitempty"`
	RecentSignals      []string      `json:"recent_signals,omitempty"`
	RiskMitigations    []Mitigation  `json:"risk_mitigations,omitempty"`
	Signals            []dm.Article  `json:"signals,omitempty"`
	RawText            string        `json:"raw_text,omitempty"`
	Error              string        `json:"error,omitempty"`
}

// PestelRow 一个维度的要点
type PestelRow struct {
	Category string   `json:"category"`
	Bullets  []string `json:"bullets"`
}

// ScoreRow 一个维度的评分
type ScoreRow struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Mitigation 风险应对
type Mitigation struct {
	Risk   string `json:"risk"`
	Action string `json:"action"`
}

// ChartData 跨市场评分图，Data 中的 nil 表示该市场没有这一项评分
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset 单个市场的评分序列
type Dataset struct {
	Label string     `json:"label"`
	Data  []*float64 `json:"data"`
}

// Structured 是否有结构化字段
func (m MarketView) Structured() bool { return m.Status == string(dm.InsightStructured) }

// Raw 是否只有原文
func (m MarketView) Raw() bool { return m.Status == string(dm.InsightRaw) }

// Failed 是否调用失败
func (m MarketView) Failed() bool { return m.Status == string(dm.InsightFailed) }

// BuildView 构造视图模型，市场顺序与请求一致
func BuildView(res *dm.RunResult) View {
	v := View{
		RunID:       res.ID,
		Title:       "Market Entry Report: " + res.Request.Company,
		Company:     res.Request.Company,
		Industry:    res.Request.Industry,
		Priorities:  res.Request.Priorities,
		UseCase:     res.Request.UseCase,
		Model:       res.Model,
		GeneratedAt: res.FinishedAt,
		Usage:       res.Usage,
		Brief: BriefView{
			Status: string(res.Brief.Status),
			Text:   res.Brief.SummaryText,
			HTML:   markdownHTML(res.Brief.SummaryText),
			Error:  res.Brief.Error,
		},
	}
	if best := res.BestMarket(); best != nil {
		v.Best = &BestView{Country: best.Country, Composite: *best.Analysis.Composite}
	}

	for _, m := range res.Markets {
		v.Markets = append(v.Markets, marketView(m))
	}
	v.Chart = chartData(res.Markets)
	return v
}

func marketView(m dm.MarketInsight) MarketView {
	mv := MarketView{
		Country: m.Country,
		Status:  string(m.Status),
		Signals: m.Signals,
	}
	switch {
	case m.Status == dm.InsightFailed:
		mv.Error = m.Error
		if mv.Error == "" {
			mv.Error = "analysis unavailable"
		}
		return mv
	case m.Status != dm.InsightStructured || m.Analysis == nil:
		mv.Status = string(dm.InsightRaw)
		mv.RawText = m.RawText
		return mv
	}

	a := m.Analysis
	mv.Summary = a.Summary
	mv.SummaryHTML = markdownHTML(a.Summary)
	mv.Recommendation = a.Recommendation
	mv.RecommendationHTML = markdownHTML(a.Recommendation)
	mv.EntryMode = a.EntryMode
	mv.Citations = a.Citations
	mv.RecentSignals = a.RecentSignals

	for _, c := range dm.Categories {
		mv.Pestel = append(mv.Pestel, PestelRow{Category: string(c), Bullets: a.Pestel[c]})
		if s, ok := a.Scores[c]; ok {
			mv.Scores = append(mv.Scores, ScoreRow{Label: string(c), Score: s})
		}
	}
	if a.Composite != nil {
		mv.Scores = append(mv.Scores, ScoreRow{Label: CompositeLabel, Score: *a.Composite})
	}

	risks := make([]string, 0, len(a.RiskMitigations))
	for k := range a.RiskMitigations {
		risks = append(risks, k)
	}
	sort.Strings(risks)
	for _, k := range risks {
		mv.RiskMitigations = append(mv.RiskMitigations, Mitigation{Risk: k, Action: a.RiskMitigations[k]})
	}
	return mv
}

// chartData 至少一个市场有数值评分时才返回图表数据
func chartData(markets []dm.MarketInsight) *ChartData {
	labels := make([]string, 0, len(dm.Categories)+1)
	for _, c := range dm.Categories {
		labels = append(labels, string(c))
	}
	labels = append(labels, CompositeLabel)

	chart := &ChartData{Labels: labels}
	for _, m := range markets {
		if m.Status != dm.InsightStructured || !m.Analysis.HasScores() {
			continue
		}
		data := make([]*float64, 0, len(labels))
		for _, c := range dm.Categories {
			if s, ok := m.Analysis.Scores[c]; ok {
				data = append(data, &s)
			} else {
				data = append(data, nil)
			}
		}
		data = append(data, m.Analysis.Composite)
		chart.Datasets = append(chart.Datasets, Dataset{Label: m.Country, Data: data})
	}
	if len(chart.Datasets) == 0 {
		return nil
	}
	return chart
}

var sanitizer = bluemonday.UGCPolicy()

// markdownHTML 把模型返回的 Markdown 转为经过清洗的 HTML
func markdownHTML(md string) template.HTML {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	out := sanitizer.SanitizeBytes(markdown.Render(doc, renderer))
	return template.HTML(out) // #nosec G203 -- sanitized above
}
