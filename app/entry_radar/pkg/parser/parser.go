// Package parser 把模型回复解析为结构化结果。解析失败时降级为原文，从不返回错误。
package parser

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
)

// marketKeys 市场回复中可识别的键，一个都没有时视为形状不符
var marketKeys = []string{
	"summary", "pestel", "scores", "composite", "overall",
	"recommendation", "recommendations", "entry_mode",
	"citations", "sources", "recent_signals",
	"risk_mitigations", "turnaround_actions",
}

// ParseMarket 解析单个市场的回复
func ParseMarket(country, raw string) dm.MarketInsight {
	obj, ok := decodeObject(raw)
	if !ok || !hasAny(obj, marketKeys) {
		return dm.Raw(country, raw)
	}

	a := &dm.MarketAnalysis{
		Summary:        text(obj["summary"]),
		Pestel:         make(map[dm.Category][]string, len(dm.Categories)),
		EntryMode:      text(obj["entry_mode"]),
		Recommendation: text(obj["recommendation"]),
	}
	if a.Recommendation == "" {
		a.Recommendation = strings.Join(bullets(obj["recommendations"]), "\n")
	}

	var pestel map[string]json.RawMessage
	if json.Unmarshal(obj["pestel"], &pestel) == nil {
		for k, v := range pestel {
			if c, ok := dm.ParseCategory(k); ok {
				a.Pestel[c] = bullets(v)
			}
		}
	}

	scores := make(map[dm.Category]float64)
	collectScores(obj["scores"], scores, &a.Composite)
	if a.Composite == nil {
		for _, k := range []string{"composite", "overall"} {
			if f, ok := number(obj[k]); ok {
				a.Composite = &f
				break
			}
		}
	}
	if len(scores) > 0 {
		a.Scores = scores
	}

	a.Citations = bullets(obj["citations"])
	if len(a.Citations) == 0 {
		a.Citations = bullets(obj["sources"])
	}
	a.RecentSignals = bullets(obj["recent_signals"])
	a.RiskMitigations = textMap(obj["risk_mitigations"])
	if len(a.RiskMitigations) == 0 {
		a.RiskMitigations = textMap(obj["turnaround_actions"])
	}

	return dm.Structured(country, raw, a)
}

// ParseBrief 解析公司简报。接受纯文本，或带 brief/summary 字段的 JSON 对象。
func ParseBrief(raw string) dm.CompanyBrief {
	b := dm.CompanyBrief{
		GeneratedAt: time.Now(),
		Status:      dm.BriefOK,
		RawText:     raw,
	}
	if obj, ok := decodeObject(raw); ok {
		for _, k := range []string{"brief", "summary", "summary_text"} {
			if s := text(obj[k]); s != "" {
				b.SummaryText = s
				return b
			}
		}
	}
	b.SummaryText = strings.TrimSpace(stripFences(raw))
	return b
}

// stripFences 去掉 ```json ... ``` 代码块标记
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// decodeObject 先整体严格解码，失败后截取第一个 { 到最后一个 } 再试
func decodeObject(raw string) (map[string]json.RawMessage, bool) {
	clean := stripFences(raw)
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(clean), &obj); err == nil && obj != nil {
		return obj, true
	}

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	obj = nil
	if err := json.Unmarshal([]byte(clean[start:end+1]), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func hasAny(obj map[string]json.RawMessage, keys []string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

// text 字符串原样返回，字符串数组按行拼接，其他类型为空
func text(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(v, &s) == nil {
		return strings.TrimSpace(s)
	}
	if list := bullets(v); len(list) > 0 {
		return strings.Join(list, "\n")
	}
	return ""
}

// bullets 接受数组或按换行分隔的字符串，去掉列表符号和空项
func bullets(v json.RawMessage) []string {
	if len(v) == 0 {
		return nil
	}
	var items []json.RawMessage
	if json.Unmarshal(v, &items) == nil {
		var out []string
		for _, item := range items {
			var s string
			if json.Unmarshal(item, &s) != nil {
				s = string(item)
			}
			if s = cleanBullet(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	var s string
	if json.Unmarshal(v, &s) != nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = cleanBullet(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func cleanBullet(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-*• ")
	return strings.TrimSpace(s)
}

// number 接受数字或数字字符串
func number(v json.RawMessage) (float64, bool) {
	if len(v) == 0 || string(v) == "null" {
		return 0, false
	}
	var f float64
	if json.Unmarshal(v, &f) == nil {
		return f, true
	}
	var s string
	if json.Unmarshal(v, &s) != nil {
		return 0, false
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// collectScores 读取评分表，支持 composite/overall 以及嵌套的 dimensions
func collectScores(v json.RawMessage, scores map[dm.Category]float64, composite **float64) {
	var table map[string]json.RawMessage
	if json.Unmarshal(v, &table) != nil {
		return
	}
	// 按键排序，保证 composite 与 overall 同时出现时结果稳定
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		val := table[k]
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "dimensions":
			collectScores(val, scores, composite)
			continue
		case "composite", "overall":
			if f, ok := number(val); ok && *composite == nil {
				*composite = &f
			}
			continue
		}
		if c, ok := dm.ParseCategory(k); ok {
			if f, ok := number(val); ok {
				scores[c] = f
			}
		}
	}
}

// textMap 读取字符串映射，非字符串值按 text 规则转换
func textMap(v json.RawMessage) map[string]string {
	var m map[string]json.RawMessage
	if json.Unmarshal(v, &m) != nil || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, raw := range m {
		if s := text(raw); s != "" {
			out[k] = s
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
