package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32(v float32) *float32 { return &v }
func f64(v float64) *float64 { return &v }

func TestParseMarkets(t *testing.T) {
	got := ParseMarkets(" Germany, Brazil ,, germany,Japan , ")
	assert.Equal(t, []string{"Germany", "Brazil", "Japan"}, got)
	assert.Empty(t, ParseMarkets(" , ,"))
}

func TestParsePriorities(t *testing.T) {
	got := ParsePriorities("Growth\nRegulation readiness, cost\r\n\n")
	assert.Equal(t, []string{"Growth", "Regulation readiness", "cost"}, got)
}

func TestEngagementRequest_Validate(t *testing.T) {
	ok := EngagementRequest{Company: "Acme Co", Industry: "Retail", Markets: []string{"Germany"}}
	require.NoError(t, ok.Validate())

	cases := map[string]EngagementRequest{
		"no company":   {Industry: "Retail", Markets: []string{"Germany"}},
		"no industry":  {Company: "Acme", Markets: []string{"Germany"}},
		"no markets":   {Company: "Acme", Industry: "Retail"},
		"empty market": {Company: "Acme", Industry: "Retail", Markets: []string{"Germany", ""}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			err := req.Normalize().Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidEngagement))
		})
	}
}

func TestEngagementRequest_NormalizeKeepsDuplicates(t *testing.T) {
	req := EngagementRequest{
		Company:    "  Acme ",
		Industry:   "Retail",
		Markets:    []string{" Germany", "Germany "},
		Priorities: []string{" growth ", ""},
	}.Normalize()

	assert.Equal(t, "Acme", req.Company)
	assert.Equal(t, []string{"Germany", "Germany"}, req.Markets)
	assert.Equal(t, []string{"growth"}, req.Priorities)
}

func TestModelConfig_EffectiveTemperature(t *testing.T) {
	assert.Nil(t, ModelConfig{Model: "gpt-4o"}.EffectiveTemperature())
	assert.Nil(t, ModelConfig{Model: "gpt-5-nano", Temperature: f32(0.3)}.EffectiveTemperature())
	assert.Nil(t, ModelConfig{Model: "o3-mini", Temperature: f32(0.3)}.EffectiveTemperature())

	got := ModelConfig{Model: "gpt-4o-mini", Temperature: f32(0.3)}.EffectiveTemperature()
	require.NotNil(t, got)
	assert.InDelta(t, 0.3, *got, 1e-6)
}

func TestModelConfig_Merge(t *testing.T) {
	base := ModelConfig{APIKey: "env-key", Model: "gpt-5-nano", Temperature: f32(0.2)}
	merged := base.Merge(ModelConfig{Model: "gpt-4o", BaseURL: "http://proxy/v1"})

	assert.Equal(t, "env-key", merged.APIKey)
	assert.Equal(t, "gpt-4o", merged.Model)
	assert.Equal(t, "http://proxy/v1", merged.BaseURL)
	assert.Equal(t, "gpt-5-nano", base.Model, "base must not change")

	*merged.Temperature = 0.9
	assert.InDelta(t, 0.2, *base.Temperature, 1e-6, "merge must not alias temperature")
}

func TestModelConfig_StringHidesKey(t *testing.T) {
	c := ModelConfig{APIKey: "sk-1234567890abcd", Model: "gpt-4o"}
	s := c.String()
	assert.False(t, strings.Contains(s, "1234567890"))
	assert.Contains(t, s, "sk-****abcd")
	assert.Equal(t, "****", ModelConfig{APIKey: "short"}.RedactedKey())
	assert.False(t, ModelConfig{APIKey: "   "}.Configured())
}

func TestRunResult_BestMarket(t *testing.T) {
	r := &RunResult{Markets: []MarketInsight{
		Structured("Germany", "{}", &MarketAnalysis{Composite: f64(62)}),
		Raw("France", "not json"),
		Structured("Brazil", "{}", &MarketAnalysis{Composite: f64(71)}),
		Failed("Japan", errors.New("boom")),
		Structured("Spain", "{}", &MarketAnalysis{}),
	}}

	best := r.BestMarket()
	require.NotNil(t, best)
	assert.Equal(t, "Brazil", best.Country)
	assert.Equal(t, 3, r.Count(InsightStructured))
	assert.Equal(t, 1, r.Count(InsightFailed))

	assert.Nil(t, (&RunResult{Markets: []MarketInsight{Raw("X", "y")}}).BestMarket())
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory(" technological ")
	assert.True(t, ok)
	assert.Equal(t, Technological, c)

	_, ok = ParseCategory("Cultural")
	assert.False(t, ok)
}
