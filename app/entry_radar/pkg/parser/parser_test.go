package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
)

const germanyReply = "```json\n" + `{
  "summary": "Large, mature retail market.",
  "pestel": {
    "Political": ["Stable coalition government"],
    "Economic": "- Slow GDP growth\n- High purchasing power",
    "social": ["Ageing population"],
    "Technological": [],
    "Environmental": ["Packaging law"],
    "Legal": ["Strict consumer protection"],
    "Other": ["ignored"]
  },
  "scores": {"Political": 80, "Economic": "65", "Social": "n/a", "composite": 72},
  "recommendation": "Enter via e-commerce partnership.",
  "entry_mode": "partnership",
  "citations": ["Destatis 2024"],
  "recent_signals": ["Retail sales up 1.2%"],
  "risk_mitigations": {"regulation": "Hire local counsel"},
  "unexpected": true
}` + "\n```"

func TestParseMarket_Structured(t *testing.T) {
	mi := ParseMarket("Germany", germanyReply)

	require.Equal(t, dm.InsightStructured, mi.Status)
	require.NotNil(t, mi.Analysis)
	assert.Equal(t, "Germany", mi.Country)
	assert.Equal(t, germanyReply, mi.RawText)

	a := mi.Analysis
	assert.Equal(t, "Large, mature retail market.", a.Summary)
	assert.Equal(t, []string{"Stable coalition government"}, a.Pestel[dm.Political])
	assert.Equal(t, []string{"Slow GDP growth", "High purchasing power"}, a.Pestel[dm.Economic])
	assert.Equal(t, []string{"Ageing population"}, a.Pestel[dm.Social])
	assert.Empty(t, a.Pestel[dm.Technological])
	assert.Len(t, a.Pestel, 6)

	assert.Equal(t, map[dm.Category]float64{dm.Political: 80, dm.Economic: 65}, a.Scores)
	require.NotNil(t, a.Composite)
	assert.Equal(t, 72.0, *a.Composite)

	assert.Equal(t, "Enter via e-commerce partnership.", a.Recommendation)
	assert.Equal(t, "partnership", a.EntryMode)
	assert.Equal(t, []string{"Destatis 2024"}, a.Citations)
	assert.Equal(t, []string{"Retail sales up 1.2%"}, a.RecentSignals)
	assert.Equal(t, map[string]string{"regulation": "Hire local counsel"}, a.RiskMitigations)
}

func TestParseMarket_Aliases(t *testing.T) {
	raw := `Here is the analysis you asked for:
{"summary": "ok", "recommendations": ["Pilot in Lagos", "Partner with a distributor"],
 "sources": "IMF\nWorld Bank",
 "scores": {"dimensions": {"Legal": 40, "Economic": 55.5}, "overall": "60"},
 "turnaround_actions": {"fx": "Hedge currency exposure"}}
Let me know if you need more.`

	mi := ParseMarket("Nigeria", raw)

	require.Equal(t, dm.InsightStructured, mi.Status)
	a := mi.Analysis
	assert.Equal(t, "Pilot in Lagos\nPartner with a distributor", a.Recommendation)
	assert.Equal(t, []string{"IMF", "World Bank"}, a.Citations)
	assert.Equal(t, map[dm.Category]float64{dm.Legal: 40, dm.Economic: 55.5}, a.Scores)
	require.NotNil(t, a.Composite)
	assert.Equal(t, 60.0, *a.Composite)
	assert.Equal(t, "Hedge currency exposure", a.RiskMitigations["fx"])
	assert.Equal(t, raw, mi.RawText)
}

func TestParseMarket_NoScores(t *testing.T) {
	mi := ParseMarket("Japan", `{"summary": "s", "pestel": {"Legal": ["x"]}}`)

	require.Equal(t, dm.InsightStructured, mi.Status)
	assert.Nil(t, mi.Analysis.Scores)
	assert.Nil(t, mi.Analysis.Composite)
	assert.False(t, mi.Analysis.HasScores())
}

func TestParseMarket_DegradesToRaw(t *testing.T) {
	cases := map[string]string{
		"malformed":   `{"summary": "cut off mid`,
		"prose":       "Brazil is a large market with many opportunities.",
		"wrong shape": `{"foo": 1, "bar": [2]}`,
		"empty":       "",
		"null":        "null",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			mi := ParseMarket("Brazil", raw)
			assert.Equal(t, dm.InsightRaw, mi.Status)
			assert.Nil(t, mi.Analysis)
			assert.Equal(t, raw, mi.RawText)
			assert.Empty(t, mi.Error)
		})
	}
}

func TestParseBrief(t *testing.T) {
	b := ParseBrief("  Acme Co sells home goods across Europe.\n")
	assert.Equal(t, dm.BriefOK, b.Status)
	assert.Equal(t, "Acme Co sells home goods across Europe.", b.SummaryText)
	assert.Equal(t, "  Acme Co sells home goods across Europe.\n", b.RawText)
	assert.False(t, b.GeneratedAt.IsZero())

	b = ParseBrief("```json\n{\"brief\": \"Acme is a retailer.\"}\n```")
	assert.Equal(t, "Acme is a retailer.", b.SummaryText)

	b = ParseBrief(`{"summary": "Acme summary"}`)
	assert.Equal(t, "Acme summary", b.SummaryText)

	b = ParseBrief(`{"other": 1}`)
	assert.Equal(t, `{"other": 1}`, b.SummaryText)
}

func TestBullets(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, bullets([]byte(`["- a", "  ", "* b"]`)))
	assert.Equal(t, []string{"one", "two"}, bullets([]byte(`"• one\n\ntwo"`)))
	assert.Equal(t, []string{"3"}, bullets([]byte(`[3]`)))
	assert.Nil(t, bullets([]byte(`{"a": 1}`)))
	assert.Nil(t, bullets(nil))
}

func TestNumber(t *testing.T) {
	f, ok := number([]byte(`42`))
	assert.True(t, ok)
	assert.Equal(t, 42.0, f)

	f, ok = number([]byte(`" 70% "`))
	assert.True(t, ok)
	assert.Equal(t, 70.0, f)

	_, ok = number([]byte(`"high"`))
	assert.False(t, ok)
	_, ok = number([]byte(`null`))
	assert.False(t, ok)
}
