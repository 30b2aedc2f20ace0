package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
)

var acme = dm.EngagementRequest{
	Company:    "Acme Co",
	Industry:   "Retail",
	Markets:    []string{"Germany", "Brazil"},
	Priorities: []string{"growth"},
}

func TestCompanyBrief(t *testing.T) {
	p := CompanyBrief(acme)

	assert.NotEmpty(t, p.System)
	assert.Contains(t, p.User, "Company: Acme Co")
	assert.Contains(t, p.User, "Industry: Retail")
	assert.Contains(t, p.User, "Strategic priorities: growth")
	assert.Contains(t, p.User, "Germany, Brazil")
	assert.NotContains(t, p.User, "Use case")

	withUseCase := acme
	withUseCase.UseCase = "Omnichannel expansion"
	assert.Contains(t, CompanyBrief(withUseCase).User, "Use case: Omnichannel expansion")
}

func TestMarketSnapshot(t *testing.T) {
	p := MarketSnapshot(acme, "Brazil", "Acme sells home goods.", nil)

	assert.Contains(t, p.User, "Market: Brazil")
	assert.Contains(t, p.User, "Company brief:\nAcme sells home goods.")
	for _, key := range []string{`"pestel"`, `"scores"`, `"recommendation"`, `"citations"`, `"composite"`} {
		assert.Contains(t, p.User, key)
	}
	for _, c := range dm.Categories {
		assert.Contains(t, p.User, `"`+string(c)+`"`)
	}
	assert.NotContains(t, p.User, "Recent signals for this market")
}

func TestMarketSnapshot_NoBriefWithSignals(t *testing.T) {
	p := MarketSnapshot(dm.EngagementRequest{Company: "Acme", Industry: "Retail"}, "Japan", "  ", []dm.Article{
		{Title: "Retail sales up", Link: "https://example.com/a", PubDate: "2025-01-02", Content: "Sales grew 3%."},
	})

	assert.NotContains(t, p.User, "Company brief")
	assert.Contains(t, p.User, "1. Retail sales up (https://example.com/a) [2025-01-02]")
	assert.Contains(t, p.User, "Sales grew 3%.")
	assert.Contains(t, p.User, "Priorities: general market fit")
}

func TestPromptsAreDeterministic(t *testing.T) {
	assert.Equal(t, MarketSnapshot(acme, "Germany", "b", nil), MarketSnapshot(acme, "Germany", "b", nil))
	assert.Equal(t, CompanyBrief(acme), CompanyBrief(acme))
	assert.Contains(t, HealthProbe().User, "READY")
}
