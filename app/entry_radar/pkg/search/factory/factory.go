// Package factory 根据配置创建检索客户端
package factory

import (
	"fmt"

	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/config"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/search"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/searxng"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/tavily"
)

// NewSearcher 根据配置创建搜索实例。未配置 provider 时返回 nil，表示不检索市场信号。
func NewSearcher(cfg config.SearchConfig) (search.Searcher, error) {
	switch cfg.Provider {
	case "":
		return nil, nil

	case search.ProviderTavily:
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Tavily.APIKey), nil

	case search.ProviderSearXNG:
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.SearXNG.BaseURL, cfg.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Provider)
	}
}
