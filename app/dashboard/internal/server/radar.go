package server

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/entry_radar/app/dashboard/internal/conf"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/config"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/engine"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/llm"
	erLogger "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/logger"
	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
)

// NewRadarConfig 将 internal/conf.Radar 转换为 pkg/config.Config，并叠加 .env 与环境变量
func NewRadarConfig(c *conf.Radar) (*config.Config, error) {
	cfg := &config.Config{}
	if c != nil {
		if c.Llm != nil {
			cfg.LLM = config.LLMConfig{
				BaseURL:     c.Llm.BaseUrl,
				APIKey:      c.Llm.ApiKey,
				Model:       c.Llm.Model,
				Temperature: c.Llm.Temperature,
				Timeout:     int(c.Llm.Timeout),
			}
		}
		if c.Search != nil {
			cfg.Search.Provider = c.Search.Provider
			cfg.Search.MaxResults = int(c.Search.MaxResults)
			if c.Search.Tavily != nil {
				cfg.Search.Tavily.APIKey = c.Search.Tavily.ApiKey
			}
			if c.Search.Searxng != nil {
				cfg.Search.SearXNG = config.SearXNGConfig{
					BaseURL: c.Search.Searxng.BaseUrl,
					Timeout: int(c.Search.Searxng.Timeout),
				}
			}
		}
		if c.Log != nil {
			cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
		}
		if c.Concurrency != nil {
			cfg.Concurrency = config.ConcurrencyConfig{
				QPS:     int(c.Concurrency.Qps),
				RPM:     int(c.Concurrency.Rpm),
				Markets: int(c.Concurrency.Markets),
			}
		}
		if c.Report != nil {
			cfg.Report.FallbackBrief = c.Report.FallbackBrief
		}
	}

	config.LoadDotEnv()
	if err := config.ApplyEnv(&cfg.LLM); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// NewRadarEngine 初始化 entry_radar 引擎
func NewRadarEngine(cfg *config.Config, logger log.Logger) (*engine.Engine, func(), error) {
	helper := log.NewHelper(logger)

	if err := erLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		helper.Errorf("Failed to init entry_radar logger: %v", err)
		_ = erLogger.InitLogger("info", "") // 降级处理
	}

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		helper.Errorf("Failed to init engine: %v", err)
		return nil, nil, err
	}

	mc := NewDefaultModelConfig(cfg)
	if !mc.Configured() {
		helper.Warn("OPENAI_API_KEY is not set; runs will fail until a key is provided in the configuration panel")
	}
	helper.Infof("entry_radar engine ready: %s", mc)

	cleanup := func() {
		helper.Info("Cleaning up entry_radar engine")
	}
	return eng, cleanup, nil
}

// NewDefaultModelConfig 进程级默认模型配置，会话只能在其之上叠加覆盖项
func NewDefaultModelConfig(cfg *config.Config) dm.ModelConfig {
	return cfg.LLM.ModelConfig()
}

// NewModelClient 引擎使用的模型客户端，用于健康检查
func NewModelClient(e *engine.Engine) *llm.Client {
	return e.Client()
}
