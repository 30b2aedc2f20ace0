// Package engine 执行一次完整的分析流程：公司简报 -> 各市场 PESTEL -> RunResult
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/config"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/llm"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/logger"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/metrics"
	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/parser"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/prompt"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/search"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/search/factory"
)

// Engine 核心处理引擎
type Engine struct {
	client        *llm.Client
	signals       *search.Collector
	fallbackBrief bool
	workers       int
	now           func() time.Time
}

// Option 引擎选项
type Option func(*Engine)

// WithSignals 设置市场信号收集器，为 nil 时不检索
func WithSignals(c *search.Collector) Option {
	return func(e *Engine) { e.signals = c }
}

// WithFallbackBrief 简报调用失败时是否使用兜底简报
func WithFallbackBrief(on bool) Option {
	return func(e *Engine) { e.fallbackBrief = on }
}

// WithWorkers 同时分析的市场数量
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// New 创建引擎实例
func New(client *llm.Client, opts ...Option) *Engine {
	e := &Engine{client: client, workers: 1, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e
}

// NewEngine 根据配置创建引擎：模型客户端、限流器与可选的检索客户端
func NewEngine(cfg *config.Config) (*Engine, error) {
	client := llm.NewClient(
		llm.WithLimiter(llm.NewLimiter(cfg.Concurrency.QPS, cfg.Concurrency.RPM)),
		llm.WithTimeout(time.Duration(cfg.LLM.Timeout)*time.Second),
	)

	searcher, err := factory.NewSearcher(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}

	return New(client,
		WithSignals(search.NewCollector(searcher, cfg.Search.MaxResults)),
		WithFallbackBrief(cfg.Report.FallbackBrief),
		WithWorkers(cfg.Concurrency.Markets),
	), nil
}

// Client 返回模型客户端，用于健康检查
func (e *Engine) Client() *llm.Client {
	return e.client
}

// RunOptions 运行选项
type RunOptions struct {
	ProgressCallback func(status string, progress int)
}

func (o RunOptions) progress(status string, p int) {
	if o.ProgressCallback != nil {
		o.ProgressCallback(status, p)
	}
}

// Run 执行一次分析。只有请求校验失败、模型未配置或 ctx 被取消时返回错误；
// 单个市场的调用失败只会让该市场标记为 failed。
func (e *Engine) Run(ctx context.Context, req dm.EngagementRequest, cfg dm.ModelConfig, opts RunOptions) (*dm.RunResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultModel
	}
	if !cfg.Configured() {
		metrics.Runs.WithLabelValues(metrics.OutcomeConfig).Inc()
		return nil, &llm.ConfigurationError{Reason: "API key is required; set OPENAI_API_KEY or provide one in the configuration panel"}
	}

	result := &dm.RunResult{
		ID:        uuid.NewString(),
		Request:   req,
		Model:     cfg.Model,
		StartedAt: e.now(),
	}
	logger.Log.Infof("开始分析 [%s]，行业 [%s]，共 %d 个市场 (%s)", req.Company, req.Industry, len(req.Markets), cfg)
	opts.progress("starting", 0)

	brief, err := e.brief(ctx, req, cfg)
	if err != nil {
		metrics.Runs.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}
	result.Brief = brief.CompanyBrief
	result.Usage.Add(brief.usage)
	opts.progress("company brief", 10)

	markets, err := e.markets(ctx, req, cfg, result.Brief.Context(), opts)
	if err != nil {
		metrics.Runs.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}
	result.Markets = markets
	for _, m := range markets {
		result.Usage.Add(m.Usage)
	}
	result.FinishedAt = e.now()

	metrics.Runs.WithLabelValues(metrics.OutcomeOK).Inc()
	logger.Log.Infof("分析完成 [%s]: structured=%d raw=%d failed=%d, 耗时 %s",
		req.Company,
		result.Count(dm.InsightStructured), result.Count(dm.InsightRaw), result.Count(dm.InsightFailed),
		result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	opts.progress("completed", 100)
	return result, nil
}

type briefResult struct {
	dm.CompanyBrief
	usage dm.Usage
}

func (e *Engine) brief(ctx context.Context, req dm.EngagementRequest, cfg dm.ModelConfig) (briefResult, error) {
	resp, err := e.client.Send(ctx, cfg, prompt.CompanyBrief(req))
	if err == nil {
		return briefResult{CompanyBrief: parser.ParseBrief(resp.Text), usage: resp.Usage}, nil
	}
	if fatal(ctx, err) {
		return briefResult{}, err
	}

	logger.Log.Warnf("公司简报生成失败 [%s]: %v", req.Company, err)
	if e.fallbackBrief {
		return briefResult{CompanyBrief: dm.CompanyBrief{
			SummaryText: FallbackBrief(req),
			GeneratedAt: e.now(),
			Status:      dm.BriefFallback,
			Error:       err.Error(),
		}}, nil
	}
	return briefResult{CompanyBrief: dm.CompanyBrief{
		GeneratedAt: e.now(),
		Status:      dm.BriefFailed,
		Error:       err.Error(),
	}}, nil
}

// markets 按请求顺序保存结果，最多 workers 个市场同时调用
func (e *Engine) markets(ctx context.Context, req dm.EngagementRequest, cfg dm.ModelConfig, brief string, opts RunOptions) ([]dm.MarketInsight, error) {
	results := make([]dm.MarketInsight, len(req.Markets))

	var mu sync.Mutex
	done := 0
	total := len(req.Markets)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, country := range req.Markets {
		g.Go(func() error {
			insight, err := e.market(gctx, req, cfg, country, brief)
			if err != nil {
				return err
			}
			results[i] = insight
			metrics.MarketInsights.WithLabelValues(string(insight.Status)).Inc()

			mu.Lock()
			done++
			opts.progress(fmt.Sprintf("processed market: %s", country), 10+done*85/total)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) market(ctx context.Context, req dm.EngagementRequest, cfg dm.ModelConfig, country, brief string) (dm.MarketInsight, error) {
	var signals []dm.Article
	if e.signals != nil {
		arts, err := e.signals.MarketSignals(ctx, country, req.Industry)
		if err != nil {
			logger.Log.Warnf("市场信号检索失败 [%s]: %v", country, err)
		} else {
			signals = arts
		}
	}

	resp, err := e.client.Send(ctx, cfg, prompt.MarketSnapshot(req, country, brief, signals))
	if err != nil {
		if fatal(ctx, err) {
			return dm.MarketInsight{}, err
		}
		logger.Log.Errorf("市场分析失败 [%s]: %v", country, err)
		insight := dm.Failed(country, err)
		insight.Signals = signals
		return insight, nil
	}

	insight := parser.ParseMarket(country, resp.Text)
	if insight.Status == dm.InsightRaw {
		logger.Log.Warnf("市场 [%s] 的回复不是有效 JSON，保留原文", country)
	}
	insight.Signals = signals
	insight.Usage = resp.Usage
	return insight, nil
}

// fatal 配置错误与整个运行被取消时中止运行
func fatal(ctx context.Context, err error) bool {
	return llm.IsConfigurationError(err) || ctx.Err() != nil
}

func outcome(err error) string {
	if llm.IsConfigurationError(err) {
		return metrics.OutcomeConfig
	}
	return metrics.OutcomeCanceled
}

// FallbackBrief 根据请求本身生成的确定性简报，不含模型输出
func FallbackBrief(req dm.EngagementRequest) string {
	priorities := "general market fit"
	if len(req.Priorities) > 0 {
		priorities = strings.Join(req.Priorities, ", ")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s operates in the %s industry and is evaluating entry into %s.", req.Company, req.Industry, strings.Join(req.Markets, ", "))
	if req.UseCase != "" {
		fmt.Fprintf(&sb, " Use case: %s.", req.UseCase)
	}
	fmt.Fprintf(&sb, " Strategic priorities: %s.", priorities)
	return sb.String()
}
