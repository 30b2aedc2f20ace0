package llm

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/logger"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/metrics"
	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/prompt"
)

// ChatModelFactory 根据配置创建聊天模型，测试中可替换
type ChatModelFactory func(ctx context.Context, cfg dm.ModelConfig) (model.BaseChatModel, error)

// NewOpenAIChatModel 创建 OpenAI 兼容的聊天模型
func NewOpenAIChatModel(ctx context.Context, cfg dm.ModelConfig) (model.BaseChatModel, error) {
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.EffectiveTemperature(),
	})
}

// RawResponse 模型的原始回复
type RawResponse struct {
	Text         string
	Model        string
	FinishReason string
	Usage        dm.Usage
	Latency      time.Duration
}

// HealthStatus 连通性检查结果
type HealthStatus struct {
	Reply   string        `json:"reply"`
	Model   string        `json:"model"`
	Latency time.Duration `json:"latency"`
}

// Client 模型客户端。每次调用只尝试一次，不做重试。
type Client struct {
	factory ChatModelFactory
	limiter *rate.Limiter
	timeout time.Duration
}

// Option 客户端选项
type Option func(*Client)

// WithFactory 替换聊天模型工厂
func WithFactory(f ChatModelFactory) Option {
	return func(c *Client) { c.factory = f }
}

// WithLimiter 设置限流器，为 nil 时不限流
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithTimeout 设置单次调用超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient 创建模型客户端
func NewClient(opts ...Option) *Client {
	c := &Client{factory: NewOpenAIChatModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewLimiter 按 RPM/QPS 创建限流器，RPM 未配置时返回 nil
func NewLimiter(qps, rpm int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}
	burst := qps
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

// Send 发送一次提示词并返回原始回复
func (c *Client) Send(ctx context.Context, cfg dm.ModelConfig, p prompt.Prompt) (*RawResponse, error) {
	return c.call(ctx, "send", cfg, p)
}

// HealthCheck 发送最小提示词检查连通性，不影响任何运行结果
func (c *Client) HealthCheck(ctx context.Context, cfg dm.ModelConfig) (*HealthStatus, error) {
	resp, err := c.call(ctx, "health_check", cfg, prompt.HealthProbe())
	if err != nil {
		return nil, err
	}
	return &HealthStatus{
		Reply:   strings.TrimSpace(resp.Text),
		Model:   resp.Model,
		Latency: resp.Latency,
	}, nil
}

func (c *Client) call(ctx context.Context, op string, cfg dm.ModelConfig, p prompt.Prompt) (*RawResponse, error) {
	if !cfg.Configured() {
		metrics.ModelCalls.WithLabelValues(op, metrics.OutcomeConfig).Inc()
		return nil, &ConfigurationError{Reason: "API key is required; set OPENAI_API_KEY or provide one in the configuration panel"}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.ModelCalls.WithLabelValues(op, metrics.OutcomeTransport).Inc()
			return nil, &TransportError{Op: op, Err: err}
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cm, err := c.factory(ctx, cfg)
	if err != nil {
		metrics.ModelCalls.WithLabelValues(op, metrics.OutcomeConfig).Inc()
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: p.System},
		{Role: schema.User, Content: p.User},
	}

	logger.Log.Debugf("调用模型 [%s]: %s", op, cfg)
	start := time.Now()
	resp, err := cm.Generate(ctx, messages)
	latency := time.Since(start)
	metrics.ModelCallDuration.WithLabelValues(op).Observe(latency.Seconds())

	if err == nil && (resp == nil || strings.TrimSpace(resp.Content) == "") {
		err = ErrEmptyResponse
	}
	if err != nil {
		metrics.ModelCalls.WithLabelValues(op, metrics.OutcomeTransport).Inc()
		logger.Log.Warnf("模型调用失败 [%s] (%s): %v", op, latency.Round(time.Millisecond), err)
		return nil, &TransportError{Op: op, Err: err}
	}
	metrics.ModelCalls.WithLabelValues(op, metrics.OutcomeOK).Inc()

	raw := &RawResponse{
		Text:    resp.Content,
		Model:   cfg.Model,
		Latency: latency,
	}
	if meta := resp.ResponseMeta; meta != nil {
		raw.FinishReason = meta.FinishReason
		if meta.Usage != nil {
			raw.Usage = dm.Usage{
				PromptTokens:     meta.Usage.PromptTokens,
				CompletionTokens: meta.Usage.CompletionTokens,
				TotalTokens:      meta.Usage.TotalTokens,
			}
		}
	}
	logger.Log.Debugf("模型调用完成 [%s] (%s, %d tokens)", op, latency.Round(time.Millisecond), raw.Usage.TotalTokens)
	return raw, nil
}
