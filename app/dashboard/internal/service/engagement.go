package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"strings"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/entry_radar/app/dashboard/internal/conf"
	"github.com/iWorld-y/entry_radar/app/dashboard/internal/usecase"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/llm"
	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/report"
)

// SessionCookie 会话 cookie 名称
const SessionCookie = "entry_radar_session"

// 错误原因
const (
	ReasonModelNotConfigured = "MODEL_NOT_CONFIGURED"
	ReasonInvalidEngagement  = "INVALID_ENGAGEMENT"
	ReasonInvalidConfig      = "INVALID_CONFIG"
	ReasonRunNotFound        = "RUN_NOT_FOUND"
	ReasonModelUnavailable   = "MODEL_UNAVAILABLE"
)

// EngagementService 仪表盘的 HTTP 接口
type EngagementService struct {
	uc           *usecase.EngagementUseCase
	cookieSecure bool
	log          *log.Helper
}

// NewEngagementService 创建服务实例
func NewEngagementService(uc *usecase.EngagementUseCase, c *conf.Session, logger log.Logger) *EngagementService {
	return &EngagementService{
		uc:           uc,
		cookieSecure: c != nil && c.CookieSecure,
		log:          log.NewHelper(logger),
	}
}

// StringList 接受 JSON 数组，或按逗号/换行分隔的字符串
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = dm.ParsePriorities(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// RunRequest POST /api/v1/runs 请求体
type RunRequest struct {
	Company    string     `json:"company"`
	Industry   string     `json:"industry"`
	Markets    StringList `json:"markets"`
	Priorities StringList `json:"priorities"`
	UseCase    string     `json:"use_case"`
}

// Engagement 转为分析请求，市场按名称去重
func (r *RunRequest) Engagement() dm.EngagementRequest {
	return dm.EngagementRequest{
		Company:    r.Company,
		Industry:   r.Industry,
		Markets:    dm.DedupeMarkets(r.Markets),
		Priorities: r.Priorities,
		UseCase:    r.UseCase,
	}
}

// ConfigRequest PUT /api/v1/config 请求体，空字段沿用默认值
type ConfigRequest struct {
	APIKey      string   `json:"api_key"`
	BaseURL     string   `json:"base_url"`
	Model       string   `json:"model"`
	Temperature *float32 `json:"temperature"`
}

// ConfigReply 脱敏后的有效配置
type ConfigReply struct {
	Model              string   `json:"model"`
	BaseURL            string   `json:"base_url"`
	Temperature        *float32 `json:"temperature"`
	TemperatureApplied bool     `json:"temperature_applied"`
	APIKey             string   `json:"api_key"`
	Configured         bool     `json:"configured"`
}

func newConfigReply(c dm.ModelConfig) *ConfigReply {
	return &ConfigReply{
		Model:              c.Model,
		BaseURL:            c.BaseURL,
		Temperature:        c.Temperature,
		TemperatureApplied: c.EffectiveTemperature() != nil,
		APIKey:             c.RedactedKey(),
		Configured:         c.Configured(),
	}
}

// HealthReply POST /api/v1/health 响应
type HealthReply struct {
	Reply     string `json:"reply"`
	Model     string `json:"model"`
	LatencyMs int64  `json:"latency_ms"`
}

// RegisterEngagementHTTPServer 注册仪表盘 API 路由
func RegisterEngagementHTTPServer(srv *http.Server, s *EngagementService) {
	r := srv.Route("/api/v1")
	r.GET("/config", s.GetConfig)
	r.PUT("/config", s.UpdateConfig)
	r.POST("/health", s.HealthCheck)
	r.POST("/runs", s.CreateRun)
	r.GET("/runs/latest", s.LatestRun)
	r.GET("/runs/latest/export", s.ExportLatest)
}

// sessionID 读取会话 cookie，不存在时签发新的
func (s *EngagementService) sessionID(ctx http.Context) string {
	if c, err := ctx.Request().Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := s.uc.NewSessionID()
	nethttp.SetCookie(ctx.Response(), &nethttp.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: nethttp.SameSiteLaxMode,
	})
	return id
}

// handle 让处理函数经过服务端中间件
func handle[T any](ctx http.Context, in T, fn func(context.Context, T) (any, error)) error {
	h := ctx.Middleware(func(c context.Context, req any) (any, error) {
		return fn(c, req.(T))
	})
	out, err := h(ctx, in)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, out)
}

// GetConfig GET /api/v1/config
func (s *EngagementService) GetConfig(ctx http.Context) error {
	sid := s.sessionID(ctx)
	return handle(ctx, sid, func(c context.Context, sid string) (any, error) {
		return newConfigReply(s.uc.EffectiveConfig(c, sid)), nil
	})
}

// UpdateConfig PUT /api/v1/config
func (s *EngagementService) UpdateConfig(ctx http.Context) error {
	var in ConfigRequest
	if err := ctx.Bind(&in); err != nil {
		return kerrors.BadRequest(ReasonInvalidConfig, err.Error())
	}
	sid := s.sessionID(ctx)
	return handle(ctx, &in, func(c context.Context, in *ConfigRequest) (any, error) {
		cfg, err := s.uc.UpdateConfig(c, sid, dm.ModelConfig{
			APIKey:      in.APIKey,
			BaseURL:     in.BaseURL,
			Model:       in.Model,
			Temperature: in.Temperature,
		})
		if err != nil {
			return nil, s.toError(err)
		}
		return newConfigReply(cfg), nil
	})
}

// HealthCheck POST /api/v1/health
func (s *EngagementService) HealthCheck(ctx http.Context) error {
	sid := s.sessionID(ctx)
	return handle(ctx, sid, func(c context.Context, sid string) (any, error) {
		st, err := s.uc.HealthCheck(c, sid)
		if err != nil {
			return nil, s.toError(err)
		}
		return &HealthReply{Reply: st.Reply, Model: st.Model, LatencyMs: st.Latency.Milliseconds()}, nil
	})
}

// CreateRun POST /api/v1/runs
func (s *EngagementService) CreateRun(ctx http.Context) error {
	var in RunRequest
	if err := ctx.Bind(&in); err != nil {
		return kerrors.BadRequest(ReasonInvalidEngagement, err.Error())
	}
	sid := s.sessionID(ctx)
	return handle(ctx, &in, func(c context.Context, in *RunRequest) (any, error) {
		res, err := s.uc.Run(c, sid, in.Engagement())
		if err != nil {
			return nil, s.toError(err)
		}
		v := report.BuildView(res)
		return &v, nil
	})
}

// LatestRun GET /api/v1/runs/latest
func (s *EngagementService) LatestRun(ctx http.Context) error {
	sid := s.sessionID(ctx)
	return handle(ctx, sid, func(c context.Context, sid string) (any, error) {
		res, err := s.uc.Latest(c, sid)
		if err != nil {
			return nil, s.toError(err)
		}
		v := report.BuildView(res)
		return &v, nil
	})
}

// ExportLatest GET /api/v1/runs/latest/export?format=md|html
func (s *EngagementService) ExportLatest(ctx http.Context) error {
	sid := s.sessionID(ctx)
	res, err := s.uc.Latest(ctx, sid)
	if err != nil {
		return s.toError(err)
	}
	v := report.BuildView(res)

	var buf bytes.Buffer
	var name, contentType string
	switch strings.ToLower(ctx.Query().Get("format")) {
	case "", "md", "markdown":
		err = report.RenderMarkdown(&buf, v)
		name, contentType = report.MarkdownFile, "text/markdown; charset=utf-8"
	case "html":
		err = report.RenderHTML(&buf, v)
		name, contentType = report.HTMLFile, "text/html; charset=utf-8"
	default:
		return kerrors.BadRequest("INVALID_FORMAT", "format must be md or html")
	}
	if err != nil {
		return kerrors.InternalServer("EXPORT_FAILED", err.Error())
	}

	ctx.Response().Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	return ctx.Blob(nethttp.StatusOK, contentType, buf.Bytes())
}

// toError 把业务错误映射为 kratos 错误
func (s *EngagementService) toError(err error) error {
	switch {
	case llm.IsConfigurationError(err):
		return kerrors.BadRequest(ReasonModelNotConfigured, err.Error())
	case errors.Is(err, dm.ErrInvalidEngagement):
		return kerrors.BadRequest(ReasonInvalidEngagement, err.Error())
	case errors.Is(err, usecase.ErrInvalidTemperature):
		return kerrors.BadRequest(ReasonInvalidConfig, err.Error())
	case errors.Is(err, usecase.ErrRunNotFound):
		return kerrors.NotFound(ReasonRunNotFound, err.Error())
	case llm.IsTransportError(err):
		return kerrors.New(nethttp.StatusBadGateway, ReasonModelUnavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return kerrors.New(499, "CANCELED", err.Error())
	default:
		s.log.Errorf("unexpected error: %v", err)
		return kerrors.InternalServer("INTERNAL", err.Error())
	}
}
