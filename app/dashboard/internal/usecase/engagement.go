package usecase

import (
	"context"
	"errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/iWorld-y/entry_radar/app/dashboard/internal/domain"
	"github.com/iWorld-y/entry_radar/app/dashboard/internal/repo"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/engine"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/llm"
	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
)

// ErrRunNotFound 当前会话还没有运行结果
var ErrRunNotFound = errors.New("no run for this session yet")

// ErrInvalidTemperature 温度超出 [0, 2]
var ErrInvalidTemperature = errors.New("temperature must be between 0 and 2")

// Runner 执行一次分析
type Runner interface {
	Run(ctx context.Context, req dm.EngagementRequest, cfg dm.ModelConfig, opts engine.RunOptions) (*dm.RunResult, error)
}

// Prober 模型连通性检查
type Prober interface {
	HealthCheck(ctx context.Context, cfg dm.ModelConfig) (*llm.HealthStatus, error)
}

// EngagementUseCase 会话级的分析业务逻辑。默认配置只读，会话覆盖项通过 Merge 生成新值。
type EngagementUseCase struct {
	repo     repo.SessionRepo
	runner   Runner
	prober   Prober
	defaults dm.ModelConfig
	log      *log.Helper
}

// NewEngagementUseCase 创建分析业务逻辑实例
func NewEngagementUseCase(repo repo.SessionRepo, runner Runner, prober Prober, defaults dm.ModelConfig, logger log.Logger) *EngagementUseCase {
	return &EngagementUseCase{
		repo:     repo,
		runner:   runner,
		prober:   prober,
		defaults: defaults,
		log:      log.NewHelper(logger),
	}
}

// NewSessionID 生成新的会话 ID
func (uc *EngagementUseCase) NewSessionID() string {
	return uuid.NewString()
}

func (uc *EngagementUseCase) session(ctx context.Context, id string) *domain.Session {
	if s, ok := uc.repo.Get(ctx, id); ok {
		return s
	}
	return &domain.Session{ID: id}
}

// EffectiveConfig 默认配置叠加会话覆盖项
func (uc *EngagementUseCase) EffectiveConfig(ctx context.Context, sessionID string) dm.ModelConfig {
	return uc.defaults.Merge(uc.session(ctx, sessionID).Overrides)
}

// UpdateConfig 保存会话覆盖项，空字段沿用默认值
func (uc *EngagementUseCase) UpdateConfig(ctx context.Context, sessionID string, override dm.ModelConfig) (dm.ModelConfig, error) {
	if t := override.Temperature; t != nil && (*t < 0 || *t > 2) {
		return dm.ModelConfig{}, ErrInvalidTemperature
	}
	s := uc.session(ctx, sessionID)
	s.Overrides = dm.ModelConfig{}.Merge(override)
	if err := uc.repo.Save(ctx, s); err != nil {
		return dm.ModelConfig{}, err
	}
	cfg := uc.defaults.Merge(s.Overrides)
	uc.log.WithContext(ctx).Infof("session %s config updated: %s", sessionID, cfg)
	return cfg, nil
}

// HealthCheck 使用会话配置检查模型连通性，不影响运行结果
func (uc *EngagementUseCase) HealthCheck(ctx context.Context, sessionID string) (*llm.HealthStatus, error) {
	return uc.prober.HealthCheck(ctx, uc.EffectiveConfig(ctx, sessionID))
}

// Run 执行分析并保存为会话的最近一次结果
func (uc *EngagementUseCase) Run(ctx context.Context, sessionID string, req dm.EngagementRequest) (*dm.RunResult, error) {
	s := uc.session(ctx, sessionID)
	cfg := uc.defaults.Merge(s.Overrides)

	res, err := uc.runner.Run(ctx, req, cfg, engine.RunOptions{
		ProgressCallback: func(status string, progress int) {
			uc.log.WithContext(ctx).Debugf("session %s: [%d%%] %s", sessionID, progress, status)
		},
	})
	if err != nil {
		return nil, err
	}

	// 运行期间会话配置可能已被修改，只更新 Latest
	s = uc.session(ctx, sessionID)
	s.Latest = res
	if err := uc.repo.Save(ctx, s); err != nil {
		return nil, err
	}
	return res, nil
}

// Latest 会话最近一次运行结果
func (uc *EngagementUseCase) Latest(ctx context.Context, sessionID string) (*dm.RunResult, error) {
	s, ok := uc.repo.Get(ctx, sessionID)
	if !ok || s.Latest == nil {
		return nil, ErrRunNotFound
	}
	return s.Latest, nil
}
