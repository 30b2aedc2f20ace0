package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/entry_radar/app/dashboard/internal/data"
	"github.com/iWorld-y/entry_radar/app/dashboard/internal/service"
	"github.com/iWorld-y/entry_radar/app/dashboard/internal/usecase"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/engine"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/llm"
)

// ProviderSet 是仪表盘服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Radar providers
	NewRadarConfig,
	NewRadarEngine,
	NewDefaultModelConfig,
	NewModelClient,
	wire.Bind(new(usecase.Runner), new(*engine.Engine)),
	wire.Bind(new(usecase.Prober), new(*llm.Client)),

	// Data providers
	data.NewData,
	data.NewSessionRepo,

	// UseCase providers
	usecase.NewEngagementUseCase,

	// Service providers
	service.NewEngagementService,
)
