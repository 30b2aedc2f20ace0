package domain

import (
	"time"

	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
)

// Session 浏览器会话：模型配置覆盖项与最近一次运行结果，仅保存在内存中
type Session struct {
	ID        string
	Overrides dm.ModelConfig
	Latest    *dm.RunResult
	UpdatedAt time.Time
}
