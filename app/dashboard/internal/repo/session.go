package repo

import (
	"context"

	"github.com/iWorld-y/entry_radar/app/dashboard/internal/domain"
)

// SessionRepo 会话仓库接口
type SessionRepo interface {
	// Get 获取会话，不存在或已过期时返回 false
	Get(ctx context.Context, id string) (*domain.Session, bool)
	// Save 保存会话并刷新过期时间
	Save(ctx context.Context, s *domain.Session) error
	// Delete 删除会话
	Delete(ctx context.Context, id string)
}
