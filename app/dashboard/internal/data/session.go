package data

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/patrickmn/go-cache"

	"github.com/iWorld-y/entry_radar/app/dashboard/internal/domain"
	"github.com/iWorld-y/entry_radar/app/dashboard/internal/repo"
)

type sessionRepo struct {
	data *Data
	log  *log.Helper
}

// NewSessionRepo 基于 go-cache 的会话仓库
func NewSessionRepo(data *Data, logger log.Logger) repo.SessionRepo {
	return &sessionRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Get 返回副本，调用方修改后需要 Save
func (r *sessionRepo) Get(_ context.Context, id string) (*domain.Session, bool) {
	x, found := r.data.sessions.Get(id)
	if !found {
		return nil, false
	}
	s := x.(domain.Session)
	return &s, true
}

func (r *sessionRepo) Save(_ context.Context, s *domain.Session) error {
	s.UpdatedAt = time.Now()
	r.data.sessions.Set(s.ID, *s, cache.DefaultExpiration)
	r.log.Debugf("session saved: %s", s.ID)
	return nil
}

func (r *sessionRepo) Delete(_ context.Context, id string) {
	r.data.sessions.Delete(id)
}
