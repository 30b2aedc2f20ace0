package data

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/patrickmn/go-cache"

	"github.com/iWorld-y/entry_radar/app/dashboard/internal/conf"
)

const (
	defaultSessionTTL = time.Hour
	defaultCleanup    = 10 * time.Minute
)

// Data 进程内的数据资源
type Data struct {
	sessions *cache.Cache
}

// NewData 创建会话缓存
func NewData(c *conf.Session, logger log.Logger) (*Data, func(), error) {
	ttl, cleanupInterval := defaultSessionTTL, defaultCleanup
	if c != nil {
		if d, err := time.ParseDuration(c.Ttl); err == nil && d > 0 {
			ttl = d
		}
		if d, err := time.ParseDuration(c.CleanupInterval); err == nil && d > 0 {
			cleanupInterval = d
		}
	}

	d := &Data{sessions: cache.New(ttl, cleanupInterval)}
	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		d.sessions.Flush()
	}
	return d, cleanup, nil
}
