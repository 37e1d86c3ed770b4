package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eduhub/api/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyEnrollmentWrite   = "enrollment:write:%s"
	keyCertificateRender = "certificate:render:%s"
)

// WriteLimiter throttles lifecycle mutations per client and
// single-flights certificate rendering per certificate id. With no
// redis address configured it permits everything.
type WriteLimiter struct {
	enabled bool

	bucket    *TokenBucket
	locker    *Locker
	cfgHolder *config.PlatformConfigHolder
}

func NewWriteLimiter(cfg config.Config, holder *config.PlatformConfigHolder) *WriteLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &WriteLimiter{enabled: false}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &WriteLimiter{
		enabled:   true,
		bucket:    NewTokenBucket(client),
		locker:    NewLocker(client),
		cfgHolder: holder,
	}
}

func (l *WriteLimiter) Enabled() bool {
	if l == nil || !l.enabled {
		return false
	}
	return l.cfgHolder.Get().RateLimit.Enabled
}

// AllowWrite reports whether the caller may perform another lifecycle
// mutation. The key is usually a client IP or a student id.
func (l *WriteLimiter) AllowWrite(ctx context.Context, key string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}

	limitCfg := l.cfgHolder.Get().RateLimit
	return l.bucket.Allow(ctx, fmt.Sprintf(keyEnrollmentWrite, strings.TrimSpace(key)), limitCfg.Rate, limitCfg.Burst)
}

// TryLockCertificate takes the render lock for one certificate so
// concurrent downloads do not render the same PDF twice.
func (l *WriteLimiter) TryLockCertificate(ctx context.Context, certificateID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}

	ttl := time.Duration(l.cfgHolder.Get().RateLimit.TTLSeconds) * time.Second
	return l.locker.TryLock(ctx, fmt.Sprintf(keyCertificateRender, strings.TrimSpace(certificateID)), ttl)
}

func (l *WriteLimiter) ReleaseCertificate(ctx context.Context, certificateID, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, fmt.Sprintf(keyCertificateRender, strings.TrimSpace(certificateID)), token)
}
