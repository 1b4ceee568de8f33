package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/ledgerline/internal/config"
	"go.uber.org/fx"
)

const keyUpload = "ingest:upload:%s"

// UploadLimiter throttles batch uploads per client. A nil limiter is valid
// and allows everything, so the server works without redis configured.
type UploadLimiter struct {
	enabled bool

	client *redis.Client
	bucket *TokenBucket

	rate  float64
	burst int
}

func NewUploadLimiter(cfg config.Config) (*UploadLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.UploadRate <= 0 || limitCfg.UploadBurst <= 0 {
		return nil, errors.New("upload rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &UploadLimiter{
		enabled: true,
		client:  client,
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.UploadRate,
		burst:   limitCfg.UploadBurst,
	}, nil
}

func (l *UploadLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *UploadLimiter) AllowUpload(ctx context.Context, clientID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyUpload, strings.TrimSpace(clientID)), l.rate, l.burst)
}

func (l *UploadLimiter) Close(ctx context.Context) error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Close()
}

// Module provides the upload rate limiter.
var Module = fx.Module("ratelimit",
	fx.Provide(NewUploadLimiter),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, limiter *UploadLimiter) {
	if limiter == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return limiter.Close(ctx)
		},
	})
}

