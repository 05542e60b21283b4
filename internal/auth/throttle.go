package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LoginThrottle bounds failed login attempts per email over a fixed window.
// It fails open: when Redis is unreachable the login path proceeds.
type LoginThrottle struct {
	client      *redis.Client
	logger      *zap.Logger
	maxAttempts int
	window      time.Duration
}

// NewLoginThrottle builds the throttle. A nil client disables it.
func NewLoginThrottle(client *redis.Client, logger *zap.Logger, maxAttempts int, window time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &LoginThrottle{client: client, logger: logger, maxAttempts: maxAttempts, window: window}
}

// Allow reports whether a login attempt for the email may proceed.
func (t *LoginThrottle) Allow(ctx context.Context, email string) bool {
	if t == nil || t.client == nil {
		return true
	}
	count, err := t.client.Get(ctx, t.key(email)).Int()
	if err != nil && err != redis.Nil {
		t.logger.Warn("login throttle unavailable", zap.Error(err))
		return true
	}
	return count < t.maxAttempts
}

// RecordFailure counts a failed attempt against the email.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) {
	if t == nil || t.client == nil {
		return
	}
	key := t.key(email)
	pipe := t.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.Warn("login throttle record failed", zap.Error(err))
		return
	}
	_ = incr.Val()
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) {
	if t == nil || t.client == nil {
		return
	}
	_ = t.client.Del(ctx, t.key(email)).Err()
}

func (t *LoginThrottle) key(email string) string {
	return "login_attempts:" + strings.ToLower(strings.TrimSpace(email))
}
