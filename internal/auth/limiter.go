package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/K-nass/task-management/internal/shared"
)

// MsgTooManyAttempts is returned once an email exhausts its failed-login budget.
const MsgTooManyAttempts = "Too many failed login attempts, try again later"

// LoginLimiter counts failed logins per email in Redis. A nil limiter allows everything.
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewLoginLimiter returns nil when the client is missing or maxAttempts is not positive.
func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	if client == nil || maxAttempts <= 0 || window <= 0 {
		return nil
	}
	return &LoginLimiter{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// Allow fails with ErrTooManyAttempts when the email has no attempts left.
func (l *LoginLimiter) Allow(ctx context.Context, email string) error {
	if l == nil {
		return nil
	}
	count, err := l.client.Get(ctx, limiterKey(email)).Int64()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if count >= l.maxAttempts {
		return shared.TooManyAttempts(MsgTooManyAttempts)
	}
	return nil
}

// Fail records a failed attempt. The window starts at the first failure.
func (l *LoginLimiter) Fail(ctx context.Context, email string) error {
	if l == nil {
		return nil
	}
	key := limiterKey(email)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return l.client.Expire(ctx, key, l.window).Err()
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if l == nil {
		return nil
	}
	return l.client.Del(ctx, limiterKey(email)).Err()
}

func limiterKey(email string) string {
	return "login:attempts:" + strings.ToLower(strings.TrimSpace(email))
}
