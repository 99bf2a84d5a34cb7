package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"staybook/internal/shared/config"
	"staybook/internal/shared/constants"
)

type RateLimitType string

const (
	RateLimitTypeDefault         RateLimitType = "default"
	RateLimitTypePublic          RateLimitType = "public"
	RateLimitTypeAuth            RateLimitType = "auth"
	RateLimitTypeAvailability    RateLimitType = "availability"
	RateLimitTypeBookingCritical RateLimitType = "booking_critical"
	RateLimitTypeUser            RateLimitType = "user"
	RateLimitTypeAdmin           RateLimitType = "admin"
	RateLimitTypeReport          RateLimitType = "report"
	RateLimitTypeHealth          RateLimitType = "health"
)

type Config struct {
	Enabled        bool
	WindowDuration time.Duration
	Limits         map[RateLimitType]int
	WhitelistedIPs []string
}

// FromConfig maps the application rate limit settings onto limiter classes.
func FromConfig(cfg config.RateLimitConfig) *Config {
	return &Config{
		Enabled:        cfg.Enabled,
		WindowDuration: cfg.WindowDuration,
		Limits: map[RateLimitType]int{
			RateLimitTypeDefault:         cfg.DefaultRequests,
			RateLimitTypePublic:          cfg.PublicRequests,
			RateLimitTypeAuth:            cfg.AuthRequests,
			RateLimitTypeAvailability:    cfg.AvailabilityRequests,
			RateLimitTypeBookingCritical: cfg.BookingCriticalRequests,
			RateLimitTypeUser:            cfg.UserRequests,
			RateLimitTypeAdmin:           cfg.AdminRequests,
			RateLimitTypeReport:          cfg.ReportRequests,
			RateLimitTypeHealth:          cfg.HealthRequests,
		},
		WhitelistedIPs: cfg.WhitelistedIPs,
	}
}

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// slidingWindow trims the window, then admits the request if the count is
// still under the limit. Returns {count, remaining}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window_ms = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

local current = redis.call('ZCARD', key)
if current >= limit then
	redis.call('PEXPIRE', key, window_ms)
	return {current + 1, 0}
end

redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window_ms)
return {current + 1, limit - current - 1}
`)

// RateLimiter handles rate limiting using Redis. A nil client disables it.
type RateLimiter struct {
	client    redis.Scripter
	config    *Config
	whitelist map[string]struct{}
	now       func() time.Time
	member    func() string
}

func NewRateLimiter(client redis.Scripter, config *Config) *RateLimiter {
	whitelist := make(map[string]struct{}, len(config.WhitelistedIPs))
	for _, ip := range config.WhitelistedIPs {
		whitelist[ip] = struct{}{}
	}
	return &RateLimiter{
		client:    client,
		config:    config,
		whitelist: whitelist,
		now:       time.Now,
		member:    uuid.NewString,
	}
}

// IsAllowed checks whether clientIP may make another request of limitType.
func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	limit := r.getLimit(limitType)

	if !r.config.Enabled || r.client == nil || r.isWhitelisted(clientIP) {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetTime: r.now().Add(r.config.WindowDuration).Unix(),
		}, nil
	}

	key := constants.BuildRateLimitKey(string(limitType), clientIP)
	return r.checkLimit(ctx, key, limit)
}

func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int) (*Result, error) {
	now := r.now()
	windowStart := now.Add(-r.config.WindowDuration)

	result, err := slidingWindow.Run(ctx, r.client, []string{key},
		windowStart.UnixMilli(),
		now.UnixMilli(),
		limit,
		r.config.WindowDuration.Milliseconds(),
		r.member(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected rate limit response: %v", result)
	}

	count, remaining := int(result[0]), int(result[1])
	return &Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetTime: now.Add(r.config.WindowDuration).Unix(),
	}, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	if limit, ok := r.config.Limits[limitType]; ok && limit > 0 {
		return limit
	}
	return r.config.Limits[RateLimitTypeDefault]
}

func (r *RateLimiter) isWhitelisted(ip string) bool {
	_, ok := r.whitelist[ip]
	return ok
}
