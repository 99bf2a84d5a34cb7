package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *Config {
	return &Config{
		Enabled:        true,
		WindowDuration: time.Minute,
		Limits: map[RateLimitType]int{
			RateLimitTypeDefault:         60,
			RateLimitTypeBookingCritical: 5,
		},
		WhitelistedIPs: []string{"10.0.0.1"},
	}
}

func newTestLimiter(t *testing.T) (*RateLimiter, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, testConfig())
	limiter.now = func() time.Time { return fixedNow }
	limiter.member = func() string { return "req-1" }
	return limiter, mock
}

func expectWindow(mock redismock.ClientMock, key string, limit int) *redismock.ExpectedCmd {
	return mock.ExpectEvalSha(slidingWindow.Hash(), []string{key},
		fixedNow.Add(-time.Minute).UnixMilli(),
		fixedNow.UnixMilli(),
		limit,
		time.Minute.Milliseconds(),
		"req-1",
	)
}

func TestIsAllowedUnderLimit(t *testing.T) {
	limiter, mock := newTestLimiter(t)
	expectWindow(mock, "staybook:ratelimit:type:booking_critical:client:1.2.3.4", 5).
		SetVal([]interface{}{int64(2), int64(3)})

	result, err := limiter.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeBookingCritical)

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 5, result.Limit)
	assert.Equal(t, 3, result.Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsAllowedOverLimit(t *testing.T) {
	limiter, mock := newTestLimiter(t)
	expectWindow(mock, "staybook:ratelimit:type:booking_critical:client:1.2.3.4", 5).
		SetVal([]interface{}{int64(6), int64(0)})

	result, err := limiter.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeBookingCritical)

	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Zero(t, result.Remaining)
}

func TestUnknownClassFallsBackToDefault(t *testing.T) {
	limiter, mock := newTestLimiter(t)
	expectWindow(mock, "staybook:ratelimit:type:report:client:1.2.3.4", 60).
		SetVal([]interface{}{int64(1), int64(59)})

	result, err := limiter.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeReport)

	require.NoError(t, err)
	assert.Equal(t, 60, result.Limit)
}

func TestWhitelistedAndDisabledSkipRedis(t *testing.T) {
	limiter, mock := newTestLimiter(t)

	result, err := limiter.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypeBookingCritical)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	limiter.config.Enabled = false
	result, err = limiter.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeBookingCritical)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitTypeForRoutes(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   RateLimitType
	}{
		{http.MethodGet, "/health", RateLimitTypeHealth},
		{http.MethodGet, "/api/v1/admin/reports/occupancy", RateLimitTypeReport},
		{http.MethodPost, "/api/v1/admin/bookings/:id/confirm", RateLimitTypeAdmin},
		{http.MethodPost, "/api/v1/auth/login", RateLimitTypeAuth},
		{http.MethodGet, "/api/v1/hotels/:hotelId/rooms/:roomId/availability", RateLimitTypeAvailability},
		{http.MethodPost, "/api/v1/bookings", RateLimitTypeBookingCritical},
		{http.MethodPost, "/api/v1/bookings/:id/cancel", RateLimitTypeBookingCritical},
		{http.MethodGet, "/api/v1/bookings", RateLimitTypeUser},
		{http.MethodGet, "/api/v1/hotels", RateLimitTypePublic},
		{http.MethodGet, "/unknown", RateLimitTypeDefault},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, getRateLimitType(tc.method, tc.path), tc.method+" "+tc.path)
	}
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter, mock := newTestLimiter(t)
	expectWindow(mock, "staybook:ratelimit:type:booking_critical:client:1.2.3.4", 5).
		SetVal([]interface{}{int64(6), int64(0)})

	engine := gin.New()
	engine.Use(Middleware(limiter, nil))
	engine.POST("/api/v1/bookings", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.2")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
}

func TestMiddlewareFailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter, mock := newTestLimiter(t)
	expectWindow(mock, "staybook:ratelimit:type:user:client:1.2.3.4", 60).
		SetErr(errors.New("connection refused"))

	engine := gin.New()
	engine.Use(Middleware(limiter, nil))
	engine.GET("/api/v1/bookings", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	req.Header.Set("X-Real-IP", "1.2.3.4")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
