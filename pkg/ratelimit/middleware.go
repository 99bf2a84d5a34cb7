package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"staybook/internal/shared/utils/response"
	"staybook/pkg/logger"
)

// Middleware enforces per-client limits by route class. When Redis is
// unreachable requests are let through and the failure is logged.
func Middleware(rateLimiter *RateLimiter, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetDefault()
	}
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := getRateLimitType(c.Request.Method, c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			log.WarnContext(c.Request.Context(), "Rate limit check failed", "error", err, "type", string(limitType))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if !result.Allowed {
			log.LogRateLimitExceeded(c.Request.Context(), clientIP, c.FullPath())
			response.RespondJSON(c, "error", http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

func getRateLimitType(method, path string) RateLimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"):
		return RateLimitTypeHealth

	case strings.Contains(path, "/admin/reports"):
		return RateLimitTypeReport

	case strings.Contains(path, "/admin/"):
		return RateLimitTypeAdmin

	case strings.Contains(path, "/auth/"):
		return RateLimitTypeAuth

	case strings.HasSuffix(path, "/availability"),
		strings.HasSuffix(path, "/calendar"):
		return RateLimitTypeAvailability

	// creating and cancelling bookings touch the ledger
	case method == http.MethodPost && strings.HasSuffix(path, "/bookings"),
		strings.Contains(path, "/bookings/") && strings.HasSuffix(path, "/cancel"):
		return RateLimitTypeBookingCritical

	case strings.Contains(path, "/bookings"):
		return RateLimitTypeUser

	case strings.Contains(path, "/hotels"):
		return RateLimitTypePublic

	default:
		return RateLimitTypeDefault
	}
}

// extracts real client IP
func getClientIP(c *gin.Context) string {
	xForwardedFor := c.GetHeader("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	xRealIP := c.GetHeader("X-Real-IP")
	if xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return ip
}
