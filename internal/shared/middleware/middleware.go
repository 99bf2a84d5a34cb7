package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"staybook/internal/shared/config"
	"staybook/internal/shared/utils/response"
	"staybook/internal/users"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

// JWTAuth creates a JWT authentication middleware
func JWTAuth() gin.HandlerFunc {
	return JWTAuthWithConfig(config.Load())
}

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		claims, err := parseAccessToken(authHeader, cfg.JWT.Secret)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusUnauthorized, err.Error(), nil, nil)
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequireRole middleware checks if user has required role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return RequireRoles(requiredRole)
}

// RequireAdmin middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(string(users.RoleAdmin))
}

// RequireStaff allows managers and admins
func RequireStaff() gin.HandlerFunc {
	return RequireRoles(string(users.RoleManager), string(users.RoleAdmin))
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextUserRole)
		if userRole == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "user role not found in context", nil, nil)
			c.Abort()
			return
		}

		for _, role := range requiredRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
		c.Abort()
	}
}

// OptionalAuth middleware validates JWT token if present but doesn't require it
func OptionalAuth() gin.HandlerFunc {
	return OptionalAuthWithConfig(config.Load())
}

func OptionalAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			if claims, err := parseAccessToken(authHeader, cfg.JWT.Secret); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(ContextUserID)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// CurrentUserRole returns the authenticated user's role
func CurrentUserRole(c *gin.Context) string {
	return c.GetString(ContextUserRole)
}

// IsStaff reports whether the caller is a manager or admin
func IsStaff(c *gin.Context) bool {
	return users.IsStaff(CurrentUserRole(c))
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errBearerFormat = authError("authorization header format must be Bearer {token}")
	errInvalidToken = authError("invalid or expired token")
	errTokenType    = authError("invalid token type")
)

func parseAccessToken(authHeader, secret string) (jwt.MapClaims, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errBearerFormat
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return nil, errTokenType
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims jwt.MapClaims) {
	if v, ok := claims["user_id"].(string); ok {
		c.Set(ContextUserID, v)
	}
	if v, ok := claims["email"].(string); ok {
		c.Set(ContextUserEmail, v)
	}
	if v, ok := claims["role"].(string); ok {
		c.Set(ContextUserRole, v)
	}
}
