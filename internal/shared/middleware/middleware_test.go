package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"staybook/internal/shared/config"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, tokenType, role string, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"email":   "guest@example.com",
		"role":    role,
		"type":    tokenType,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	engine := gin.New()
	chain := append([]gin.HandlerFunc{JWTAuthWithConfig(cfg)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.String(), "role": CurrentUserRole(c)})
	})
	engine.GET("/protected", chain...)
	return engine
}

func perform(engine *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	engine.ServeHTTP(w, req)
	return w
}

func TestJWTAuthAcceptsAccessToken(t *testing.T) {
	userID := uuid.New()
	w := perform(newTestEngine(), signToken(t, "access", "USER", userID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), gjson.Get(w.Body.String(), "user_id").String())
}

func TestJWTAuthRejectsRefreshToken(t *testing.T) {
	w := perform(newTestEngine(), signToken(t, "refresh", "USER", uuid.New()))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid token type", gjson.Get(w.Body.String(), "message").String())
}

func TestJWTAuthRequiresHeader(t *testing.T) {
	w := perform(newTestEngine(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireStaff(t *testing.T) {
	engine := newTestEngine(RequireStaff())

	assert.Equal(t, http.StatusForbidden, perform(engine, signToken(t, "access", "USER", uuid.New())).Code)
	assert.Equal(t, http.StatusOK, perform(engine, signToken(t, "access", "MANAGER", uuid.New())).Code)
	assert.Equal(t, http.StatusOK, perform(engine, signToken(t, "access", "ADMIN", uuid.New())).Code)
}
