package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/quocanhngo/farmiot/pkg/auth"
	"github.com/quocanhngo/farmiot/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	return f.revoked[token], f.err
}

func protectedEngine(jwtManager *auth.JWTManager, revocations TokenRevocations, handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{AuthMiddleware(jwtManager, revocations)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.MustGet(ContextUserID).(uuid.UUID).String(),
			"role":    c.GetString(ContextRole),
		})
	})
	r.GET("/me", chain...)
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	userID := uuid.New()
	token, err := jwtManager.GenerateToken(userID, "u@farm.test", auth.RoleUser)
	require.NoError(t, err)
	revokedToken, err := jwtManager.GenerateToken(uuid.New(), "r@farm.test", auth.RoleUser)
	require.NoError(t, err)

	revocations := &fakeRevocations{revoked: map[string]bool{revokedToken: true}}
	r := protectedEngine(jwtManager, revocations)

	w := get(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", revokedToken).Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RevocationLookupFailsClosed(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	token, err := jwtManager.GenerateToken(uuid.New(), "", auth.RoleUser)
	require.NoError(t, err)

	r := protectedEngine(jwtManager, &fakeRevocations{err: errors.New("redis down")})

	assert.Equal(t, http.StatusInternalServerError, get(r, "/me", token).Code)
}

func TestRequireRole(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	userToken, err := jwtManager.GenerateToken(uuid.New(), "", auth.RoleUser)
	require.NoError(t, err)
	adminToken, err := jwtManager.GenerateToken(uuid.New(), "", auth.RoleAdmin)
	require.NoError(t, err)

	r := protectedEngine(jwtManager, nil, RequireRole(auth.RoleAdmin))

	w := get(r, "/me", userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Admin access required"}`, w.Body.String())

	w = get(r, "/me", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}

func TestRateLimiter_PerClientBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	fixed := time.Now()
	rl.now = func() time.Time { return fixed }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))

	fixed = fixed.Add(time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_DropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	fixed := time.Now()
	rl.now = func() time.Time { return fixed }

	rl.Allow("idle")
	fixed = fixed.Add(2 * time.Hour)
	rl.Allow("active")

	_, kept := rl.clients["idle"]
	assert.False(t, kept)
	assert.Len(t, rl.clients, 1)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/ingest", RateLimitMiddleware(NewRateLimiter(1, 1)), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
		req.RemoteAddr = "192.0.2.10:5000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestRequestLogger(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := gin.New()
	r.Use(RequestLogger(m))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/ok", "").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/missing", "").Code)
}

func TestRateLimiter_ZeroRateIsUnlimited(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	fixed := time.Now()
	rl.now = func() time.Time { return fixed }

	for i := 0; i < 50; i++ {
		require.True(t, rl.Allow("10.0.0.1"), "request %d", i)
	}
}

func preflight(r http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://dashboard.farm.test"}))
	r.POST("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := preflight(r, "http://dashboard.farm.test")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://dashboard.farm.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = preflight(r, "http://evil.test")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddleware_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"*"}))
	r.POST("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := preflight(r, "http://anywhere.test")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}
