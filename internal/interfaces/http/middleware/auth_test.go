package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/backend/internal/infrastructure/auth"
	"github.com/buildledger/backend/internal/infrastructure/config"
)

func testJWTService(t *testing.T, expiration time.Duration) *auth.JWTService {
	t.Helper()
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "middleware-test-secret",
		AccessTokenExpiration: expiration,
		Issuer:                "buildledger-test",
	})
}

func issueToken(t *testing.T, service *auth.JWTService, role auth.Role) string {
	t.Helper()
	token, _, err := service.GenerateToken(auth.GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "tester",
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.Error.Code
}

func TestAuth(t *testing.T) {
	jwtService := testJWTService(t, time.Hour)

	newRouter := func(cfg AuthConfig) *gin.Engine {
		router := gin.New()
		router.Use(AuthWithConfig(cfg))
		router.GET("/health", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		router.GET("/protected", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"user_id": GetAuthUserID(c),
				"role":    string(GetAuthRole(c)),
			})
		})
		return router
	}

	t.Run("skip paths bypass authentication", func(t *testing.T) {
		router := newRouter(DefaultAuthConfig(jwtService))

		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		router := newRouter(DefaultAuthConfig(jwtService))

		req := httptest.NewRequest("GET", "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "ERR_TOKEN_INVALID", errorCode(t, w.Body.Bytes()))
	})

	t.Run("non-bearer header is rejected", func(t *testing.T) {
		router := newRouter(DefaultAuthConfig(jwtService))

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(AuthHeaderKey, "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token populates the context", func(t *testing.T) {
		router := newRouter(DefaultAuthConfig(jwtService))
		token := issueToken(t, jwtService, auth.RoleApprover)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			UserID string `json:"user_id"`
			Role   string `json:"role"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotEmpty(t, body.UserID)
		assert.Equal(t, "approver", body.Role)
	})

	t.Run("expired token reports its own code", func(t *testing.T) {
		expiredService := testJWTService(t, -time.Minute)
		router := newRouter(DefaultAuthConfig(expiredService))
		token := issueToken(t, expiredService, auth.RoleEditor)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "ERR_TOKEN_EXPIRED", errorCode(t, w.Body.Bytes()))
	})

	t.Run("header fallback requires opt-in", func(t *testing.T) {
		router := newRouter(DefaultAuthConfig(jwtService))

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("X-User-ID", uuid.New().String())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("header fallback authenticates when enabled", func(t *testing.T) {
		cfg := DefaultAuthConfig(jwtService)
		cfg.AllowHeaderFallback = true
		router := newRouter(cfg)

		userID := uuid.New().String()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-User-Role", "approver")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			UserID string `json:"user_id"`
			Role   string `json:"role"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, userID, body.UserID)
		assert.Equal(t, "approver", body.Role)
	})

	t.Run("header fallback rejects unknown roles", func(t *testing.T) {
		cfg := DefaultAuthConfig(jwtService)
		cfg.AllowHeaderFallback = true
		router := newRouter(cfg)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("X-User-ID", uuid.New().String())
		req.Header.Set("X-User-Role", "superuser")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireApprover(t *testing.T) {
	jwtService := testJWTService(t, time.Hour)

	router := gin.New()
	router.Use(Auth(jwtService))
	router.POST("/approve", RequireApprover(), func(c *gin.Context) {
		c.String(http.StatusOK, "approved")
	})

	cases := []struct {
		name string
		role auth.Role
		want int
	}{
		{"viewer is forbidden", auth.RoleViewer, http.StatusForbidden},
		{"editor is forbidden", auth.RoleEditor, http.StatusForbidden},
		{"approver passes", auth.RoleApprover, http.StatusOK},
		{"admin passes", auth.RoleAdmin, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := issueToken(t, jwtService, tc.role)

			req := httptest.NewRequest("POST", "/approve", nil)
			req.Header.Set(AuthHeaderKey, BearerPrefix+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusForbidden {
				assert.Equal(t, "ERR_FORBIDDEN", errorCode(t, w.Body.Bytes()))
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	jwtService := testJWTService(t, time.Hour)

	router := gin.New()
	router.Use(Auth(jwtService))
	router.POST("/resolve", RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "resolved")
	})

	cases := []struct {
		name string
		role auth.Role
		want int
	}{
		{"viewer is forbidden", auth.RoleViewer, http.StatusForbidden},
		{"editor is forbidden", auth.RoleEditor, http.StatusForbidden},
		{"approver is forbidden", auth.RoleApprover, http.StatusForbidden},
		{"admin passes", auth.RoleAdmin, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := issueToken(t, jwtService, tc.role)

			req := httptest.NewRequest("POST", "/resolve", nil)
			req.Header.Set(AuthHeaderKey, BearerPrefix+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusForbidden {
				assert.Equal(t, "ERR_FORBIDDEN", errorCode(t, w.Body.Bytes()))
			}
		})
	}
}
