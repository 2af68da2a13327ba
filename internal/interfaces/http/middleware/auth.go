package middleware

import (
	"net/http"
	"strings"

	"github.com/buildledger/backend/internal/infrastructure/auth"
	"github.com/buildledger/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Auth context keys
const (
	AuthClaimsKey   = "auth_claims"
	AuthUserIDKey   = "auth_user_id"
	AuthUsernameKey = "auth_username"
	AuthRoleKey     = "auth_role"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// AuthConfig holds configuration for the authentication middleware
type AuthConfig struct {
	JWTService *auth.JWTService
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// AllowHeaderFallback accepts X-User-ID / X-User-Role headers when
	// no bearer token is present. Development only.
	AllowHeaderFallback bool
	Logger              *zap.Logger
}

// DefaultAuthConfig returns default authentication middleware configuration
func DefaultAuthConfig(jwtService *auth.JWTService) AuthConfig {
	return AuthConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/api/v1/health",
		},
	}
}

// Auth creates an authentication middleware with default configuration
func Auth(jwtService *auth.JWTService) gin.HandlerFunc {
	return AuthWithConfig(DefaultAuthConfig(jwtService))
}

// AuthWithConfig creates an authentication middleware with custom config
func AuthWithConfig(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			if cfg.AllowHeaderFallback && headerFallback(c) {
				c.Next()
				return
			}
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, cfg, err, "Token validation failed")
			return
		}

		c.Set(AuthClaimsKey, claims)
		c.Set(AuthUserIDKey, claims.UserID)
		c.Set(AuthUsernameKey, claims.Username)
		c.Set(AuthRoleKey, claims.Role)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// headerFallback authenticates from X-User-ID / X-User-Role headers.
// Returns false when the headers are absent or carry an unknown role.
func headerFallback(c *gin.Context) bool {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		return false
	}
	role := auth.Role(c.GetHeader("X-User-Role"))
	if role == "" {
		role = auth.RoleViewer
	}
	if !role.IsValid() {
		return false
	}
	c.Set(AuthUserIDKey, userID)
	c.Set(AuthRoleKey, role)
	return true
}

// RequireApprover rejects requests whose role cannot approve documents
func RequireApprover() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetAuthRole(c)
		if !role.CanApprove() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_FORBIDDEN",
					"message": "Approver role required",
				},
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests whose role is not admin
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetAuthRole(c) != auth.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_FORBIDDEN",
					"message": "Admin role required",
				},
			})
			return
		}
		c.Next()
	}
}

// abortUnauthorized ends the request with a 401 and a coded error body
func abortUnauthorized(c *gin.Context, cfg AuthConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path))
	}

	errorCode := "ERR_UNAUTHORIZED"
	errorMessage := "Authentication required"
	switch err {
	case auth.ErrExpiredToken:
		errorCode = "ERR_TOKEN_EXPIRED"
		errorMessage = "Token has expired"
	case auth.ErrInvalidToken, auth.ErrInvalidClaims, auth.ErrMissingUserID:
		errorCode = "ERR_TOKEN_INVALID"
		errorMessage = "Invalid token"
	case auth.ErrTokenNotYetValid:
		errorCode = "ERR_TOKEN_INVALID"
		errorMessage = "Token is not yet valid"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

// GetAuthClaims retrieves validated claims from gin.Context
func GetAuthClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(AuthClaimsKey); exists {
		if authClaims, ok := claims.(*auth.Claims); ok {
			return authClaims
		}
	}
	return nil
}

// GetAuthUserID retrieves the authenticated user ID from gin.Context
func GetAuthUserID(c *gin.Context) string {
	if userID, exists := c.Get(AuthUserIDKey); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// GetAuthRole retrieves the authenticated role from gin.Context
func GetAuthRole(c *gin.Context) auth.Role {
	if role, exists := c.Get(AuthRoleKey); exists {
		if r, ok := role.(auth.Role); ok {
			return r
		}
	}
	return ""
}
