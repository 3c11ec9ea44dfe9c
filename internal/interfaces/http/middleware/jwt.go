package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/formhub/backend/internal/infrastructure/auth"
	"github.com/formhub/backend/internal/interfaces/http/dto"
)

// Context keys for JWT-related values
const (
	ContextKeyJWTClaims = "jwt_claims"
	ContextKeyUserID    = "jwt_user_id"
	ContextKeyUsername  = "jwt_username"
	ContextKeyRole      = "jwt_role"
)

// JWTMiddlewareConfig holds configuration for the JWT middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// TokenBlacklist is optional. When nil, revocation checks are skipped.
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths are exact paths that bypass authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that bypass authentication
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// JWTAuthMiddleware returns a middleware that validates JWT access tokens
// and stores the claims in the request context.
func JWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if shouldSkip(c.Request.URL.Path, cfg.SkipPaths, cfg.SkipPathPrefixes) {
			c.Next()
			return
		}

		token := extractBearerToken(c)
		if token == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			abortUnauthorized(c, tokenErrorCode(err), "Invalid or expired token")
			return
		}

		if revoked := isRevoked(c, cfg.TokenBlacklist, claims, logger); revoked {
			abortUnauthorized(c, dto.ErrCodeTokenRevoked, "Token has been revoked")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuthMiddleware validates the token when one is present but lets
// anonymous requests through. Handlers read the context to learn whether the
// caller was identified.
func OptionalJWTAuthMiddleware(jwtService *auth.JWTService, blacklist auth.TokenBlacklist, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			// Anonymous access is allowed here, so a bad token is treated
			// the same as no token at all.
			c.Next()
			return
		}

		if revoked := isRevoked(c, blacklist, claims, logger); revoked {
			c.Next()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequireRole returns a middleware that rejects callers whose token does not
// carry one of the given roles. It must run after JWTAuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetJWTRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.ErrCodeForbidden,
			"Insufficient permissions",
		))
	}
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextKeyJWTClaims, claims)
	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeyUsername, claims.Username)
	c.Set(ContextKeyRole, claims.Role)
}

// isRevoked consults the blacklist. Lookup failures are logged and treated
// as not revoked so an unavailable store does not lock everyone out.
func isRevoked(c *gin.Context, blacklist auth.TokenBlacklist, claims *auth.Claims, logger *zap.Logger) bool {
	if blacklist == nil {
		return false
	}

	ctx := c.Request.Context()

	blacklisted, err := blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		logger.Error("token blacklist lookup failed", zap.Error(err))
	} else if blacklisted {
		return true
	}

	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAt.Time)
	if err != nil {
		logger.Error("user token invalidation lookup failed", zap.Error(err))
		return false
	}
	return invalidated
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func tokenErrorCode(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType):
		return dto.ErrCodeTokenInvalid
	default:
		return dto.ErrCodeTokenError
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}

func shouldSkip(path string, skipPaths, skipPrefixes []string) bool {
	for _, p := range skipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// GetJWTClaims returns the validated claims from the context, or nil when the
// request was not authenticated.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	value, exists := c.Get(ContextKeyJWTClaims)
	if !exists {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetJWTUserID returns the authenticated user ID, or "" for anonymous requests.
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// GetJWTUsername returns the authenticated username, or "".
func GetJWTUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetJWTRole returns the authenticated user's role, or "".
func GetJWTRole(c *gin.Context) string {
	return c.GetString(ContextKeyRole)
}
