package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bizdocs/backend/internal/infrastructure/auth"
	"github.com/bizdocs/backend/internal/infrastructure/logger"
	"github.com/bizdocs/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys set by Authenticate
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTTenantIDKey = "jwt_tenant_id"
	// TenantIDKey holds the resolved company ID as a uuid.UUID
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthConfig holds configuration for the company resolution middleware
type AuthConfig struct {
	// Verifier checks bearer tokens; nil disables token authentication
	Verifier TokenVerifier
	// HeaderEnabled accepts the X-Tenant-ID header when no token is sent
	HeaderEnabled bool
	// DefaultTenantID is used when neither a token nor a header is present.
	// Only set outside production.
	DefaultTenantID uuid.UUID
	// SkipPaths are paths that don't require a company
	SkipPaths []string
	Logger    *zap.Logger
}

// Authenticate resolves the company a request acts for.
// Resolution order: bearer token > X-Tenant-ID header > DefaultTenantID.
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		var tenantID uuid.UUID
		method := ""

		if header := c.GetHeader(AuthHeaderKey); header != "" {
			claims, err := verifyBearer(cfg.Verifier, header)
			if err != nil {
				log.Warn("Token authentication failed",
					zap.Error(err),
					zap.String("path", path))
				respondAuthError(c, err)
				return
			}
			tenantID, _ = claims.GetTenantUUID()
			method = "jwt"
			c.Set(JWTClaimsKey, claims)
			c.Set(JWTUserIDKey, claims.UserID)
			c.Set(JWTTenantIDKey, claims.TenantID)
		}

		if method == "" && cfg.HeaderEnabled {
			if header := c.GetHeader(TenantHeaderKey); header != "" {
				if !isValidTenantID(header) {
					respondUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid tenant ID format")
					return
				}
				tenantID = uuid.MustParse(header)
				method = "header"
			}
		}

		if method == "" && cfg.DefaultTenantID != uuid.Nil {
			tenantID = cfg.DefaultTenantID
			method = "default"
		}

		if method == "" {
			respondUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID.String()))
		log.Debug("Company identified",
			zap.String("tenant_id", tenantID.String()),
			zap.String("method", method))

		c.Next()
	}
}

func verifyBearer(verifier TokenVerifier, header string) (*auth.Claims, error) {
	if verifier == nil {
		return nil, auth.ErrMissingSecret
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return nil, auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return nil, auth.ErrInvalidToken
	}
	return verifier.Verify(token)
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		respondUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
	case errors.Is(err, auth.ErrMissingSecret):
		respondUnauthorized(c, dto.ErrCodeUnauthorized, "Token authentication is not configured")
	default:
		respondUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid token")
	}
}

func respondUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}

// GetTenantID returns the company resolved by Authenticate
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(TenantIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}
