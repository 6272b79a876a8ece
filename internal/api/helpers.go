package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
)

// authenticateRequest validates the Authorization header and returns the
// authenticated user. A token whose user has since been deleted is
// treated exactly like an invalid token.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*domain.User, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	claims, err := s.tokenService.VerifyAccessToken(parts[1])
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}

	return user, nil
}

// extractIP pulls the client address out of the proxy headers, first hop
// wins. Used only as a rate limit key, so an empty result is fine.
func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		for i := 0; i < len(xForwardedFor); i++ {
			if xForwardedFor[i] == ',' {
				return xForwardedFor[:i]
			}
		}
		return xForwardedFor
	}
	return xRealIP
}

// checkAuthRate applies the per-client auth rate limit.
func (s *Server) checkAuthRate(xForwardedFor, xRealIP string) error {
	key := extractIP(xForwardedFor, xRealIP)
	if key == "" {
		key = "local"
	}
	if !s.authRateLimiter.Allow(key) {
		if s.logger != nil {
			s.logger.Warn("Auth rate limit exceeded", "ip", key)
		}
		return huma.Error429TooManyRequests("Too many attempts. Please try again later.")
	}
	return nil
}
