package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/elemently/builder-backend/internal/common"
	"github.com/elemently/builder-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

type claimsContextKey struct{}

// WithClaims attaches verified session claims to a context.
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFrom returns the session claims carried by the context, or nil for
// an unauthenticated request.
func ClaimsFrom(ctx context.Context) *jwt.Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(*jwt.Claims)
	return claims
}

// JWTAuth rejects requests without a valid bearer token and stores the
// verified claims on both the gin context and the request context.
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c, jwtManager)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, 401, "Token expired", err)
			} else {
				common.ErrorResponse(c, 401, "Invalid or missing authorization", err)
			}
			c.Abort()
			return
		}

		attachClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is present but lets
// anonymous requests through. Read endpoints use this so the publish gate
// and audit fields still see the member when one is logged in.
func OptionalAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := bearerClaims(c, jwtManager); err == nil {
			attachClaims(c, claims)
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, jwtManager *jwt.Manager) (*jwt.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, jwt.ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, jwt.ErrInvalidToken
	}

	return jwtManager.VerifyToken(parts[1])
}

func attachClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set("memberID", claims.MemberID)
	c.Set("memberLevel", claims.Level)
	c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
}

// GetMemberID extracts the authenticated member id from the gin context.
func GetMemberID(c *gin.Context) uint64 {
	memberID, exists := c.Get("memberID")
	if !exists {
		return 0
	}
	if id, ok := memberID.(uint64); ok {
		return id
	}
	return 0
}

// GetMemberLevel extracts the authenticated member level from the gin context.
func GetMemberLevel(c *gin.Context) int {
	level, exists := c.Get("memberLevel")
	if !exists {
		return 0
	}
	if lvl, ok := level.(int); ok {
		return lvl
	}
	return 0
}
