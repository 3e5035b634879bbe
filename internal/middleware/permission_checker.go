package middleware

import (
	"context"
	"strings"
)

// LevelPermissionChecker decides publish permissions from the session
// claims carried on the request context. It implements
// repository.AuthorizationChecker.
type LevelPermissionChecker struct {
	publishMinLevel int
}

// NewLevelPermissionChecker creates a checker gating publish-class saves at
// the given member level.
func NewLevelPermissionChecker(publishMinLevel int) *LevelPermissionChecker {
	return &LevelPermissionChecker{publishMinLevel: publishMinLevel}
}

// IsAllowed reports whether the request may act on the resource. Only
// publish resources (content.<type>.publish) are gated; everything else
// passes.
func (p *LevelPermissionChecker) IsAllowed(ctx context.Context, resource string) bool {
	if !strings.HasSuffix(resource, ".publish") {
		return true
	}

	claims := ClaimsFrom(ctx)
	if claims == nil {
		return false
	}
	return claims.Level >= p.publishMinLevel
}
