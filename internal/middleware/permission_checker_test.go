package middleware

import (
	"context"
	"testing"

	"github.com/elemently/builder-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
)

func TestIsAllowedNonPublishResource(t *testing.T) {
	checker := NewLevelPermissionChecker(4)

	assert.True(t, checker.IsAllowed(context.Background(), "content.page.read"))
	assert.True(t, checker.IsAllowed(context.Background(), "anything"))
}

func TestIsAllowedPublishRequiresSession(t *testing.T) {
	checker := NewLevelPermissionChecker(4)

	assert.False(t, checker.IsAllowed(context.Background(), "content.page.publish"))
}

func TestIsAllowedPublishByLevel(t *testing.T) {
	checker := NewLevelPermissionChecker(4)

	editor := WithClaims(context.Background(), &jwt.Claims{MemberID: 7, Level: 4})
	viewer := WithClaims(context.Background(), &jwt.Claims{MemberID: 8, Level: 2})

	assert.True(t, checker.IsAllowed(editor, "content.page.publish"))
	assert.False(t, checker.IsAllowed(viewer, "content.template.publish"))
}

func TestClaimsFromEmptyContext(t *testing.T) {
	assert.Nil(t, ClaimsFrom(context.Background()))
}
