package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	manager := NewManager("test-secret", 1, 24)

	token, err := manager.GenerateToken(42, "editor", 5)
	require.NoError(t, err)

	claims, err := manager.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.MemberID)
	assert.Equal(t, "editor", claims.Name)
	assert.Equal(t, 5, claims.Level)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", 1, 24).GenerateToken(1, "", 1)
	require.NoError(t, err)

	_, err = NewManager("secret-b", 1, 24).VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := NewManager("secret", 1, 24).VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
