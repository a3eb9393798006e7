package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	s := NewJWTService("secret", 1)
	token, err := s.Generate("alice", RoleOperator)
	require.NoError(t, err)

	claims, err := s.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, RoleOperator, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateRejectsOtherSecret(t *testing.T) {
	token, err := NewJWTService("one", 1).Generate("alice", RoleViewer)
	require.NoError(t, err)
	_, err = NewJWTService("two", 1).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	s := NewJWTService("secret", -1)
	token, err := s.Generate("alice", RoleOperator)
	require.NoError(t, err)
	_, err = s.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateUnknownRole(t *testing.T) {
	_, err := NewJWTService("secret", 1).Generate("alice", "root")
	assert.ErrorIs(t, err, ErrUnknownRole)
}
