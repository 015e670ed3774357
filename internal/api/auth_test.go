package api

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9A-Ayush/Car-Repair-and-Service/internal/user"
)

func TestSignAndVerifyHS256(t *testing.T) {
	id := uuid.New()
	token, err := SignHS256(Claims{
		Sub:  id.String(),
		Role: "admin",
		Exp:  time.Now().Add(time.Hour).Unix(),
		Iat:  time.Now().Unix(),
	}, "secret")
	require.NoError(t, err)

	claims, err := parseAndVerifyHS256(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.Sub)
	assert.Equal(t, "admin", claims.Role)

	_, err = parseAndVerifyHS256(token, "wrong-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyHS256_Expired(t *testing.T) {
	token, err := SignHS256(Claims{
		Sub: uuid.NewString(),
		Exp: time.Now().Add(-time.Minute).Unix(),
	}, "secret")
	require.NoError(t, err)

	_, err = parseAndVerifyHS256(token, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyHS256_Garbage(t *testing.T) {
	for _, token := range []string{"", "a.b", "a.b.c.d", "not a token"} {
		_, err := parseAndVerifyHS256(token, "secret")
		assert.ErrorIs(t, err, ErrInvalidToken, token)
	}
}

func TestActorFromClaims(t *testing.T) {
	id := uuid.New()

	actor, ok := actorFromClaims(&Claims{Sub: id.String(), Role: "admin"})
	require.True(t, ok)
	assert.Equal(t, id, actor.ID)
	assert.Equal(t, user.RoleAdmin, actor.Role)

	// Unknown roles collapse to plain user.
	actor, ok = actorFromClaims(&Claims{Sub: id.String(), Role: "superuser"})
	require.True(t, ok)
	assert.Equal(t, user.RoleUser, actor.Role)

	_, ok = actorFromClaims(&Claims{Sub: "not-a-uuid"})
	assert.False(t, ok)
}
