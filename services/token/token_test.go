package token

import (
	"errors"
	"testing"
	"time"

	"nextlevel/services/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokensRoundTripByType(t *testing.T) {
	s := NewSigner("secret", 0, 0, 0)

	access, err := s.Access(7, "USER")
	require.NoError(t, err)
	c, err := s.Parse(access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, Claims{Type: TypeAccess, UserID: 7, Role: "USER"}, c)

	refresh, err := s.Refresh(7, "ADMIN")
	require.NoError(t, err)
	c, err = s.Parse(refresh, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, uint(7), c.UserID)
	assert.Equal(t, "ADMIN", c.Role)

	reset, err := s.Reset("ana@example.com", "abc")
	require.NoError(t, err)
	c, err = s.Parse(reset, TypeReset)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", c.Email)
	assert.Equal(t, "abc", c.Stamp)
}

func TestParseRejectsWrongTypeKeyOrExpiry(t *testing.T) {
	s := NewSigner("secret", 0, 0, 0)
	refresh, err := s.Refresh(7, "USER")
	require.NoError(t, err)

	_, err = s.Parse(refresh, TypeAccess)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))

	_, err = NewSigner("other", 0, 0, 0).Parse(refresh, TypeRefresh)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))

	expired, err := NewSigner("secret", 0, 0, -time.Minute).Reset("ana@example.com", "abc")
	require.NoError(t, err)
	_, err = s.Parse(expired, TypeReset)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))

	_, err = s.Parse("not-a-token", TypeAccess)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
