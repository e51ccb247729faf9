package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strappon/internal/domain/models"
)

func TestIssueAndParse(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	raw, err := s.Issue(models.Token{ID: "tok1", UserID: "u1"})
	require.NoError(t, err)

	claims, err := s.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "tok1", claims.ID)
	assert.Equal(t, "u1", claims.UserID)
}

func TestParseRejectsOtherSecretAndExpired(t *testing.T) {
	raw, err := NewSigner("secret", time.Hour).Issue(models.Token{ID: "tok1", UserID: "u1"})
	require.NoError(t, err)

	_, err = NewSigner("other", time.Hour).Parse(raw)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	later := NewSigner("secret", time.Hour)
	later.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Parse(raw)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestIssueWithoutSecret(t *testing.T) {
	_, err := Signer{}.Issue(models.Token{ID: "t", UserID: "u"})
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc"))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken(""))
}
