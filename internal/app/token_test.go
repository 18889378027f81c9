package app

import (
	"testing"
	"time"

	"accounts/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTCodec_IssueAndVerify(t *testing.T) {
	codec := NewJWTCodec([]byte("super-secret"), 0)

	tok, err := codec.Issue("user-123")
	require.NoError(t, err)

	id, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id)
}

func TestJWTCodec_ClaimsWindow(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	codec := NewJWTCodec([]byte("secret"), 0)
	codec.now = func() time.Time { return issuedAt }

	tok, err := codec.Issue("u1")
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.True(t, claims.IssuedAt.Time.Equal(issuedAt))
	assert.True(t, claims.ExpiresAt.Time.Equal(issuedAt.Add(24*time.Hour)))
}

func TestJWTCodec_Expired(t *testing.T) {
	codec := NewJWTCodec([]byte("secret"), 0)
	codec.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }

	tok, err := codec.Issue("u1")
	require.NoError(t, err)

	codec.now = time.Now
	_, err = codec.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_WrongSecret(t *testing.T) {
	tok, err := NewJWTCodec([]byte("right-secret"), 0).Issue("u2")
	require.NoError(t, err)

	_, err = NewJWTCodec([]byte("wrong-secret"), 0).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_Malformed(t *testing.T) {
	codec := NewJWTCodec([]byte("k"), 0)
	for _, tok := range []string{"", "garbage", "not.a.jwt"} {
		_, err := codec.Verify(tok)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "token %q", tok)
	}
}

func TestJWTCodec_RejectsOtherAlgorithms(t *testing.T) {
	secret := []byte("secret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewJWTCodec(secret, 0).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_RequiresExpiry(t *testing.T) {
	secret := []byte("secret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1"}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewJWTCodec(secret, 0).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_IssueEmptyID(t *testing.T) {
	_, err := NewJWTCodec([]byte("k"), 0).Issue("")
	assert.Error(t, err)
}
