package app

import (
	"errors"
	"time"

	"accounts/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the validity window of issued tokens.
const DefaultTokenTTL = 24 * time.Hour

// TokenCodec issues and verifies self-contained identity tokens.
type TokenCodec interface {
	Issue(accountID string) (string, error)
	// Verify returns the embedded account id or domain.ErrInvalidToken.
	Verify(token string) (string, error)
}

// Claims are the JWT claims carried by an access token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// JWTCodec signs tokens with HMAC-SHA256.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTCodec creates a codec signing with secret. A non-positive ttl means
// DefaultTokenTTL.
func NewJWTCodec(secret []byte, ttl time.Duration) *JWTCodec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTCodec{secret: secret, ttl: ttl, now: time.Now}
}

// Issue builds a signed token for accountID valid for the codec's TTL.
func (c *JWTCodec) Issue(accountID string) (string, error) {
	if accountID == "" {
		return "", errors.New("issue token: empty account id")
	}
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})
	return token.SignedString(c.secret)
}

// Verify checks signature, structure and expiry. All failures collapse into
// domain.ErrInvalidToken.
func (c *JWTCodec) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.UserID, nil
}
