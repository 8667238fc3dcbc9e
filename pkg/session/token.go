package session

import (
	"errors"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

var ErrInvalidToken = errors.New("session: invalid token")

// TokenCodec signs and verifies the bearer token that carries a session ID.
// Session state itself lives in redis; the token only proves possession.
type TokenCodec struct {
	secret []byte
	issuer string
}

func NewTokenCodec(secret, issuer string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("session: signing secret is required")
	}
	return &TokenCodec{secret: []byte(secret), issuer: issuer}, nil
}

func (c *TokenCodec) Sign(sessionID, userID string, expiresAt time.Time) (string, error) {
	signer, err := jose.NewSigner(jose.SigningKey{
		Algorithm: jose.HS256,
		Key:       c.secret,
	}, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", err
	}

	claims := jwt.Claims{
		ID:       sessionID,
		Subject:  userID,
		Issuer:   c.issuer,
		IssuedAt: jwt.NewNumericDate(time.Now()),
		Expiry:   jwt.NewNumericDate(expiresAt),
	}

	return jwt.Signed(signer).Claims(claims).Serialize()
}

// Verify returns the session ID embedded in a valid, unexpired token.
func (c *TokenCodec) Verify(token string) (string, error) {
	parsed, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return "", ErrInvalidToken
	}

	var claims jwt.Claims
	if err := parsed.Claims(c.secret, &claims); err != nil {
		return "", ErrInvalidToken
	}

	if err := claims.Validate(jwt.Expected{Time: time.Now()}); err != nil {
		return "", ErrInvalidToken
	}

	if claims.ID == "" {
		return "", ErrInvalidToken
	}

	return claims.ID, nil
}
