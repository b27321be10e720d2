package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nutriquest/internal/validation"
)

const tokenIssuer = "nutriquest"

var (
	ErrMissingToken = errors.New("missing player token")
	ErrInvalidToken = errors.New("invalid player token")
	ErrTokenExpired = errors.New("player token expired")
)

// PlayerClaims are the claims of a player token. The subject is the player id.
type PlayerClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// PlayerTokens issues and verifies HS256 player tokens. Tokens come from the
// login flow; the server only needs Verify.
type PlayerTokens struct {
	secret []byte
	now    func() time.Time
}

// NewPlayerTokens creates a verifier for tokens signed with secret
func NewPlayerTokens(secret string) (*PlayerTokens, error) {
	if len(secret) < 16 {
		return nil, errors.New("player token secret must be at least 16 bytes")
	}
	return &PlayerTokens{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a token for playerID valid for ttl
func (p *PlayerTokens) Issue(playerID, name string, ttl time.Duration) (string, error) {
	if err := validation.ValidatePlayerID(playerID); err != nil {
		return "", err
	}
	now := p.now()
	claims := PlayerClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign player token: %w", err)
	}
	return signed, nil
}

// Verify checks a token and returns its claims
func (p *PlayerTokens) Verify(raw string) (*PlayerClaims, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}

	claims := &PlayerClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := validation.ValidatePlayerID(claims.Subject); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
