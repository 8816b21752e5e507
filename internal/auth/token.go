package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer signs and verifies access tokens carrying a user id as subject.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer builds an issuer for one of HS256, HS384 or HS512.
func NewTokenIssuer(secret, algorithm string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive")
	}

	var method jwt.SigningMethod
	switch algorithm {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	return &TokenIssuer{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue returns a signed token for subject that expires after the configured lifetime.
func (t *TokenIssuer) Issue(subject string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(t.method, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns its subject.
func (t *TokenIssuer) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{t.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
