package identity

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BiggBoiLeo/Rothbard-Backend/config"
)

var (
	// ErrInvalidToken means the token is malformed, unsigned, or forged.
	ErrInvalidToken = errors.New("invalid identity token")
	// ErrExpiredToken means the token was once valid but has expired or
	// been revoked; clients should refresh and retry.
	ErrExpiredToken = errors.New("expired identity token")
)

// Verifier checks a caller-supplied ID token and resolves the stable
// subject identifier issued by the identity provider.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (string, error)
}

// TokenVerifier verifies HMAC-signed ID tokens issued by the identity
// provider.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier builds a verifier from identity-provider credentials
func NewTokenVerifier(cfg config.IdentityConfig) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Verify parses and validates the token, returning the subject id.
// Expiry is reported distinctly from all other failures so callers can
// map it to a retryable response.
func (v *TokenVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
