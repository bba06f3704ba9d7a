package supabase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"elite-decor-web/internal/apperr"
)

// Claims is the subset of a Supabase access token the web front reads.
type Claims struct {
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// TokenVerifier checks Supabase access tokens locally with the project's
// HS256 JWT secret.
type TokenVerifier struct {
	secret []byte
	leeway time.Duration
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), leeway: 30 * time.Second}
}

// Verify returns the token's claims. An expired token yields
// ErrSessionExpired so the caller can try a refresh; any other failure yields
// ErrSessionExpired wrapping the parse error.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, apperr.ErrUnauthenticated
	}
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("jwt secret is not configured")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithLeeway(v.leeway), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Wrap(apperr.ErrSessionExpired, err)
		}
		return nil, apperr.Wrap(apperr.ErrSessionExpired, fmt.Errorf("invalid token: %w", err))
	}
	if !token.Valid {
		return nil, apperr.ErrSessionExpired
	}
	if claims.Subject == "" {
		return nil, apperr.Wrap(apperr.ErrSessionExpired, fmt.Errorf("missing user id in token"))
	}
	return claims, nil
}

// Expired reports whether err came from an expired (rather than malformed)
// token.
func Expired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
