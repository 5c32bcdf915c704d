package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("stored Pocket Casts token has expired, run `castsync login`")
)

// TokenInfo is what can be read from a Pocket Casts token without its
// signing key
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time // zero when the token does not expire
}

// Inspect decodes the claims of a Pocket Casts token. The signature is not
// checked; only Pocket Casts can do that.
func Inspect(token string) (*TokenInfo, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	info := &TokenInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// CheckUsable fails with ErrTokenExpired when token expires within leeway of
// now. Tokens that are not JWTs are passed through for the server to judge.
func CheckUsable(token string, now time.Time, leeway time.Duration) error {
	info, err := Inspect(token)
	if err != nil {
		return nil
	}
	if !info.ExpiresAt.IsZero() && !now.Add(leeway).Before(info.ExpiresAt) {
		return ErrTokenExpired
	}
	return nil
}
