package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned when a token carries no usable "exp" claim.
var ErrNoExpiry = errors.New("token has no expiration claim")

// ErrMalformedToken is returned for tokens that are not three dot-separated parts.
var ErrMalformedToken = errors.New("token must have three parts")

// Expiry decodes the token's payload and returns its "exp" claim.
// Only the payload is read. The header and signature are the backend's
// concern, so an unknown or missing "alg" does not matter here.
func Expiry(token string) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, ErrMalformedToken
	}

	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("decode payload: %w", err)
	}

	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("decode claims: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// IsTokenValid reports whether token decodes and expires strictly after now.
// Any decoding failure counts as invalid.
func IsTokenValid(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	exp, err := Expiry(token)
	if err != nil {
		return false
	}
	return exp.After(now)
}
