// Package token decodes the claims segment of a bearer token without
// verifying its signature. The client trusts the issuer; decoded claims are
// used only for local pre-flight expiry checks and for extracting the user
// id to store alongside the tokens. They are never an authorization
// boundary; the server remains the sole authority on every request.
package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var (
	// ErrEmptyToken is returned when Decode is given an empty string;
	// callers should check presence before decoding.
	ErrEmptyToken = errors.New("token is empty")
	// ErrMalformedToken is returned when the token is not three
	// dot-separated segments of base64url JSON.
	ErrMalformedToken = errors.New("malformed token")
)

// Claims is the decoded payload of a Novademy access token. Timestamps are
// Unix seconds.
type Claims struct {
	ID   string `json:"id"`
	Sub  string `json:"sub"`
	Role string `json:"role"`
	Exp  int64  `json:"exp"`
	Iat  int64  `json:"iat"`
	Nbf  int64  `json:"nbf"`
	Iss  string `json:"iss"`
	Aud  string `json:"aud"`
}

// UserID returns the user identifier claim, preferring "id" over "sub".
func (c *Claims) UserID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Sub
}

// ExpiresAt returns the expiry as a time, or the zero time when the claim
// is absent.
func (c *Claims) ExpiresAt() time.Time {
	if c.Exp == 0 {
		return time.Time{}
	}
	return time.Unix(c.Exp, 0)
}

// Decode parses the middle segment of a bearer token as base64url JSON and
// returns the claims. No signature verification is performed.
func Decode(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrEmptyToken
	}

	unverified, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Join(ErrMalformedToken, err)
	}

	mapClaims, ok := unverified.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, ErrMalformedToken
	}

	claims := &Claims{}
	claims.ID, _ = mapClaims["id"].(string)
	claims.Sub, _ = mapClaims["sub"].(string)
	claims.Role, _ = mapClaims["role"].(string)
	claims.Iss, _ = mapClaims["iss"].(string)
	claims.Aud, _ = mapClaims["aud"].(string)
	claims.Exp = numericClaim(mapClaims, "exp")
	claims.Iat = numericClaim(mapClaims, "iat")
	claims.Nbf = numericClaim(mapClaims, "nbf")
	return claims, nil
}

// IsExpired reports whether the claims are expired at the given instant.
// A missing exp claim counts as expired (fail safe).
func IsExpired(claims *Claims, now time.Time) bool {
	if claims == nil || claims.Exp == 0 {
		return true
	}
	return claims.Exp*1000 <= now.UnixMilli()
}

// Expired is IsExpired against NowTimeFunc for a raw token string. Tokens
// that fail to decode count as expired.
func Expired(raw string) bool {
	claims, err := Decode(raw)
	if err != nil {
		return true
	}
	return IsExpired(claims, NowTimeFunc())
}

func numericClaim(claims jwtlib.MapClaims, name string) int64 {
	// encoding/json decodes JWT numeric dates into float64
	if v, ok := claims[name].(float64); ok {
		return int64(v)
	}
	return 0
}
