package auth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/ngmetro/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ExpirySkew is subtracted from exp so a token cannot lapse mid-request.
const ExpirySkew = 5 * time.Minute

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeClaims decodes the payload segment of a bearer token without
// verifying its signature.
func DecodeClaims(token string) (jwt.MapClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, &domain.TokenDecodeError{Err: domain.ErrTokenMalformed}
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, &domain.TokenDecodeError{Err: fmt.Errorf("decode payload segment: %w", err)}
	}

	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, &domain.TokenDecodeError{Err: fmt.Errorf("parse claims: %w", err)}
	}

	return claims, nil
}

func ExpiresAt(token string) (time.Time, error) {
	claims, err := DecodeClaims(token)
	if err != nil {
		return time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, &domain.TokenDecodeError{Err: fmt.Errorf("read exp claim: %w", err)}
	}
	if exp == nil {
		return time.Time{}, &domain.TokenDecodeError{Err: domain.ErrTokenMissingExpiry}
	}

	return exp.Time, nil
}

// IsExpired reports whether token must not be used at now. Undecodable
// tokens and tokens without exp are expired.
func IsExpired(token string, now time.Time) bool {
	expiresAt, err := ExpiresAt(token)
	if err != nil {
		return true
	}

	return !now.Before(expiresAt.Add(-ExpirySkew))
}

// Validator binds IsExpired to a clock.
type Validator struct {
	Now func() time.Time
}

func (v Validator) IsExpired(token string) bool {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return IsExpired(token, now())
}
