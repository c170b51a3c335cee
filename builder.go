package applejwt

import (
	"errors"
	"fmt"
	"time"
)

// Build produces the signing header and claim set for cfg at the instant now.
//
// The result depends only on cfg and now. ExpiresAt is IssuedAt plus the
// configured lifetime, in whole seconds.
func Build(cfg Config, now time.Time) (SigningHeader, ClaimSet, error) {
	if now.IsZero() {
		return SigningHeader{}, ClaimSet{}, newError(ErrCodeClockUnavailable, errors.New("current time is unset"))
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return SigningHeader{}, ClaimSet{}, newError(ErrCodeInvalidConfig, err)
	}

	issuedAt := now.Unix()
	header := SigningHeader{
		Algorithm: AlgorithmES256,
		KeyID:     cfg.KeyID,
	}
	claims := ClaimSet{
		Issuer:    cfg.TeamID,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt + int64(cfg.Lifetime/time.Second),
		Audience:  cfg.Audience,
		Subject:   cfg.ServiceID,
	}
	if claims.ExpiresAt <= claims.IssuedAt {
		return SigningHeader{}, ClaimSet{}, newError(ErrCodeInternal, fmt.Errorf("expiry %d not after issue time %d", claims.ExpiresAt, claims.IssuedAt))
	}
	return header, claims, nil
}
