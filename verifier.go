package applejwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const defaultClockSkew = 30 * time.Second

type verifyParams struct {
	clock     func() time.Time
	clockSkew time.Duration
}

// VerifyOption customizes a single Verify call.
type VerifyOption func(*verifyParams)

// WithClock overrides the time source used to check exp and iat.
func WithClock(clock func() time.Time) VerifyOption {
	return func(p *verifyParams) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithClockSkew sets the tolerated clock drift.
func WithClockSkew(skew time.Duration) VerifyOption {
	return func(p *verifyParams) {
		if skew >= 0 {
			p.clockSkew = skew
		}
	}
}

// Verify checks that token is an ES256 client secret signed by key for cfg.
//
// key may be the private signing key or its public half.
func Verify(token string, key jwk.Key, cfg Config, opts ...VerifyOption) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, newError(ErrCodeInvalidToken, errors.New("token is empty"))
	}
	if key == nil {
		return nil, newError(ErrCodeKeyUnavailable, errors.New("verification key is nil"))
	}
	cfg.normalize()

	params := verifyParams{clock: time.Now, clockSkew: defaultClockSkew}
	for _, opt := range opts {
		opt(&params)
	}

	pub, err := jwk.PublicKeyOf(key)
	if err != nil {
		return nil, newError(ErrCodeInvalidKey, err)
	}

	msg, err := jws.Parse([]byte(token))
	if err != nil {
		return nil, newError(ErrCodeInvalidToken, err)
	}
	sigs := msg.Signatures()
	if len(sigs) != 1 {
		return nil, newError(ErrCodeInvalidToken, fmt.Errorf("expected one signature, got %d", len(sigs)))
	}
	kid := sigs[0].ProtectedHeaders().KeyID()
	if cfg.KeyID != "" && kid != cfg.KeyID {
		return nil, newError(ErrCodeInvalidToken, fmt.Errorf("key id mismatch: got %q, want %q", kid, cfg.KeyID))
	}

	parsed, err := jwt.Parse([]byte(token), jwt.WithKey(jwa.ES256, pub), jwt.WithValidate(false))
	if err != nil {
		return nil, newError(ErrCodeInvalidToken, err)
	}

	validateOpts := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(params.clock)),
		jwt.WithAcceptableSkew(params.clockSkew),
		jwt.WithIssuer(cfg.TeamID),
		jwt.WithAudience(cfg.Audience),
	}
	if err := jwt.Validate(parsed, validateOpts...); err != nil {
		switch {
		case errors.Is(err, jwt.ErrInvalidIssuer()):
			return nil, newError(ErrCodeInvalidIssuer, err)
		case errors.Is(err, jwt.ErrInvalidAudience()):
			return nil, newError(ErrCodeInvalidAudience, err)
		case errors.Is(err, jwt.ErrTokenExpired()):
			return nil, newError(ErrCodeExpired, err)
		case errors.Is(err, jwt.ErrTokenNotYetValid()), errors.Is(err, jwt.ErrInvalidIssuedAt()):
			return nil, newError(ErrCodeNotYetValid, err)
		default:
			return nil, newError(ErrCodeInvalidToken, err)
		}
	}
	if parsed.Expiration().IsZero() {
		return nil, newError(ErrCodeInvalidToken, errors.New(`"exp" claim is missing`))
	}

	claims := extractClaims(parsed, kid)
	if claims.Subject != cfg.ServiceID {
		return nil, newError(ErrCodeInvalidSubject, fmt.Errorf("subject mismatch: got %q, want %q", claims.Subject, cfg.ServiceID))
	}
	return claims, nil
}

func extractClaims(token jwt.Token, kid string) *Claims {
	var audience []string
	if aud := token.Audience(); len(aud) > 0 {
		audience = append([]string(nil), aud...)
	}
	return &Claims{
		KeyID:     kid,
		Issuer:    token.Issuer(),
		Subject:   token.Subject(),
		Audience:  audience,
		IssuedAt:  token.IssuedAt().UTC(),
		ExpiresAt: token.Expiration().UTC(),
	}
}
