package applejwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
)

// LoadSigningKey reads the PKCS#8 .p8 private key at path and tags it with keyID.
func LoadSigningKey(path, keyID string) (jwk.Key, error) {
	if strings.TrimSpace(path) == "" {
		return nil, newError(ErrCodeKeyUnavailable, errors.New("key file path is empty"))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(ErrCodeKeyUnavailable, err)
	}
	return ParseSigningKey(data, keyID)
}

// ParseSigningKey parses a PEM encoded EC P-256 private key.
func ParseSigningKey(data []byte, keyID string) (jwk.Key, error) {
	key, err := jwk.ParseKey(data, jwk.WithPEM(true))
	if err != nil {
		return nil, newError(ErrCodeInvalidKey, err)
	}
	ecKey, ok := key.(jwk.ECDSAPrivateKey)
	if !ok {
		return nil, newError(ErrCodeInvalidKey, fmt.Errorf("expected EC private key, got %s", key.KeyType()))
	}
	if ecKey.Crv() != jwa.P256 {
		return nil, newError(ErrCodeInvalidKey, fmt.Errorf("expected curve %s, got %s", jwa.P256, ecKey.Crv()))
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.ES256); err != nil {
		return nil, newError(ErrCodeInternal, fmt.Errorf("set alg: %w", err))
	}
	if keyID != "" {
		if err := key.Set(jwk.KeyIDKey, keyID); err != nil {
			return nil, newError(ErrCodeInternal, fmt.Errorf("set kid: %w", err))
		}
	}
	return key, nil
}

// Sign returns the compact ES256 serialization of claims.
//
// The payload is the same JSON object the guide prints, so a token signed here
// and one produced by hand on jwt.io carry identical claims.
func Sign(key jwk.Key, header SigningHeader, claims ClaimSet) (string, error) {
	if key == nil {
		return "", newError(ErrCodeKeyUnavailable, errors.New("signing key is nil"))
	}
	if header.Algorithm != AlgorithmES256 {
		return "", newError(ErrCodeSigningFailed, fmt.Errorf("unsupported algorithm %q", header.Algorithm))
	}
	if header.KeyID == "" {
		return "", newError(ErrCodeSigningFailed, errors.New("key id is required"))
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", newError(ErrCodeInternal, fmt.Errorf("encode claims: %w", err))
	}

	hdrs := jws.NewHeaders()
	if err := hdrs.Set(jws.KeyIDKey, header.KeyID); err != nil {
		return "", newError(ErrCodeInternal, fmt.Errorf("set kid: %w", err))
	}

	signed, err := jws.Sign(payload, jws.WithKey(jwa.ES256, key, jws.WithProtectedHeaders(hdrs)))
	if err != nil {
		return "", newError(ErrCodeSigningFailed, err)
	}
	return string(signed), nil
}
