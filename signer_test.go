package applejwt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
)

// writeP8 stores key as a PKCS#8 PEM file the way Apple ships AuthKey_*.p8.
func writeP8(t *testing.T, key any) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal pkcs8: %v", err)
	}
	path := filepath.Join(t.TempDir(), "AuthKey_KEY1234567.p8")
	data := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return path
}

func newP256(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func TestLoadSigningKey(t *testing.T) {
	path := writeP8(t, newP256(t))

	key, err := LoadSigningKey(path, "KEY1234567")
	if err != nil {
		t.Fatalf("LoadSigningKey: %v", err)
	}
	if key.KeyID() != "KEY1234567" {
		t.Fatalf("unexpected kid: %s", key.KeyID())
	}
	if key.KeyType() != jwa.EC {
		t.Fatalf("unexpected key type: %s", key.KeyType())
	}
}

func TestLoadSigningKey_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSigningKey(filepath.Join(t.TempDir(), "absent.p8"), "kid")
		if CodeOf(err) != ErrCodeKeyUnavailable {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := LoadSigningKey("", "kid")
		if CodeOf(err) != ErrCodeKeyUnavailable {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseSigningKey([]byte("not a key"), "kid")
		if CodeOf(err) != ErrCodeInvalidKey {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("wrong curve", func(t *testing.T) {
		key, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		_, err = LoadSigningKey(writeP8(t, key), "kid")
		if CodeOf(err) != ErrCodeInvalidKey {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rsa key", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		_, err = LoadSigningKey(writeP8(t, key), "kid")
		if CodeOf(err) != ErrCodeInvalidKey {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestSign_HeaderAndPayload(t *testing.T) {
	raw := newP256(t)
	key, err := LoadSigningKey(writeP8(t, raw), "KEY1234567")
	if err != nil {
		t.Fatalf("LoadSigningKey: %v", err)
	}

	header, claims, err := Build(testConfig(), time.Unix(1_700_000_000, 0))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	token, err := Sign(key, header, claims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 || !strings.HasPrefix(token, "eyJ") {
		t.Fatalf("unexpected compact token: %s", token)
	}

	pub, err := jwk.FromRaw(&raw.PublicKey)
	if err != nil {
		t.Fatalf("public jwk: %v", err)
	}
	payload, err := jws.Verify([]byte(token), jws.WithKey(jwa.ES256, pub))
	if err != nil {
		t.Fatalf("jws.Verify: %v", err)
	}
	want, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	if string(payload) != string(want) {
		t.Fatalf("payload mismatch:\n%s\nwant\n%s", payload, want)
	}

	msg, err := jws.Parse([]byte(token))
	if err != nil {
		t.Fatalf("jws.Parse: %v", err)
	}
	hdr := msg.Signatures()[0].ProtectedHeaders()
	if hdr.Algorithm() != jwa.ES256 {
		t.Fatalf("unexpected alg: %s", hdr.Algorithm())
	}
	if hdr.KeyID() != "KEY1234567" {
		t.Fatalf("unexpected kid: %s", hdr.KeyID())
	}
}

func TestSign_Errors(t *testing.T) {
	key, err := LoadSigningKey(writeP8(t, newP256(t)), "KEY1234567")
	if err != nil {
		t.Fatalf("LoadSigningKey: %v", err)
	}
	header, claims, err := Build(testConfig(), time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := Sign(nil, header, claims); CodeOf(err) != ErrCodeKeyUnavailable {
		t.Fatalf("nil key: unexpected error %v", err)
	}

	bad := header
	bad.Algorithm = "RS256"
	if _, err := Sign(key, bad, claims); CodeOf(err) != ErrCodeSigningFailed {
		t.Fatalf("bad alg: unexpected error %v", err)
	}

	bad = header
	bad.KeyID = ""
	if _, err := Sign(key, bad, claims); CodeOf(err) != ErrCodeSigningFailed {
		t.Fatalf("missing kid: unexpected error %v", err)
	}
}
