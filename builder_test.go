package applejwt

import (
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		TeamID:    "TEAM123456",
		KeyID:     "KEY1234567",
		ServiceID: "com.example.web.signin",
		KeyFile:   "/keys/AuthKey_KEY1234567.p8",
	}
}

func TestBuild_FixedTime(t *testing.T) {
	const issued = int64(1_700_000_000)

	header, claims, err := Build(testConfig(), time.Unix(issued, 0))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if header.Algorithm != "ES256" {
		t.Fatalf("unexpected alg: %s", header.Algorithm)
	}
	if header.KeyID != "KEY1234567" {
		t.Fatalf("unexpected kid: %s", header.KeyID)
	}
	if claims.IssuedAt != issued {
		t.Fatalf("unexpected iat: %d", claims.IssuedAt)
	}
	if claims.ExpiresAt != issued+15552000 {
		t.Fatalf("unexpected exp: %d", claims.ExpiresAt)
	}
	if claims.Issuer != "TEAM123456" {
		t.Fatalf("unexpected iss: %s", claims.Issuer)
	}
	if claims.Audience != "https://appleid.apple.com" {
		t.Fatalf("unexpected aud: %s", claims.Audience)
	}
	if claims.Subject != "com.example.web.signin" {
		t.Fatalf("unexpected sub: %s", claims.Subject)
	}
	if claims.Lifetime() != 180*24*time.Hour {
		t.Fatalf("unexpected lifetime: %s", claims.Lifetime())
	}
}

func TestBuild_WindowIsExactAcrossTimes(t *testing.T) {
	for _, now := range []time.Time{
		time.Unix(0, 1),
		time.Unix(1_234_567_890, 999_999_999),
		time.Date(2026, time.October, 19, 12, 0, 0, 0, time.FixedZone("X", 5*3600)),
		time.Now(),
	} {
		_, claims, err := Build(testConfig(), now)
		if err != nil {
			t.Fatalf("Build(%v): %v", now, err)
		}
		if claims.IssuedAt != now.Unix() {
			t.Fatalf("iat %d, want %d", claims.IssuedAt, now.Unix())
		}
		if got := claims.ExpiresAt - claims.IssuedAt; got != 15552000 {
			t.Fatalf("exp-iat = %d, want 15552000", got)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	h1, c1, err := Build(testConfig(), now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	h2, c2, err := Build(testConfig(), now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if h1 != h2 || c1 != c2 {
		t.Fatalf("expected identical results, got %+v %+v and %+v %+v", h1, c1, h2, c2)
	}
}

func TestBuild_CustomLifetime(t *testing.T) {
	cfg := testConfig()
	cfg.Lifetime = time.Hour
	_, claims, err := Build(cfg, time.Unix(100, 0))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if claims.ExpiresAt != 3700 {
		t.Fatalf("unexpected exp: %d", claims.ExpiresAt)
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Run("zero clock", func(t *testing.T) {
		_, _, err := Build(testConfig(), time.Time{})
		var e *Error
		if !errors.As(err, &e) || e.Code != ErrCodeClockUnavailable {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing team", func(t *testing.T) {
		cfg := testConfig()
		cfg.TeamID = "  "
		_, _, err := Build(cfg, time.Now())
		if CodeOf(err) != ErrCodeInvalidConfig {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("lifetime above apple maximum", func(t *testing.T) {
		cfg := testConfig()
		cfg.Lifetime = MaxLifetime + time.Second
		_, _, err := Build(cfg, time.Now())
		if !errors.Is(err, &Error{Code: ErrCodeInvalidConfig}) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("negative lifetime", func(t *testing.T) {
		cfg := testConfig()
		cfg.Lifetime = -time.Hour
		_, _, err := Build(cfg, time.Now())
		if CodeOf(err) != ErrCodeInvalidConfig {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
