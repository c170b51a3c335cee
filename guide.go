package applejwt

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	bannerWidth = 60

	// SignCommandPackage is the go install target of the signing command.
	SignCommandPackage = "github.com/bionicotaku/lingo-utils-applejwt/cmd/apple-client-secret@latest"
)

// Guide is the rendered set of instructions for producing an Apple client secret by hand.
type Guide struct {
	Header  SigningHeader
	Claims  ClaimSet
	KeyFile string
}

// NewGuide builds the header and claim set for cfg at now.
func NewGuide(cfg Config, now time.Time) (Guide, error) {
	header, claims, err := Build(cfg, now)
	if err != nil {
		return Guide{}, err
	}
	return Guide{Header: header, Claims: claims, KeyFile: cfg.KeyFile}, nil
}

// HeaderJSON returns the header as two-space indented JSON.
func (g Guide) HeaderJSON() (string, error) {
	return indentJSON(g.Header)
}

// PayloadJSON returns the claim set as two-space indented JSON.
func (g Guide) PayloadJSON() (string, error) {
	return indentJSON(g.Claims)
}

// Render writes the instructions to w.
func (g Guide) Render(w io.Writer) error {
	header, err := g.HeaderJSON()
	if err != nil {
		return newError(ErrCodeInternal, fmt.Errorf("encode header: %w", err))
	}
	payload, err := g.PayloadJSON()
	if err != nil {
		return newError(ErrCodeInternal, fmt.Errorf("encode payload: %w", err))
	}

	banner := strings.Repeat("=", bannerWidth)
	rule := strings.Repeat("-", bannerWidth)

	bw := bufio.NewWriter(w)
	lines := []string{
		banner,
		"Apple Sign In JWT Generator",
		banner,
		"",
		"To generate your JWT token, you have two options:",
		"",
		"OPTION 1: Use jwt.io (Manual - 2 minutes)",
		rule,
		"1. Go to: https://jwt.io",
		"2. Select algorithm: " + g.Header.Algorithm,
		"3. Edit HEADER (left side, top box) - paste this:",
		"",
		header,
		"",
		"4. Edit PAYLOAD (left side, middle box) - paste this:",
		"",
		payload,
		"",
		"5. On the RIGHT side, look for 'Private Key' box",
		"   (You may need to scroll down)",
		"6. Paste your private key from:",
		"   " + g.KeyFile,
		"",
		"7. Copy the long token from the top (starts with 'eyJ...')",
		"8. Paste it into Supabase 'Secret Key (for OAuth)' field",
		"",
		banner,
		"",
		"OPTION 2: Install the signing command and run it",
		rule,
		"Run these commands:",
		"  go install " + SignCommandPackage,
		"  apple-client-secret sign --key-file " + shellQuote(g.KeyFile),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// shellQuote wraps s in single quotes unless it is made only of characters
// a POSIX shell passes through unchanged.
func shellQuote(s string) string {
	if s != "" && strings.Trim(s, shellSafe) == "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

const shellSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789@%+=:,./_-"

func indentJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
