// Command apple-client-secret signs, inspects and verifies Sign in with Apple
// client secrets using the .p8 key downloaded from the Apple developer portal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/bionicotaku/lingo-utils-applejwt"
	"github.com/bionicotaku/lingo-utils-applejwt/internal/cmdutil"
)

func main() {
	logger := cmdutil.NewLogger()
	defer func() { _ = logger.Sync() }()

	envPath := cmdutil.DefaultEnvPath()
	if err := cmdutil.LoadEnvFile(envPath); err != nil {
		logger.Warn("load env file", zap.String("path", envPath), zap.Error(err))
	}

	ctx := context.Background()
	cfg, err := applejwt.LoadConfig(ctx)
	if err != nil {
		// Keep going so --help still works; subcommands report err.
		cfg = applejwt.DefaultConfig()
	}

	cmd := newCommand(cfg, err, logger, os.Stdout, time.Now)
	if err := cmd.Run(ctx, os.Args); err != nil {
		logger.Error("run command", zap.Error(err))
		os.Exit(1)
	}
}

// newCommand builds the CLI. A non-nil loadErr is returned by every
// subcommand before it does any work.
func newCommand(defaults applejwt.Config, loadErr error, logger *zap.Logger, out io.Writer, now func() time.Time) *cli.Command {
	configFromFlags := func(cmd *cli.Command) (applejwt.Config, error) {
		if loadErr != nil {
			return applejwt.Config{}, fmt.Errorf("load config from environment: %w", loadErr)
		}
		return applejwt.Config{
			TeamID:    cmd.String("team-id"),
			KeyID:     cmd.String("key-id"),
			ServiceID: cmd.String("service-id"),
			KeyFile:   cmd.String("key-file"),
			Audience:  cmd.String("audience"),
			Lifetime:  cmd.Duration("lifetime"),
		}, nil
	}

	return &cli.Command{
		Name:   "apple-client-secret",
		Usage:  "sign and verify Sign in with Apple client secrets",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "team-id", Usage: "Apple developer team id, iss (env APPLE_TEAM_ID)", Value: defaults.TeamID},
			&cli.StringFlag{Name: "key-id", Usage: "Sign in with Apple key id, kid (env APPLE_KEY_ID)", Value: defaults.KeyID},
			&cli.StringFlag{Name: "service-id", Usage: "Services ID used as client_id, sub (env APPLE_SERVICE_ID)", Value: defaults.ServiceID},
			&cli.StringFlag{Name: "key-file", Usage: "path to the AuthKey .p8 file (env APPLE_KEY_FILE)", Value: defaults.KeyFile},
			&cli.StringFlag{Name: "audience", Usage: "expected audience (env APPLE_AUDIENCE)", Value: defaults.Audience},
			&cli.DurationFlag{Name: "lifetime", Usage: "client secret lifetime (env APPLE_SECRET_LIFETIME)", Value: defaults.Lifetime},
		},
		Commands: []*cli.Command{
			claimsCommand(configFromFlags, out, now),
			signCommand(configFromFlags, logger, out, now),
			verifyCommand(configFromFlags, out, now),
		},
	}
}

type configLoader func(*cli.Command) (applejwt.Config, error)

func claimsCommand(configFromFlags configLoader, out io.Writer, now func() time.Time) *cli.Command {
	return &cli.Command{
		Name:  "claims",
		Usage: "print the JWT header and payload without signing",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := configFromFlags(cmd)
			if err != nil {
				return err
			}
			guide, err := applejwt.NewGuide(cfg, now())
			if err != nil {
				return err
			}
			header, err := guide.HeaderJSON()
			if err != nil {
				return err
			}
			payload, err := guide.PayloadJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "%s\n%s\n", header, payload)
			return err
		},
	}
}

func signCommand(configFromFlags configLoader, logger *zap.Logger, out io.Writer, now func() time.Time) *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "sign a client secret with the .p8 key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "redirect-url", Usage: "also print an authorize URL using this redirect"},
			&cli.StringFlag{Name: "state", Usage: "state parameter for the authorize URL", Value: "applejwt"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := configFromFlags(cmd)
			if err != nil {
				return err
			}
			key, err := applejwt.LoadSigningKey(cfg.KeyFile, cfg.KeyID)
			if err != nil {
				return fmt.Errorf("load key %s: %w", cfg.KeyFile, err)
			}

			issued := now()
			header, claims, err := applejwt.Build(cfg, issued)
			if err != nil {
				return err
			}
			token, err := applejwt.Sign(key, header, claims)
			if err != nil {
				return err
			}
			if _, err := applejwt.Verify(token, key, cfg, applejwt.WithClock(func() time.Time { return issued })); err != nil {
				return fmt.Errorf("self-check: %w", err)
			}
			logger.Info("signed client secret",
				zap.String("kid", header.KeyID),
				zap.String("sub", claims.Subject),
				zap.Time("expires_at", time.Unix(claims.ExpiresAt, 0).UTC()),
			)

			if _, err := fmt.Fprintln(out, token); err != nil {
				return err
			}
			redirect := cmd.String("redirect-url")
			if redirect == "" {
				return nil
			}
			conf := applejwt.OAuth2Config(cfg, token, redirect)
			_, err = fmt.Fprintf(out, "authorize_url: %s\n", applejwt.AuthorizeURL(conf, cmd.String("state")))
			return err
		},
	}
}

func verifyCommand(configFromFlags configLoader, out io.Writer, now func() time.Time) *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "verify a client secret against the .p8 key",
		ArgsUsage: "<token>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			token := cmd.Args().First()
			if token == "" {
				return fmt.Errorf("token argument is required")
			}
			cfg, err := configFromFlags(cmd)
			if err != nil {
				return err
			}
			key, err := applejwt.LoadSigningKey(cfg.KeyFile, cfg.KeyID)
			if err != nil {
				return fmt.Errorf("load key %s: %w", cfg.KeyFile, err)
			}
			claims, err := applejwt.Verify(token, key, cfg, applejwt.WithClock(now))
			if err != nil {
				return err
			}
			return printClaims(out, claims)
		},
	}
}

func printClaims(out io.Writer, claims *applejwt.Claims) error {
	lines := []string{
		"== Apple Client Secret Verified ==",
		fmt.Sprintf("key_id       : %s", claims.KeyID),
		fmt.Sprintf("issuer       : %s", claims.Issuer),
		fmt.Sprintf("subject      : %s", claims.Subject),
		fmt.Sprintf("audience     : %s", claims.Audience),
		fmt.Sprintf("issued_at    : %s", claims.IssuedAt.Format(time.RFC3339)),
		fmt.Sprintf("expires_at   : %s", claims.ExpiresAt.Format(time.RFC3339)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
