// Command apple-jwt-guide prints the header, payload and steps needed to
// produce a Sign in with Apple client secret by hand. It reads no flags.
package main

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/bionicotaku/lingo-utils-applejwt"
	"github.com/bionicotaku/lingo-utils-applejwt/internal/cmdutil"
)

var now = time.Now

func main() {
	logger := cmdutil.NewLogger()
	defer func() { _ = logger.Sync() }()

	envPath := cmdutil.DefaultEnvPath()
	if err := cmdutil.LoadEnvFile(envPath); err != nil {
		logger.Warn("load env file", zap.String("path", envPath), zap.Error(err))
	}

	if err := run(context.Background(), os.Stdout, now); err != nil {
		logger.Error("render guide", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, now func() time.Time) error {
	cfg, err := applejwt.LoadConfig(ctx)
	if err != nil {
		return err
	}
	guide, err := applejwt.NewGuide(cfg, now())
	if err != nil {
		return err
	}
	return guide.Render(out)
}
