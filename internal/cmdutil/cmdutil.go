// Package cmdutil holds the start-up plumbing shared by the applejwt commands.
package cmdutil

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvFileVariable names the variable that overrides the .env location.
const EnvFileVariable = "APPLEJWT_ENV_FILE"

// DefaultEnvPath returns the .env path to load at start-up.
func DefaultEnvPath() string {
	if path := os.Getenv(EnvFileVariable); path != "" {
		return path
	}
	return ".env"
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already present in the environment are left untouched and a
// missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// NewLogger returns a console logger writing to stderr so stdout stays clean
// for rendered output.
func NewLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
