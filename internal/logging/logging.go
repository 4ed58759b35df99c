// Package logging builds the per-invocation logger. Commands run as short
// hook processes, so output goes to stderr in console form: one summary
// line per invocation at info, stage detail only under --verbose.
package logging

import (
	"errors"
	"io"
	"os"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing console-encoded lines to w. The default
// level is info so every invocation emits its one-line summary; verbose
// lowers it to debug for the per-stage detail.
func New(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}

// ForCLI returns the stderr logger used by commands.
func ForCLI(verbose bool) *zap.Logger {
	return New(os.Stderr, verbose)
}

// Sync flushes the logger, ignoring the EINVAL/ENOTTY errors that syncing
// a terminal stderr produces on Linux.
func Sync(l *zap.Logger) error {
	err := l.Sync()
	var errno syscall.Errno
	if errors.As(err, &errno) && (errno == syscall.EINVAL || errno == syscall.ENOTTY) {
		return nil
	}
	return err
}
