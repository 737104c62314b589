package main

import (
	"io"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the console logger of the CLI. Info and above by
// default, debug with verbose, errors only with quiet.
func newLogger(w io.Writer, quiet, verbose bool) *zap.Logger {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder

	minLevel := zapcore.InfoLevel
	switch {
	case quiet:
		minLevel = zapcore.ErrorLevel
	case verbose:
		minLevel = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(ec),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= minLevel
		}),
	)
	return zap.New(core)
}

// setMaxProcs sizes GOMAXPROCS to the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(log *zap.Logger) {
	_, _ = maxprocs.Set(maxprocs.Logger(log.Sugar().Debugf))
}
