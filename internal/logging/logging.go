// Package logging builds the zap logger shared by the CLI and the API clients.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects verbosity and destination
type Options struct {
	Verbose bool
	Debug   bool
	// Writer defaults to os.Stderr so stdout stays reserved for reports.
	Writer io.Writer
}

// Level maps the CLI verbosity flags to a zap level.
func (o Options) Level() zapcore.Level {
	switch {
	case o.Debug:
		return zapcore.DebugLevel
	case o.Verbose:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}

// New creates a console logger that prints "[LEVEL] message" lines.
func New(opts Options) *zap.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	encoderCfg.NameKey = ""
	encoderCfg.StacktraceKey = ""
	encoderCfg.ConsoleSeparator = " "
	encoderCfg.EncodeLevel = bracketLevelEncoder
	if !opts.Debug {
		encoderCfg.CallerKey = ""
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		opts.Level(),
	)

	logger := zap.New(core)
	if opts.Debug {
		logger = logger.WithOptions(zap.AddCaller())
	}
	return logger
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func bracketLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}
