package logging

// file: internal/logging/zap.go

import (
	"context"
	"io"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level names accepted by InitLogging and SetLevel.
type Level string

// Supported log levels.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Supported output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// atomicLevel is shared by every logger built through this package so that
// SetLevel takes effect without rebuilding loggers.
var atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// zapLogger adapts a zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(z *zap.Logger) Logger {
	if z == nil {
		return GetNoopLogger()
	}
	return &zapLogger{sugar: z.Sugar()}
}

func (l *zapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *zapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *zapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// WithContext attaches the active trace and span ids, if any.
func (l *zapLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return &zapLogger{sugar: l.sugar.With("traceID", sc.TraceID().String(), "spanID", sc.SpanID().String())}
}

func (l *zapLogger) WithField(key string, value any) Logger {
	return &zapLogger{sugar: l.sugar.With(key, value)}
}

// NewLogger builds a zap-backed Logger writing to w in the given format.
// Unknown formats fall back to JSON.
func NewLogger(w io.Writer, format string) Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if strings.EqualFold(format, FormatConsole) {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), atomicLevel)
	return NewZapLogger(zap.New(core))
}

// InitLogging installs a JSON logger writing to w as the default logger.
func InitLogging(level Level, w io.Writer) {
	SetLevel(level)
	SetDefaultLogger(NewLogger(w, FormatJSON))
}

// SetupDefaultLogger configures the default logger from string settings,
// as they arrive from configuration.
func SetupDefaultLogger(level, format string, w io.Writer) Logger {
	SetLevel(Level(level))
	logger := NewLogger(w, format)
	SetDefaultLogger(logger)
	return logger
}

// SetLevel changes the level of every logger built by this package.
// Unrecognized levels are ignored.
func SetLevel(level Level) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(string(level)))
	if err != nil {
		return
	}
	atomicLevel.SetLevel(lvl)
}

// IsDebugEnabled reports whether debug messages are currently emitted.
func IsDebugEnabled() bool {
	return atomicLevel.Enabled(zapcore.DebugLevel)
}
