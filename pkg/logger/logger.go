// Package logger wraps zap with loggers carried in context.Context and the
// field names the numbering engine logs under.
package logger

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "numbering/internal/core/context"
)

// Field keys shared by the service, the allocators and the HTTP layer.
const (
	KeyFormatID   = "format_id"
	KeyTarget     = "target"
	KeyOrgID      = "org_id"
	KeyContextKey = "context_key"
	KeySpanID     = "span_id"
	KeyComponent  = "component"
)

// Logger wraps zap.SugaredLogger with context-aware logging.
type Logger struct {
	*zap.SugaredLogger
}

type loggerKey struct{}

// Config holds logger configuration.
type Config struct {
	Level       string // debug, info, warn, error
	Development bool   // console encoder with colors
	OutputPaths []string
}

// New builds a Logger. An unknown level is an error rather than a silent
// fallback, so a typo in config does not hide debug output.
func New(cfg Config) (*Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(cfg.Level); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}

	zl, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{zl.Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

// Wrap adapts an existing zap logger, e.g. an observer core in tests.
func Wrap(zl *zap.Logger) *Logger {
	return &Logger{zl.Sugar()}
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default returns the process-wide production logger writing to stdout.
func Default() *Logger {
	defaultOnce.Do(func() {
		zc := zap.NewProductionConfig()
		zc.OutputPaths = []string{"stdout"}
		zl, err := zc.Build(zap.AddCallerSkip(1))
		if err != nil {
			zl = zap.NewNop()
		}
		defaultLogger = &Logger{zl.Sugar()}
	})
	return defaultLogger
}

// WithContext adds the trace fields of ctx and, inside an OpenTelemetry span,
// the span id, so log lines can be matched to tx and allocator spans.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := appctx.GetTrace(ctx).Fields()
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields, KeySpanID, sc.SpanID().String())
	}
	if len(fields) == 0 {
		return l
	}
	return &Logger{l.SugaredLogger.With(fields...)}
}

// With adds key-value pairs to logger.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{l.SugaredLogger.With(keysAndValues...)}
}

// WithComponent adds component name to logger.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With(KeyComponent, name)
}

// --- Context-based logger access ---

// WithLogger adds Logger to context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// stored returns the logger put in ctx, without trace fields.
func stored(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return l
	}
	return Default()
}

// WithFields returns a context whose logger carries keysAndValues on every
// line logged below it.
func WithFields(ctx context.Context, keysAndValues ...any) context.Context {
	return WithLogger(ctx, stored(ctx).With(keysAndValues...))
}

// WithFormat tags everything logged below ctx with the format being used.
func WithFormat(ctx context.Context, formatID fmt.Stringer, target string) context.Context {
	return WithFields(ctx, KeyFormatID, formatID.String(), KeyTarget, target)
}

// FromContext returns Logger from context or default logger.
func FromContext(ctx context.Context) *Logger {
	return stored(ctx).WithContext(ctx)
}

// Debug logs at debug level from context.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Debugw(msg, keysAndValues...)
}

// Info logs at info level from context.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Infow(msg, keysAndValues...)
}

// Warn logs at warn level from context.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Warnw(msg, keysAndValues...)
}

// Error logs at error level from context.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Errorw(msg, keysAndValues...)
}
