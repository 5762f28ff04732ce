// Package logger provides structured logging with context support.
package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.SugaredLogger with context-aware logging.
type Logger struct {
	*zap.SugaredLogger
}

type (
	loggerKey struct{}
	runKey    struct{}
)

// Config holds logger configuration.
type Config struct {
	Level       string // debug, info, warn, error
	Development bool   // pretty print for dev
	OutputPaths []string
}

// New creates a new Logger from configuration.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var config zap.Config
	if cfg.Development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	config.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		config.OutputPaths = cfg.OutputPaths
	}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{zapLogger.Sugar()}, nil
}

// NewFromZap wraps an existing zap logger.
func NewFromZap(l *zap.Logger) *Logger {
	return &Logger{l.Sugar()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default returns a default logger writing to stderr, so record output on
// stdout stays clean.
func Default() *Logger {
	defaultOnce.Do(func() {
		l, err := New(Config{Level: "info", OutputPaths: []string{"stderr"}})
		if err != nil {
			l = Nop()
		}
		defaultLogger = l
	})

	return defaultLogger
}

// WithContext adds the pipeline run id carried by ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id, ok := ctx.Value(runKey{}).(string); ok && id != "" {
		return &Logger{l.SugaredLogger.With("run_id", id)}
	}

	return l
}

// With adds key-value pairs to logger.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{l.SugaredLogger.With(keysAndValues...)}
}

// WithComponent adds component name to logger.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{l.SugaredLogger.With("component", name)}
}

// --- Context-based logger access ---

// WithLogger adds Logger to context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithRunID adds a pipeline run id to context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runKey{}, id)
}

// RunID returns the pipeline run id from context.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runKey{}).(string)

	return id
}

// FromContext returns Logger from context or default logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return l.WithContext(ctx)
	}

	return Default().WithContext(ctx)
}

// fromContextSkip skips the package-level helper frame when reporting the caller.
func fromContextSkip(ctx context.Context) *zap.SugaredLogger {
	return FromContext(ctx).WithOptions(zap.AddCallerSkip(1))
}

// Debug logs at debug level from context.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	fromContextSkip(ctx).Debugw(msg, keysAndValues...)
}

// Info logs at info level from context.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	fromContextSkip(ctx).Infow(msg, keysAndValues...)
}

// Warn logs at warn level from context.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	fromContextSkip(ctx).Warnw(msg, keysAndValues...)
}

// Error logs at error level from context.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	fromContextSkip(ctx).Errorw(msg, keysAndValues...)
}
