package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// SetupLogger function setup logger.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := WrapWithStacktrace(slog.NewJSONHandler(os.Stdout, &ops))
	slog.SetDefault(slog.New(handler))
}

func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

func (l *slogLogger) Debug(msg string, fields ...any) { l.logger.Debug(msg, fields...) }
func (l *slogLogger) Info(msg string, fields ...any)  { l.logger.Info(msg, fields...) }
func (l *slogLogger) Warn(msg string, fields ...any)  { l.logger.Warn(msg, fields...) }
func (l *slogLogger) Error(msg string, fields ...any) { l.logger.Error(msg, fields...) }

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: l.logger.With(fields...), level: l.level}
}

func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.logger.Enabled(ctx, slog.Level(level))
}

// defaultProvider is the package-level LoggerProvider backed by slog.
type defaultProvider struct {
	level *slog.LevelVar
}

func newDefaultProvider() *defaultProvider {
	return &defaultProvider{level: new(slog.LevelVar)}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *defaultProvider) GetLogger() Logger {
	handler := WrapWithStacktrace(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: p.level,
	}))
	return &slogLogger{logger: slog.New(handler), level: p.level}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *defaultProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *defaultProvider) SetLevel(level Level) {
	p.level.Set(slog.Level(level))
}

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = newDefaultProvider()
)

// SetLoggerProvider replaces the package-level logger provider.
// Tests use this to capture log output with a TestLoggerProvider.
func SetLoggerProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns the default logger from the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a named logger from the current provider.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}
