package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields to be added to a logger
type Fields map[string]interface{}

// Logger contains logger and fields
type Logger struct {
	logger *zap.SugaredLogger
	fields []interface{}
}

var (
	level            = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	zapSugaredLogger *zap.SugaredLogger
)

func init() {
	zapSugaredLogger = build(false)
}

func build(development bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = level
	zapLogger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		zapLogger = zap.NewNop()
	}
	return zapLogger.Sugar()
}

// Setup rebuilds the global logger. lvl accepts zap level names ("debug", "info", ...),
// an unknown name keeps the current level.
func Setup(lvl string, development bool) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(lvl)); err == nil {
		level.SetLevel(l)
	}
	zapSugaredLogger = build(development)
}

// Log returns an empty field logger
func Log() Logger {
	return Logger{
		logger: zapSugaredLogger,
		fields: []interface{}{},
	}
}

// WithField add a key/value pair to its fields
func (l Logger) WithField(key string, value interface{}) Logger {
	fields := make([]interface{}, len(l.fields), len(l.fields)+2)
	copy(fields, l.fields)
	l.fields = append(fields, key, value)
	return l
}

// WithFields add multiple key/value pairs to its fields
func (l Logger) WithFields(kvs Fields) Logger {
	for k, v := range kvs {
		l = l.WithField(k, v)
	}
	return l
}

func (l Logger) sugar() *zap.SugaredLogger {
	if l.logger == nil {
		return zapSugaredLogger.With(l.fields...)
	}
	return l.logger.With(l.fields...)
}

// Debug log
func (l Logger) Debug(args ...interface{}) {
	l.sugar().Debug(args...)
}

// Info log
func (l Logger) Info(args ...interface{}) {
	l.sugar().Info(args...)
}

// Warn log
func (l Logger) Warn(args ...interface{}) {
	l.sugar().Warn(args...)
}

// Error log
func (l Logger) Error(args ...interface{}) {
	l.sugar().Error(args...)
}

// Panic log
func (l Logger) Panic(args ...interface{}) {
	l.sugar().Panic(args...)
}
