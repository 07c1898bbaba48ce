// Package logging provides the structured logger used by every component.
// It wraps zap with a console + rotating-file tee so the daemon can run
// headless (file) while still being debuggable interactively (console).
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with the daemon's output configuration.
//
// Example:
//
//	logger, err := logging.NewLogger(true, "nowplaying.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("render complete", zap.String("hash", hash))
type Logger struct {
	zap   *zap.Logger
	sugar *zap.SugaredLogger
}

// NewLogger creates a Logger for the given environment.
//
// In development mode the console output is colored and the level is Debug;
// in production the console emits JSON at Info. The file output is always
// JSON and rotates automatically (100MB, 5 backups, 30 days, compressed).
func NewLogger(isDevelopment bool, logFilePath string) (*Logger, error) {
	var level zapcore.Level
	if isDevelopment {
		level = zapcore.DebugLevel
	} else {
		level = zapcore.InfoLevel
	}

	core, err := NewMultiCore(level, logFilePath, isDevelopment)
	if err != nil {
		return nil, fmt.Errorf("failed to create log core: %w", err)
	}

	zapLogger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	)

	return &Logger{
		zap:   zapLogger,
		sugar: zapLogger.Sugar(),
	}, nil
}

// NewLoggerWithCore creates a Logger around an existing core.
// Useful for tests that capture output in a buffer.
func NewLoggerWithCore(core zapcore.Core) *Logger {
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{zap: zapLogger, sugar: zapLogger.Sugar()}
}

// Debug logs a message at debug level with structured fields.
func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zap.Debug(msg, fields...) }

// Info logs a message at info level with structured fields.
func (l *Logger) Info(msg string, fields ...zap.Field) { l.zap.Info(msg, fields...) }

// Warn logs a message at warn level with structured fields.
func (l *Logger) Warn(msg string, fields ...zap.Field) { l.zap.Warn(msg, fields...) }

// Error logs a message at error level with structured fields.
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zap.Error(msg, fields...) }

// Fatal logs a message at fatal level and exits the process.
func (l *Logger) Fatal(msg string, fields ...zap.Field) { l.zap.Fatal(msg, fields...) }

// Debugf logs a printf-style message at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

// Infof logs a printf-style message at info level.
func (l *Logger) Infof(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

// Warnf logs a printf-style message at warn level.
func (l *Logger) Warnf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

// Errorf logs a printf-style message at error level.
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Zap exposes the underlying zap.Logger for middleware that needs it.
func (l *Logger) Zap() *zap.Logger { return l.zap }

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error { return l.zap.Sync() }
