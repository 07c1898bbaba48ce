package logging

import (
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Default file rotation settings.
const (
	DefaultMaxSizeMB  = 100
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 30
)

// FileWriterConfig holds configuration for the rotating file writer.
// Zero values fall back to the defaults above.
type FileWriterConfig struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	LocalTime  bool
}

// DefaultFileWriterConfig returns the rotation settings used in production.
func DefaultFileWriterConfig() FileWriterConfig {
	return FileWriterConfig{
		MaxSizeMB:  DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAgeDays: DefaultMaxAgeDays,
		Compress:   true,
	}
}

// NewFileWriter creates a zapcore.WriteSyncer that writes to path with
// automatic size/age based rotation.
func NewFileWriter(path string) zapcore.WriteSyncer {
	return NewFileWriterWithConfig(path, DefaultFileWriterConfig())
}

// NewFileWriterWithConfig creates a rotating file writer with custom settings.
func NewFileWriterWithConfig(path string, config FileWriterConfig) zapcore.WriteSyncer {
	if config.MaxSizeMB == 0 {
		config.MaxSizeMB = DefaultMaxSizeMB
	}
	if config.MaxBackups == 0 {
		config.MaxBackups = DefaultMaxBackups
	}
	if config.MaxAgeDays == 0 {
		config.MaxAgeDays = DefaultMaxAgeDays
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
		Compress:   config.Compress,
		LocalTime:  config.LocalTime,
	})
}
