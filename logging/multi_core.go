package logging

import (
	"os"
	"time"

	"go.uber.org/zap/zapcore"
)

// NewMultiCore creates a zapcore.Core that tees output to console and a
// rotating log file. The file side always uses JSON encoding; the console
// side is colored/human-readable in development and JSON in production.
func NewMultiCore(level zapcore.Level, filePath string, isDev bool) (zapcore.Core, error) {
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(newFileEncoderConfig()),
		NewFileWriter(filePath),
		level,
	)

	var consoleEncoder zapcore.Encoder
	if isDev {
		consoleEncoder = zapcore.NewConsoleEncoder(newConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(newFileEncoderConfig())
	}
	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level)

	return zapcore.NewTee(consoleCore, fileCore), nil
}

// NewMultiCoreWithWriters tees output to the provided writers instead of
// stdout and a file. Used by tests to capture log output.
func NewMultiCoreWithWriters(level zapcore.Level, consoleWriter, fileWriter zapcore.WriteSyncer, isDev bool) zapcore.Core {
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(newFileEncoderConfig()), fileWriter, level)

	var consoleEncoder zapcore.Encoder
	if isDev {
		consoleEncoder = zapcore.NewConsoleEncoder(newConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(newFileEncoderConfig())
	}
	consoleCore := zapcore.NewCore(consoleEncoder, consoleWriter, level)

	return zapcore.NewTee(consoleCore, fileCore)
}

func newFileEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "timestamp",
		LevelKey:      "level",
		NameKey:       "source",
		CallerKey:     "caller",
		MessageKey:    "message",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,

		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func newConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := newFileEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("15:04:05.000"))
	}
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}
