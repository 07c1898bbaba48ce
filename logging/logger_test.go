package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// syncBuffer adapts bytes.Buffer to zapcore.WriteSyncer.
type syncBuffer struct {
	bytes.Buffer
}

func (b *syncBuffer) Sync() error { return nil }

func TestNewLoggerCreatesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	logger, err := NewLogger(false, logPath)
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}

	logger.Info("startup message", zap.String("key", "value"))
	_ = logger.Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "startup message") {
		t.Error("log file does not contain the written message")
	}
}

func TestLoggerFieldsReachFileCore(t *testing.T) {
	var console, file syncBuffer
	core := NewMultiCoreWithWriters(zapcore.DebugLevel, &console, &file, false)
	logger := NewLoggerWithCore(core)

	logger.Info("render complete",
		zap.String("hash", "abc123"),
		zap.Int("width", 250),
	)

	var entry map[string]interface{}
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Fatalf("file output is not JSON: %v\n%s", err, file.String())
	}
	if entry["message"] != "render complete" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["hash"] != "abc123" {
		t.Errorf("hash field = %v", entry["hash"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if console.Len() == 0 {
		t.Error("console core received nothing")
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var console, file syncBuffer
	core := NewMultiCoreWithWriters(zapcore.InfoLevel, &console, &file, false)
	logger := NewLoggerWithCore(core)

	logger.Debug("hidden")
	logger.Info("visible")

	out := file.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message leaked through an info-level core")
	}
	if !strings.Contains(out, "visible") {
		t.Error("info message missing")
	}
}

func TestLoggerPrintfStyle(t *testing.T) {
	var console, file syncBuffer
	core := NewMultiCoreWithWriters(zapcore.DebugLevel, &console, &file, false)
	logger := NewLoggerWithCore(core)

	logger.Infof("rendered %d of %d", 3, 5)

	if !strings.Contains(file.String(), "rendered 3 of 5") {
		t.Errorf("printf-style message missing from output: %s", file.String())
	}
}

func TestDefaultFileWriterConfig(t *testing.T) {
	cfg := DefaultFileWriterConfig()
	if cfg.MaxSizeMB != DefaultMaxSizeMB {
		t.Errorf("MaxSizeMB = %d, want %d", cfg.MaxSizeMB, DefaultMaxSizeMB)
	}
	if cfg.MaxBackups != DefaultMaxBackups {
		t.Errorf("MaxBackups = %d, want %d", cfg.MaxBackups, DefaultMaxBackups)
	}
	if cfg.MaxAgeDays != DefaultMaxAgeDays {
		t.Errorf("MaxAgeDays = %d, want %d", cfg.MaxAgeDays, DefaultMaxAgeDays)
	}
	if !cfg.Compress {
		t.Error("Compress must default to true")
	}
}
