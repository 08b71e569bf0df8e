package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/sticks/config"
)

func TestNewLogger_DisabledByDefault(t *testing.T) {
	logger, err := newLogger(config.LoggingConfig{Level: "info", Format: "console"}, false)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if logger.Core().Enabled(0) {
		t.Error("Expected no-op logger without a file")
	}
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sticks.log")
	logger, err := newLogger(config.LoggingConfig{Level: "info", Format: "console", File: path}, false)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}

	logger.Info("Test log message")
	logger.Debug("filtered")
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "Test log message") {
		t.Errorf("Expected message in log file, got %q", data)
	}
	if strings.Contains(string(data), "filtered") {
		t.Error("Expected debug entry filtered at info level")
	}
}

func TestNewLogger_DebugLowersLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, err := newLogger(config.LoggingConfig{Level: "warn", Format: "json", File: path}, true)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}

	logger.Debug("visible")
	logger.Sync()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"msg":"visible"`) {
		t.Errorf("Expected json debug entry, got %q", data)
	}
}

func TestPrepareLogFile_Rotation(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, logFileName)

	// Create a large log file (>10MB)
	largeFile, err := os.Create(logPath)
	if err != nil {
		t.Fatalf("Failed to create large log file: %v", err)
	}
	if err := largeFile.Truncate(maxLogSize + 1); err != nil {
		t.Fatalf("Failed to grow log file: %v", err)
	}
	largeFile.Close()

	if err := prepareLogFile(logPath); err != nil {
		t.Fatalf("prepareLogFile: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read logs directory: %v", err)
	}
	rotatedFound := false
	for _, entry := range entries {
		if entry.Name() != logFileName && filepath.Ext(entry.Name()) == ".log" {
			rotatedFound = true
		}
	}
	if !rotatedFound {
		t.Error("Expected to find rotated log file")
	}
	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Error("Expected original path free for a new log")
	}
}

func TestPrepareLogFile_SmallFileKept(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), logFileName)
	if err := os.WriteFile(logPath, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := prepareLogFile(logPath); err != nil {
		t.Fatalf("prepareLogFile: %v", err)
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("Expected small log kept in place, got %v", err)
	}
}

func TestRotatedName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	got := rotatedName("logs/sticks.log", now)
	if got != "logs/sticks-20240309-140506.log" {
		t.Errorf("Expected timestamped name, got %s", got)
	}
}
