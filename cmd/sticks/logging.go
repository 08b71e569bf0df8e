package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/sticks/config"
)

const (
	logDir      = "logs"
	logFileName = "sticks.log"
	maxLogSize  = 10 * 1024 * 1024 // 10MB
)

// newLogger builds the process logger. The terminal belongs to the game, so output
// only ever goes to a file; without a file (and without debug) logging is off.
func newLogger(cfg config.LoggingConfig, debug bool) (*zap.Logger, error) {
	path := cfg.File
	if path == "" && debug {
		path = filepath.Join(logDir, logFileName)
	}
	if path == "" {
		return zap.NewNop(), nil
	}

	if err := prepareLogFile(path); err != nil {
		return nil, err
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	if debug {
		level = zapcore.DebugLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{path}
	zapCfg.ErrorOutputPaths = []string{path}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// prepareLogFile creates the directory and rotates files past maxLogSize
func prepareLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() <= maxLogSize {
		return nil
	}

	if err := os.Rename(path, rotatedName(path, time.Now())); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}
	return nil
}

// rotatedName is path with a timestamp before the extension
func rotatedName(path string, now time.Time) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + now.Format("20060102-150405") + ext
}
