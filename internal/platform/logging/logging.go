// Package logging builds the zap loggers used by the commands.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format names accepted by Settings.Format.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Settings configures logger construction.
type Settings struct {
	Level  string `env:"LEAVELEDGER_LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LEAVELEDGER_LOG_FORMAT" envDefault:"json"`
	// File, when set, receives a copy of every entry in addition to stderr.
	File string `env:"LEAVELEDGER_LOG_FILE"`
}

// New builds a logger that writes to stderr, leaving stdout free for
// protocol traffic such as MCP over stdio. The returned close func flushes
// the logger and releases the log file, if any.
func New(settings Settings) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(settings.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(settings.Format)) {
	case "", FormatJSON:
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case FormatConsole:
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	default:
		return nil, nil, fmt.Errorf("log format %q is not supported", settings.Format)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)}
	var logFile *os.File
	if file := strings.TrimSpace(settings.File); file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		logFile, err = os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(logFile), level))
	}
	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	closeLog := func() error {
		// Sync on stderr fails on some terminals; only the file matters here.
		_ = logger.Sync()
		if logFile == nil {
			return nil
		}
		return logFile.Close()
	}
	return logger, closeLog, nil
}
