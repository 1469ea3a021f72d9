// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "copytrader", "logs", "copytrader.log"),
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	// Console writer
	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					switch ll {
					case "debug":
						return "\033[36mDBG\033[0m"
					case "info":
						return "\033[32mINF\033[0m"
					case "warn":
						return "\033[33mWRN\033[0m"
					case "error":
						return "\033[31mERR\033[0m"
					default:
						return ll
					}
				}
				return "???"
			},
		}
		writers = append(writers, consoleWriter)
	}

	// File writer with rotation
	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	if len(writers) == 0 {
		writer = os.Stdout
	} else if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// SetInfoLevel sets the global log level to info.
func SetInfoLevel() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// ContextKey is the type for context keys.
type ContextKey string

// LoggerKey is the context key for the logger.
const LoggerKey ContextKey = "logger"

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithFollow adds a follow id to the logger context.
func WithFollow(logger zerolog.Logger, followID string) zerolog.Logger {
	return logger.With().Str("follow_id", followID).Logger()
}

// WithWallet adds a wallet address to the logger context.
func WithWallet(logger zerolog.Logger, wallet string) zerolog.Logger {
	return logger.With().Str("wallet", wallet).Logger()
}

// LogCopy logs a successfully copied trade.
func LogCopy(logger zerolog.Logger, followID, tradeID, marketID string, size, value float64) {
	logger.Info().
		Str("event", "copy").
		Str("follow_id", followID).
		Str("trade_id", tradeID).
		Str("market_id", marketID).
		Float64("size", size).
		Float64("value", value).
		Msg("Trade copied")
}

// LogSkip logs a skipped trade and the reason it was rejected.
func LogSkip(logger zerolog.Logger, followID, tradeID, reason string) {
	logger.Debug().
		Str("event", "skip").
		Str("follow_id", followID).
		Str("trade_id", tradeID).
		Str("reason", reason).
		Msg("Trade skipped")
}

// LogExecutionFailure logs a failed order submission.
func LogExecutionFailure(logger zerolog.Logger, followID, tradeID string, err error) {
	logger.Warn().
		Str("event", "execution_failure").
		Str("follow_id", followID).
		Str("trade_id", tradeID).
		Err(err).
		Msg("Order submission failed")
}

// LogPoll logs a poll cycle against the trade history source.
func LogPoll(logger zerolog.Logger, wallet string, fetched, emitted int, duration time.Duration) {
	logger.Debug().
		Str("event", "poll").
		Str("wallet", wallet).
		Int("fetched", fetched).
		Int("emitted", emitted).
		Dur("duration", duration).
		Msg("Poll cycle completed")
}

// LogWhale logs a whale trade observed on a followed wallet.
func LogWhale(logger zerolog.Logger, wallet, tradeID, marketID string, notional float64) {
	logger.Info().
		Str("event", "whale_trade").
		Str("wallet", wallet).
		Str("trade_id", tradeID).
		Str("market_id", marketID).
		Float64("notional", notional).
		Msg("Whale trade observed")
}
