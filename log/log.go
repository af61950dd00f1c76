package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel defines the severity level for log messages.
type LogLevel string

const (
	// LogInfo is used for general informational messages.
	LogInfo LogLevel = "info"

	// LogWarn is used for potentially harmful situations.
	LogWarn LogLevel = "warn"

	// LogError is used for error events that might still allow the application to continue running.
	LogError LogLevel = "error"

	// LogDebug is used for debugging messages with detailed internal information.
	LogDebug LogLevel = "debug"
)

func (l LogLevel) zapLevel() (zapcore.Level, error) {
	switch l {
	case LogDebug:
		return zap.DebugLevel, nil
	case LogInfo, "":
		return zap.InfoLevel, nil
	case LogWarn:
		return zap.WarnLevel, nil
	case LogError:
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf("unknown log level %q", string(l))
	}
}

// NewZapLogger builds a production zap logger at the given level.
func NewZapLogger(level LogLevel) (*zap.Logger, error) {
	lvl, err := level.zapLevel()
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// NewTestLogger returns a console logger at debug level for tests and local runs.
func NewTestLogger() *zap.Logger {
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		zap.DebugLevel,
	)
	return zap.New(consoleCore)
}

// Eff emits a structured log entry. Fields are converted with zap.Any.
// A nil logger drops the entry.
func Eff(logger *zap.Logger, level LogLevel, msg string, fields map[string]interface{}) {
	if logger == nil {
		return
	}
	zfields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			zfields = append(zfields, zap.NamedError(k, err))
			continue
		}
		zfields = append(zfields, zap.Any(k, v))
	}

	switch level {
	case LogInfo:
		logger.Info(msg, zfields...)
	case LogWarn:
		logger.Warn(msg, zfields...)
	case LogError:
		logger.Error(msg, zfields...)
	case LogDebug:
		logger.Debug(msg, zfields...)
	default:
		logger.Info(msg, zfields...)
	}
}

// Sync flushes the logger, reporting a failure through the logger itself.
func Sync(logger *zap.Logger) {
	if logger == nil {
		return
	}
	if err := logger.Sync(); err != nil {
		logger.Warn("failed to sync logger", zap.Error(err))
	}
}
