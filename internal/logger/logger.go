package logger

import (
	"github.com/rs/zerolog"
)

// Logger represents the main logger with configuration
type Logger struct {
	zerolog zerolog.Logger
	config  LoggerConfig
}

// GetZerolog returns the underlying zerolog instance
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zerolog
}

// New creates a logger for service from the config file's log section.
func New(cfg FileLogConfig, service string) (zerolog.Logger, error) {
	logger, err := NewLoggerBuilder().WithService(service).WithConfig(cfg).Build()
	if err != nil {
		return zerolog.Logger{}, err
	}
	return *logger.GetZerolog(), nil
}

// SetLevel changes the global level, e.g. after the config file changed.
func SetLevel(levelStr string) error {
	level, err := NewLogLevelParser().ParseLevel(levelStr)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	return nil
}
