package logger

import (
	"io"
	stdlog "log"

	"github.com/aleister1102/globalping-bots/internal/common"
	"github.com/rs/zerolog"
)

// LoggerBuilder provides fluent interface for building loggers
type LoggerBuilder struct {
	config    LoggerConfig
	factory   *WriterFactory
	converter *ConfigConverter
	err       error
}

// NewLoggerBuilder creates a new logger builder
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		config:    DefaultLoggerConfig(),
		factory:   NewWriterFactory(),
		converter: NewConfigConverter(),
	}
}

// WithConfig sets the logger configuration. An unparsable level is reported
// by Build.
func (lb *LoggerBuilder) WithConfig(cfg FileLogConfig) *LoggerBuilder {
	loggerConfig, err := lb.converter.ConvertConfig(cfg)
	loggerConfig.Console = lb.config.Console
	loggerConfig.Service = lb.config.Service
	lb.config = loggerConfig
	lb.err = err
	return lb
}

// WithService tags every entry with the binary that wrote it.
func (lb *LoggerBuilder) WithService(name string) *LoggerBuilder {
	lb.config.Service = name
	return lb
}

// WithConsole redirects console output, mainly for tests.
func (lb *LoggerBuilder) WithConsole(w io.Writer) *LoggerBuilder {
	lb.config.Console = w
	return lb
}

// Build creates the logger instance
func (lb *LoggerBuilder) Build() (*Logger, error) {
	if lb.err != nil {
		return nil, lb.err
	}
	if err := lb.validateConfig(); err != nil {
		return nil, err
	}

	writers, err := lb.createWriters()
	if err != nil {
		return nil, err
	}
	if len(writers) == 0 {
		return nil, common.NewError("no output writers configured")
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.TraceLevel).
		With().
		Timestamp()
	if lb.config.Service != "" {
		ctx = ctx.Str("service", lb.config.Service)
	}
	zerologInstance := ctx.Logger()

	// The instance stays at trace so SetLevel can lower the global level
	// on config reload.
	zerolog.SetGlobalLevel(lb.config.Level)
	lb.configureStandardLog(zerologInstance)

	return &Logger{
		zerolog: zerologInstance,
		config:  lb.config,
	}, nil
}

func (lb *LoggerBuilder) validateConfig() error {
	if lb.config.EnableFile && lb.config.FilePath == "" {
		return common.NewConfigurationError("log_config", "log_file", "file path required when file logging enabled")
	}
	if lb.config.MaxSizeMB <= 0 {
		return common.NewConfigurationError("log_config", "max_log_size_mb", "max size must be positive")
	}
	return nil
}

func (lb *LoggerBuilder) createWriters() ([]io.Writer, error) {
	var writers []io.Writer

	if lb.config.EnableConsole {
		writers = append(writers, lb.factory.CreateConsoleWriter(lb.config.Format, lb.config.Console))
	}

	if lb.config.EnableFile {
		fileWriter, err := lb.factory.CreateFileWriter(lb.config)
		if err != nil {
			return nil, common.WrapErrorf(err, "failed to open log file %s", lb.config.FilePath)
		}
		writers = append(writers, fileWriter)
	}

	return writers, nil
}

// configureStandardLog routes the standard log package, which some SDKs use,
// through zerolog.
func (lb *LoggerBuilder) configureStandardLog(logger zerolog.Logger) {
	stdlog.SetOutput(logger)
	stdlog.SetFlags(0)
}
