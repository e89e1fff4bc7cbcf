package logger

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog.Logger and owns its file sink.
type Logger struct {
	logger zerolog.Logger
	file   *RotatingWriter
}

// Config holds logger configuration
type Config struct {
	Level    string // debug, info, warn, error
	File     string // log file path; empty disables the file sink
	Console  bool   // enable console output on stderr
	Pretty   bool   // human-readable console format
	MaxSize  int    // max size in MB before rotation
	MaxAge   int    // max age in days of rotated files
	Compress bool   // gzip rotated files

	// Stderr overrides the console destination. Tests only.
	Stderr io.Writer
}

// New creates a logger and installs it as the global zerolog logger.
// Console output goes to stderr so it never mixes with command output.
func New(cfg Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, consoleWriter(cfg))
	}

	var file *RotatingWriter
	if cfg.File != "" {
		file, err = NewRotatingWriter(cfg.File, RotationConfig{
			MaxSizeMB: cfg.MaxSize,
			MaxAge:    cfg.MaxAge,
			Compress:  cfg.Compress,
		})
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = logger

	return &Logger{
		logger: logger,
		file:   file,
	}, nil
}

func consoleWriter(cfg Config) io.Writer {
	out := cfg.Stderr
	noColor := true
	if out == nil {
		out = colorable.NewColorableStderr()
		noColor = !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd())
	}
	if !cfg.Pretty {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: time.Kitchen,
	}
}

// Close flushes and closes the file sink, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Zerolog returns the underlying zerolog.Logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.logger
}

// Debug logs a debug message
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info logs an info message
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn logs a warning message
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error logs an error message
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

// With creates a child logger context.
func (l *Logger) With() zerolog.Context {
	return l.logger.With()
}

// Component returns a child logger tagged with a component name.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.logger.With().Str("component", name).Logger()
}

// DefaultConfig returns the default logger configuration. The console sink
// is off so command output stays clean; the CLI turns it on for --verbose.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Console:  false,
		Pretty:   true,
		MaxSize:  10,
		MaxAge:   30,
		Compress: true,
	}
}
