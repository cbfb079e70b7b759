package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/config"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New builds the shareit process logger from the logging section of the
// config. Every record carries the app name, environment and version so
// that api, worker and cli output can be told apart in one stream.
//
// The returned closer is non-nil only for file output.
func New(cfg config.LoggingConfig, app config.AppConfig) (*zerolog.Logger, io.Closer, error) {
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatConsole {
		return nil, nil, fmt.Errorf("logging.format must be %q or %q, got %q", FormatJSON, FormatConsole, cfg.Format)
	}

	out, closer, err := openOutput(cfg)
	if err != nil {
		return nil, nil, err
	}
	if format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("app", app.Name).
		Str("env", app.Environment).
		Str("version", app.Version).
		Logger()

	return &logger, closer, nil
}

// ParseLevel maps logging.level to a zerolog level. Empty or unknown names
// fall back to info so a typo in config.yaml never silences the service.
func ParseLevel(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// openOutput resolves logging.output. Log files are appended to and their
// directory is created on demand, matching how backups are written.
func openOutput(cfg config.LoggingConfig) (io.Writer, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("logging.output=file requires logging.file_path")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return f, f, nil
	default:
		return nil, nil, fmt.Errorf("unknown logging output %q", cfg.Output)
	}
}

// Component returns a child logger tagged with the component name
// ("api", "booking_service", "outbox"...). A nil parent yields a disabled logger.
func Component(parent *zerolog.Logger, name string) zerolog.Logger {
	if parent == nil {
		return zerolog.Nop()
	}
	return parent.With().Str("component", name).Logger()
}
