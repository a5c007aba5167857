package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const (
	JSON = "json"
	Text = "text"
	Tint = "tint"
)

// Options controls where and how log records are written.
type Options struct {
	Type  string
	Level string
	// File, when set, receives a copy of every record as JSON.
	File io.Writer
}

// Initialize installs the default slog logger.
func Initialize(opts Options) error {
	logger, err := New(os.Stdout, opts)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)
	slog.Debug("logging initialized", "type", opts.Type, "logLevel", opts.Level)
	return nil
}

// New builds a logger writing to out according to opts.
func New(out io.Writer, opts Options) (*slog.Logger, error) {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(opts.Level))
	if err != nil {
		return nil, fmt.Errorf("could not parse log level: %v", err)
	}

	var (
		logHandlerOptions = slog.HandlerOptions{
			AddSource: logLevel <= slog.LevelDebug,
			Level:     logLevel,
		}
		logHandler slog.Handler
	)

	switch opts.Type {
	case JSON:
		logHandler = slog.NewJSONHandler(out, &logHandlerOptions)
	case Text:
		logHandler = slog.NewTextHandler(out, &logHandlerOptions)
	case Tint:
		logHandler = tint.NewHandler(out, &tint.Options{
			AddSource: logHandlerOptions.AddSource,
			Level:     logHandlerOptions.Level,
			NoColor:   !isTerminal(out),
		})
	default:
		return nil, fmt.Errorf("unknown logging type: %s", opts.Type)
	}

	if opts.File != nil {
		logHandler = fanout{logHandler, slog.NewJSONHandler(opts.File, &logHandlerOptions)}
	}

	return slog.New(logHandler), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
