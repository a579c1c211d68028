// Package logging builds the zerolog logger used across btstatus.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dhavalsavalia/btstatus/internal/config"
	"github.com/rs/zerolog"
)

// New returns a console-formatted logger at the configured level. Output goes
// to cfg.File when set, otherwise to fallback. The returned closer releases
// the log file and is never nil.
func New(cfg config.LogConfig, fallback io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("log level: %w", err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := fallback
	var closer io.Closer = nopCloser{}
	color := true

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
		}
		out, closer, color = f, f, false
	}

	if out == nil {
		out = io.Discard
	}

	writer := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !color,
		TimeFormat: time.TimeOnly,
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
