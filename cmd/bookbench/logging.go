package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/certainbookstore/bookbench/internal/metrics"
	"github.com/certainbookstore/bookbench/internal/workload"
)

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	_, terminal := w.(*os.File)
	console := zerolog.ConsoleWriter{Out: zerolog.SyncWriter(w), TimeFormat: time.TimeOnly, NoColor: !terminal}
	return zerolog.New(console).Level(lvl).With().Timestamp().Logger(), nil
}

// zerologFailureLogger reports every failed measured interaction at warn level.
type zerologFailureLogger struct {
	logger zerolog.Logger
}

func (l *zerologFailureLogger) LogFailure(worker int, interaction workload.Interaction, err error) {
	if err == nil {
		return
	}
	l.logger.Warn().
		Int("worker", worker).
		Stringer("interaction", interaction).
		Str("reason", metrics.FailureReason(err)).
		Err(err).
		Msg("interaction failed")
}
