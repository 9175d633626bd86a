// Package logging builds the zerolog logger shared by the commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Debug lowers the level from info to debug.
	Debug bool

	// LogFile, when set, receives JSON lines in addition to Writer.
	LogFile string

	// Writer is the console sink. Defaults to os.Stderr.
	Writer io.Writer

	// Quiet drops console output below warn, used while a TUI owns the
	// terminal.
	Quiet bool
}

// New returns the logger and a function closing the log file.
func New(o Options) (zerolog.Logger, func() error, error) {
	if o.Writer == nil {
		o.Writer = os.Stderr
	}
	level := zerolog.InfoLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}

	var console io.Writer = o.Writer
	if f, ok := o.Writer.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		console = zerolog.ConsoleWriter{Out: o.Writer, TimeFormat: time.Kitchen}
	}
	consoleLevel := level
	if o.Quiet {
		consoleLevel = max(level, zerolog.WarnLevel)
	}
	writers := []io.Writer{&zerolog.FilteredLevelWriter{
		Writer: zerolog.LevelWriterAdapter{Writer: console},
		Level:  consoleLevel,
	}}

	closer := func() error { return nil }
	if o.LogFile != "" {
		f, err := os.OpenFile(o.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f.Close
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}
