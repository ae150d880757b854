// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package main

import (
	"os"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/decred/slog"
	"github.com/fatih/color"
)

// logWriter prints log lines to stderr in color, so that they stand apart
// from the command output on stdout.
type logWriter struct {
	c *color.Color
}

func (w logWriter) Write(b []byte) (int, error) {
	return w.c.Fprint(os.Stderr, string(b))
}

func newLogger(name string, verbose bool) boost.Logger {
	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	}
	l := slog.NewBackend(logWriter{color.New(color.FgCyan)}).Logger(name)
	l.SetLevel(lvl)
	return l
}
