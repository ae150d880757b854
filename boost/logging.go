// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package boost

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/decred/slog"
)

// Every component constructor accepts a Logger. All logging should take place
// through the provided logger.
type Logger = slog.Logger

// Disabled is a Logger that discards everything.
var Disabled Logger = slog.Disabled

// LoggerMaker allows creation of new log subsystems with predefined levels.
type LoggerMaker struct {
	*slog.Backend
	DefaultLevel slog.Level
	Levels       map[string]slog.Level
}

// NewLoggerMaker parses the debug level string into a new *LoggerMaker. The
// debugLevel string can specify a single verbosity for the entire system:
// "trace", "debug", "info", "warn", "error", "critical", "off", or a
// comma-delimited list of subsystem=level pairs with an optional bare default
// level, e.g. "info,IDXR=debug,API=trace".
func NewLoggerMaker(w io.Writer, debugLevel string, utc bool) (*LoggerMaker, error) {
	var opts []slog.BackendOption
	if utc {
		opts = append(opts, slog.WithFlags(slog.LUTC))
	}
	lm := &LoggerMaker{
		Backend:      slog.NewBackend(w, opts...),
		DefaultLevel: slog.LevelInfo,
		Levels:       make(map[string]slog.Level),
	}

	for _, field := range strings.Split(debugLevel, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if !strings.Contains(field, "=") {
			lvl, ok := slog.LevelFromString(field)
			if !ok {
				return nil, fmt.Errorf("invalid log level %q", field)
			}
			lm.DefaultLevel = lvl
			continue
		}
		subsys, lvlStr, _ := strings.Cut(field, "=")
		lvl, ok := slog.LevelFromString(lvlStr)
		if !ok {
			return nil, fmt.Errorf("invalid log level %q for subsystem %q", lvlStr, subsys)
		}
		lm.Levels[subsys] = lvl
	}
	return lm, nil
}

// SubLogger creates a Logger with a subsystem name "parent[name]", using any
// known log level for the parent subsystem, defaulting to the DefaultLevel if
// the parent does not have an explicitly set level.
func (lm *LoggerMaker) SubLogger(parent, name string) Logger {
	level, ok := lm.Levels[parent]
	if !ok {
		level = lm.DefaultLevel
	}
	logger := lm.Backend.Logger(fmt.Sprintf("%s[%s]", parent, name))
	logger.SetLevel(level)
	return logger
}

// NewLogger creates a new Logger for the subsystem with the given name. An
// explicit level argument wins over a level parsed for the subsystem, which
// wins over the DefaultLevel.
func (lm *LoggerMaker) NewLogger(name string, level ...slog.Level) Logger {
	lvl, ok := lm.Levels[name]
	if !ok {
		lvl = lm.DefaultLevel
	}
	if len(level) > 0 {
		lvl = level[0]
	}
	logger := lm.Backend.Logger(name)
	logger.SetLevel(lvl)
	return logger
}

// StdOutLogger creates a Logger with the provided name with lvl as the log
// level that prints to standard out.
func StdOutLogger(name string, lvl slog.Level) Logger {
	logger := slog.NewBackend(os.Stdout).Logger(name)
	logger.SetLevel(lvl)
	return logger
}
