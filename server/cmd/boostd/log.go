// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/jrick/logrotate/rotator"
)

// Logging subsystems.
const (
	subsysMain    = "MAIN"
	subsysDB      = "DB"
	subsysIndexer = "IDX"
	subsysAPI     = "API"
)

// logRotator receives a copy of everything logged once initLogRotator has
// run. Close it on shutdown.
var logRotator *rotator.Rotator

// logWriter tees log output to stdout and the rotator. The rotator is not
// safe for concurrent writes, and the slog backend serializes writes, so
// there must be only one backend writing to a logWriter.
type logWriter struct{}

func (logWriter) Write(b []byte) (int, error) {
	os.Stdout.Write(b)
	if logRotator == nil {
		return len(b), nil
	}
	return logRotator.Write(b)
}

var (
	log = boost.Disabled

	// subsystemLoggers are disabled until parseAndSetDebugLevels runs. New
	// subsystems need an entry here.
	subsystemLoggers = map[string]boost.Logger{
		subsysMain:    boost.Disabled,
		subsysDB:      boost.Disabled,
		subsysIndexer: boost.Disabled,
		subsysAPI:     boost.Disabled,
	}
)

func supportedSubsystems() []string {
	return slices.Sorted(maps.Keys(subsystemLoggers))
}

// parseAndSetDebugLevels builds the subsystem loggers from a debuglevel
// string of the form "level" or "level,SUBSYS=level,...".
func parseAndSetDebugLevels(debugLevel string, utc bool) (*boost.LoggerMaker, error) {
	lm, err := boost.NewLoggerMaker(logWriter{}, debugLevel, utc)
	if err != nil {
		return nil, err
	}
	for subsys := range lm.Levels {
		if _, found := subsystemLoggers[subsys]; !found {
			return nil, fmt.Errorf("unknown logging subsystem %q, supported subsystems are %v",
				subsys, supportedSubsystems())
		}
	}
	for subsys := range subsystemLoggers {
		subsystemLoggers[subsys] = lm.NewLogger(subsys)
	}
	log = subsystemLoggers[subsysMain]
	return lm, nil
}

// initLogRotator opens logFile for writing, rolling it over at 32 MiB and
// keeping maxRolls compressed old logs beside it.
func initLogRotator(logFile string, maxRolls int) (err error) {
	if err = os.MkdirAll(filepath.Dir(logFile), 0700); err != nil {
		return fmt.Errorf("error creating log directory: %w", err)
	}
	if logRotator, err = rotator.New(logFile, 32*1024, false, maxRolls); err != nil {
		return fmt.Errorf("error creating log rotator: %w", err)
	}
	return nil
}
