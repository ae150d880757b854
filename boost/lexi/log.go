// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package lexi

import (
	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/dgraph-io/badger/v4"
)

// badgerLogger quiets badger by one level.
type badgerLogger struct {
	log boost.Logger
}

var _ badger.Logger = badgerLogger{}

func (l badgerLogger) Errorf(s string, a ...any)   { l.log.Errorf(s, a...) }
func (l badgerLogger) Warningf(s string, a ...any) { l.log.Warnf(s, a...) }
func (l badgerLogger) Infof(s string, a ...any)    { l.log.Debugf(s, a...) }
func (l badgerLogger) Debugf(s string, a ...any)   { l.log.Tracef(s, a...) }
