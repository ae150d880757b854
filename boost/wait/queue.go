// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package wait provides a tapering retry queue for polling on-chain state,
// such as transaction and user operation receipts.
package wait

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/boostxyz/boost-protocol-sub000/boost"
)

// TryDirective tells the queue whether to keep trying a Waiter.
type TryDirective bool

const (
	// TryAgain schedules another attempt after the tapered delay.
	TryAgain TryDirective = false
	// DontTryAgain removes the Waiter from the queue.
	DontTryAgain TryDirective = true
)

// Waiter is run on a tapering schedule until TryFunc returns DontTryAgain or
// the Expiration passes, in which case ExpireFunc runs. ExpireFunc also runs
// for waiters still queued when the queue shuts down.
type Waiter struct {
	Expiration time.Time
	TryFunc    func() TryDirective
	ExpireFunc func()
}

// Attempts are made every fastestInterval for the first fullSpeedTicks, then
// the delay grows linearly to slowestInterval at fullyTapered attempts.
const (
	fullSpeedTicks = 3
	fullyTapered   = 15
)

type queuedWaiter struct {
	*Waiter
	tick     int
	nextTick time.Time
}

// TaperingTickerQueue runs Waiters, frequently at first and then less often
// the longer they go unresolved.
type TaperingTickerQueue struct {
	fastestInterval time.Duration
	slowestInterval time.Duration
	queueWaiter     chan *queuedWaiter
	log             boost.Logger
}

// NewTaperingTickerQueue is the constructor for a TaperingTickerQueue.
func NewTaperingTickerQueue(fastestInterval, slowestInterval time.Duration, log boost.Logger) *TaperingTickerQueue {
	if log == nil {
		log = boost.Disabled
	}
	return &TaperingTickerQueue{
		fastestInterval: fastestInterval,
		slowestInterval: slowestInterval,
		queueWaiter:     make(chan *queuedWaiter, 16),
		log:             log,
	}
}

// Wait queues the Waiter. TryFunc is first run from the Run goroutine, not
// the caller's. A Waiter that has already expired is expired immediately.
func (q *TaperingTickerQueue) Wait(w *Waiter) {
	if !time.Now().Before(w.Expiration) {
		q.log.Debugf("Waiter expired at %s before it was queued", w.Expiration)
		w.ExpireFunc()
		return
	}
	q.queueWaiter <- &queuedWaiter{Waiter: w, nextTick: time.Now()}
}

// Run runs the queue until the context is canceled. Waiters still queued
// when it returns are expired.
func (q *TaperingTickerQueue) Run(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()

	try := func(w *queuedWaiter) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !q.attempt(w) {
				return
			}
			select {
			case q.queueWaiter <- w:
			case <-ctx.Done():
				w.ExpireFunc()
			}
		}()
	}

	// pending is sorted by nextTick. The timer is set for the first.
	var pending []*queuedWaiter
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	resetTimer := func() {
		timer.Stop()
		if len(pending) > 0 {
			timer.Reset(time.Until(pending[0].nextTick))
		}
	}

	for {
		select {
		case <-timer.C:
			now := time.Now()
			for len(pending) > 0 && !pending[0].nextTick.After(now) {
				try(pending[0])
				pending = pending[1:]
			}
			resetTimer()
		case w := <-q.queueWaiter:
			if !w.nextTick.After(time.Now()) {
				try(w)
				continue
			}
			i, _ := slices.BinarySearchFunc(pending, w.nextTick, func(qw *queuedWaiter, t time.Time) int {
				return qw.nextTick.Compare(t)
			})
			pending = slices.Insert(pending, i, w)
			if i == 0 {
				resetTimer()
			}
		case <-ctx.Done():
			for _, w := range pending {
				w.ExpireFunc()
			}
			return
		}
	}
}

// attempt runs TryFunc once and reports whether the waiter should be queued
// again, with its next tick set.
func (q *TaperingTickerQueue) attempt(w *queuedWaiter) bool {
	if w.TryFunc() == DontTryAgain {
		return false
	}
	now := time.Now()
	if !now.Before(w.Expiration) {
		w.ExpireFunc()
		return false
	}
	w.tick++
	w.nextTick = nextTick(w.tick, q.slowestInterval, q.fastestInterval, now, w.Expiration)
	return true
}

// nextTick schedules the attempt after the given number of tries.
func nextTick(tick int, slowest, fastest time.Duration, now, expiration time.Time) time.Time {
	delay := slowest
	if tick < fullyTapered {
		delay = fastest
		if tick >= fullSpeedTicks {
			frac := float64(tick+1-fullSpeedTicks) / (fullyTapered - fullSpeedTicks)
			delay += time.Duration(math.Round(frac * float64(slowest-fastest)))
		}
	}
	if next := now.Add(delay); next.Before(expiration) {
		return next
	}
	return expiration
}

// ErrExpired is returned by Poll when the timeout passes first.
var ErrExpired = errors.New("wait expired")

// Poll blocks until check reports done, returns an error, or timeout
// passes. Check is run on the queue, which must be running.
func Poll[T any](ctx context.Context, q *TaperingTickerQueue, timeout time.Duration, check func(context.Context) (res T, done bool, err error)) (T, error) {
	type result struct {
		res T
		err error
	}
	resC := make(chan result, 1)
	q.Wait(&Waiter{
		Expiration: time.Now().Add(timeout),
		TryFunc: func() TryDirective {
			res, done, err := check(ctx)
			if err != nil || done {
				resC <- result{res, err}
				return DontTryAgain
			}
			return TryAgain
		},
		ExpireFunc: func() {
			var zero T
			resC <- result{zero, ErrExpired}
		},
	})
	select {
	case r := <-resC:
		return r.res, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
