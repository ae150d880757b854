package wait

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestTaper(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewTaperingTickerQueue(time.Millisecond, time.Millisecond*10, nil)
	go q.Run(ctx)

	var last time.Time
	intervals := make([]time.Duration, 0, 10)
	var expiration sync.WaitGroup
	expiration.Add(1)

	q.Wait(&Waiter{
		Expiration: time.Now().Add(time.Millisecond * 60),
		TryFunc: func() TryDirective {
			if !last.IsZero() {
				intervals = append(intervals, time.Since(last))
			}
			last = time.Now()
			return TryAgain
		},
		ExpireFunc: func() {
			expiration.Done()
		},
	})

	expiration.Wait()

	if len(intervals) < 3 {
		t.Fatalf("only %d intervals", len(intervals))
	}
	var sum time.Duration
	for _, i := range intervals[:fullSpeedTicks-1] {
		sum += i
	}
	avg := sum / (fullSpeedTicks - 1)
	// Loose bound for the race detector.
	if avg < time.Millisecond || avg > time.Millisecond*10 {
		t.Fatalf("first intervals are out of bound: %s", avg)
	}
}

func TestNextTick(t *testing.T) {
	now := time.Now()
	exp := now.Add(time.Hour)
	fast, slow := time.Second, 10*time.Second
	if d := nextTick(0, slow, fast, now, exp).Sub(now); d != fast {
		t.Fatalf("wrong first delay %s", d)
	}
	prev := fast
	for tick := fullSpeedTicks; tick < fullyTapered; tick++ {
		d := nextTick(tick, slow, fast, now, exp).Sub(now)
		if d < prev {
			t.Fatalf("delay decreased at tick %d: %s < %s", tick, d, prev)
		}
		prev = d
	}
	if d := nextTick(fullyTapered, slow, fast, now, exp).Sub(now); d != slow {
		t.Fatalf("wrong tapered delay %s", d)
	}
	if next := nextTick(fullyTapered, slow, fast, now, now.Add(time.Second)); !next.Equal(now.Add(time.Second)) {
		t.Fatal("next tick after expiration")
	}
}

func TestPoll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := NewTaperingTickerQueue(time.Millisecond, time.Millisecond*5, nil)
	go q.Run(ctx)

	var n int
	res, err := Poll(ctx, q, time.Second, func(context.Context) (int, bool, error) {
		n++
		return n, n == 3, nil
	})
	if err != nil {
		t.Fatalf("Poll error: %v", err)
	}
	if res != 3 {
		t.Fatalf("wrong result %d", res)
	}

	errBoom := errors.New("boom")
	if _, err := Poll(ctx, q, time.Second, func(context.Context) (int, bool, error) {
		return 0, false, errBoom
	}); !errors.Is(err, errBoom) {
		t.Fatalf("expected check error, got %v", err)
	}

	if _, err := Poll(ctx, q, 10*time.Millisecond, func(context.Context) (int, bool, error) {
		return 0, false, nil
	}); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}
