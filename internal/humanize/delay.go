package humanize

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

type RandomDelayer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomDelayer() *RandomDelayer {
	return &RandomDelayer{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Between returns a uniform duration in [min, max).
func (d *RandomDelayer) Between(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return min + time.Duration(d.rnd.Int64N(int64(max-min)))
}

func (d *RandomDelayer) Sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(dur)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NopDelayer never waits.
type NopDelayer struct{}

func (NopDelayer) Between(time.Duration, time.Duration) time.Duration { return 0 }

func (NopDelayer) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }
