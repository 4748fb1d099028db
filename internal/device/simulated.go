package device

import (
	"context"
	"math/rand/v2"
	"time"
)

// SimulatedWatcher emits a random walk around Origin. It stands in for the
// real device stream in the CLI and in manual testing.
type SimulatedWatcher struct {
	Origin   Position
	Interval time.Duration
	// Jitter is the maximum drift per tick, in degrees.
	Jitter float64
}

func (w *SimulatedWatcher) Watch(ctx context.Context, opts Options) (<-chan Update, error) {
	interval := w.Interval
	if interval <= 0 {
		interval = time.Second
	}

	ch := make(chan Update)
	go func() {
		defer close(ch)
		pos := w.Origin
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case ch <- Update{Position: pos}:
			case <-ctx.Done():
				return
			}
			select {
			case <-ticker.C:
				pos.Latitude += (rand.Float64()*2 - 1) * w.Jitter
				pos.Longitude += (rand.Float64()*2 - 1) * w.Jitter
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
