// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress draws a single-line terminal progress display for the
// comparison collector.
package progress

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the minimum time between two redraws.
const DefaultInterval = 100 * time.Millisecond

// Bar counts finished comparisons and redraws itself at most once per
// interval. It is safe for concurrent use by the collector's workers.
type Bar struct {
	w        io.Writer
	clock    clockwork.Clock
	interval time.Duration

	total atomic.Int64
	done  atomic.Int64

	mu       sync.Mutex
	started  time.Time
	lastDraw time.Time
}

// New returns a bar writing to w and timed by clock.
func New(w io.Writer, clock clockwork.Clock) *Bar {
	return &Bar{w: w, clock: clock, interval: DefaultInterval}
}

// Start resets the bar for total comparisons and draws it.
func (b *Bar) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total.Store(int64(total))
	b.done.Store(0)
	b.started = b.clock.Now()
	b.draw()
}

// Increment records one finished comparison. Workers that find the bar
// busy drawing do not wait for it.
func (b *Bar) Increment() {
	n := b.done.Add(1)
	if !b.mu.TryLock() {
		return
	}
	defer b.mu.Unlock()

	if n == b.total.Load() || b.clock.Since(b.lastDraw) >= b.interval {
		b.draw()
	}
}

// Finish draws the final state and ends the line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.draw()
	fmt.Fprintln(b.w)
}

// draw must be called with mu held.
func (b *Bar) draw() {
	now := b.clock.Now()
	b.lastDraw = now

	done, total := b.done.Load(), b.total.Load()
	pct := int64(100)
	if total > 0 {
		pct = done * 100 / total
	}

	fmt.Fprintf(b.w, "\rProgress %3d%%    Comparison# %8d/%-8d    [%s]",
		pct, done, total, elapsed(now.Sub(b.started)))
}

func elapsed(d time.Duration) string {
	s := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}
