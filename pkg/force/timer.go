package force

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval approximates one animation frame.
const DefaultInterval = 16 * time.Millisecond

// Timer drives Simulation.Step on a fixed interval from its own goroutine.
//
// Every step runs with the supplied locker held, so the same locker must
// guard all other access to the simulation and its nodes. After the
// simulation reports "end" the timer idles until Restart is called.
type Timer struct {
	sim      *Simulation
	interval time.Duration
	mu       sync.Locker

	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewTimer creates a stopped timer. A nil locker means no locking.
func NewTimer(sim *Simulation, interval time.Duration, mu sync.Locker) *Timer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if mu == nil {
		mu = noopLocker{}
	}
	return &Timer{
		sim:      sim,
		interval: interval,
		mu:       mu,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the stepping goroutine. It returns immediately; the loop
// ends when ctx is cancelled or Stop is called.
func (t *Timer) Start(ctx context.Context) {
	go t.run(ctx)
}

// Restart wakes an idle timer. It never blocks.
func (t *Timer) Restart() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Stop signals the loop to end. It is safe to call more than once, and on
// a timer that was never started.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Wait blocks until a started loop has exited.
func (t *Timer) Wait() { <-t.done }

// Done is closed when a started loop exits.
func (t *Timer) Done() <-chan struct{} { return t.done }

func (t *Timer) run(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	running := true
	for {
		if !running {
			select {
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			case <-t.wake:
				running = true
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case <-t.wake:
		case <-ticker.C:
			t.mu.Lock()
			running = t.sim.Step()
			t.mu.Unlock()
		}
	}
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}
