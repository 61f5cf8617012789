package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Engine drives a Session in real time, one simulated month per interval.
type Engine struct {
	Interval time.Duration // base interval per month at speed 1.0

	// Callbacks run after each month, outside the session lock.
	OnMonth func(months uint64)
	OnYear  func(months uint64)

	session *Session

	mu      sync.Mutex
	months  uint64
	speed   float64 // multiplier: 1.0 = one month per Interval, 0 = paused
	running bool
	stop    chan struct{}
}

// NewEngine creates a driver for session with default settings.
func NewEngine(session *Session, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = time.Second
	}
	return &Engine{
		Interval: interval,
		session:  session,
		speed:    1.0,
	}
}

// Run advances the simulation until ctx is cancelled or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stop = make(chan struct{})
	stop := e.stop
	e.mu.Unlock()

	slog.Info("simulation engine started", "speed", e.Speed(), "interval", e.Interval)
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		slog.Info("simulation engine stopped", "months", e.Months())
	}()

	for {
		speed := e.Speed()
		wait := 100 * time.Millisecond
		if speed > 0 {
			start := time.Now()
			e.step()
			wait = time.Duration(float64(e.Interval)/speed) - time.Since(start)
		}
		if wait < 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-time.After(wait):
		}
	}
}

// Stop halts a running loop. Safe to call when not running.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running && e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
}

// Speed returns the current multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the multiplier. Zero or negative pauses.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.speed = max(speed, 0)
	e.mu.Unlock()
	slog.Info("speed changed", "speed", speed)
}

// Months is how many months this driver has advanced.
func (e *Engine) Months() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.months
}

// step advances one month.
func (e *Engine) step() {
	newYear := e.session.Step()

	e.mu.Lock()
	e.months++
	n := e.months
	e.mu.Unlock()

	if e.OnMonth != nil {
		e.OnMonth(n)
	}
	if newYear && e.OnYear != nil {
		e.OnYear(n)
	}
}
