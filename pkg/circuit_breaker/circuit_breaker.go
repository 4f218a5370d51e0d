package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type State uint8

const (
	Closed State = iota + 1
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

var ErrOpen = errors.New("circuit breaker is open")

type CircuitBreaker interface {
	Call(fn func() error) error
	State() State
	Reset()
}

type circuitBreaker struct {
	mu    sync.Mutex
	state State

	// window is a ring of the last outcomes, true meaning failure.
	window []bool
	pos    int
	// failRatio of the window that trips the breaker.
	failRatio float64
	// cooldown before an open breaker lets a probe through.
	cooldown time.Duration
	openedAt time.Time
	// probes is the number of consecutive half-open successes needed to close.
	probes    int
	succeeded int
	probing   bool
}

func New(windowSize int, cooldown time.Duration, failRatio float64, probes int) CircuitBreaker {
	if windowSize < 1 {
		windowSize = 1
	}
	return &circuitBreaker{
		state:     Closed,
		window:    make([]bool, windowSize),
		failRatio: failRatio,
		cooldown:  cooldown,
		probes:    probes,
	}
}

func (cb *circuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == Open {
		if time.Since(cb.openedAt) <= cb.cooldown {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.state = HalfOpen
		cb.succeeded = 0
	}
	probe := cb.state == HalfOpen
	if probe {
		// one trial call at a time while half-open
		if cb.probing {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.probing = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if probe {
		cb.probing = false
	}
	cb.window[cb.pos] = err != nil
	cb.pos = (cb.pos + 1) % len(cb.window)

	if probe && cb.state == HalfOpen {
		if err != nil {
			cb.trip()
			return err
		}
		cb.succeeded++
		if cb.succeeded >= cb.probes {
			cb.reset()
		}
		return nil
	}

	fails := 0
	for _, failed := range cb.window {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(cb.window)) >= cb.failRatio {
		cb.trip()
	}
	return err
}

func (cb *circuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.reset()
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.succeeded = 0
	cb.openedAt = time.Now()
}

func (cb *circuitBreaker) reset() {
	for i := range cb.window {
		cb.window[i] = false
	}
	cb.pos = 0
	cb.succeeded = 0
	cb.state = Closed
}
