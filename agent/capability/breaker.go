package capability

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/agentkernel/agentkernel/agent/kernel"
)

// BreakerState is one state of the circuit breaker's Closed/Open/HalfOpen
// machine.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

// ErrCircuitOpen is returned in place of calling the wrapped capability
// while the breaker is Open.
var ErrCircuitOpen = errors.New("capability: circuit breaker is open")

// breaker is the shared state machine backing both breakerLLM and
// breakerTool. It trips to Open after FailureThreshold consecutive
// failures, waits Cooldown, then allows exactly one HalfOpen probe; a
// successful probe closes the circuit, a failed one reopens it.
type breaker struct {
	mu sync.Mutex

	failureThreshold int
	cooldown         time.Duration

	state        BreakerState
	consecutive  int
	openedAt     time.Time
}

func newBreaker(failureThreshold int, cooldown time.Duration) *breaker {
	return &breaker{failureThreshold: failureThreshold, cooldown: cooldown}
}

// allow reports whether a call may proceed right now, transitioning Open
// to HalfOpen once the cooldown has elapsed.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case BreakerClosed:
		return true
	case BreakerHalfOpen:
		// The single probe was admitted on the Open -> HalfOpen transition;
		// further calls wait for its outcome.
		return false
	case BreakerOpen:
		if time.Since(b.openedAt) >= b.cooldown {
			b.state = BreakerHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.consecutive = 0
}

func (b *breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerHalfOpen {
		b.state = BreakerOpen
		b.openedAt = time.Now()
		return
	}
	b.consecutive++
	if b.consecutive >= b.failureThreshold {
		b.state = BreakerOpen
		b.openedAt = time.Now()
	}
}

// State reports the breaker's current state, primarily for telemetry.
func (b *breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

type breakerLLM struct {
	inner LLM
	b     *breaker
}

// BreakerLLM wraps inner with a circuit breaker: after failureThreshold
// consecutive failures it stops calling inner for cooldown, then allows
// one probe call before deciding whether to close or reopen.
func BreakerLLM(inner LLM, failureThreshold int, cooldown time.Duration) LLM {
	return breakerLLM{inner: inner, b: newBreaker(failureThreshold, cooldown)}
}

func (w breakerLLM) Complete(ctx context.Context, req kernel.RequestLLM) (string, error) {
	if !w.b.allow() {
		return "", ErrCircuitOpen
	}
	content, err := w.inner.Complete(ctx, req)
	if err != nil {
		w.b.recordFailure()
		return "", err
	}
	w.b.recordSuccess()
	return content, nil
}

type breakerTool struct {
	inner Tool
	b     *breaker
}

// BreakerTool wraps inner with the same breaker semantics as BreakerLLM.
func BreakerTool(inner Tool, failureThreshold int, cooldown time.Duration) Tool {
	return breakerTool{inner: inner, b: newBreaker(failureThreshold, cooldown)}
}

func (w breakerTool) Call(ctx context.Context, name, args string) (string, bool, error) {
	if !w.b.allow() {
		return "", true, ErrCircuitOpen
	}
	result, retryable, err := w.inner.Call(ctx, name, args)
	if err != nil {
		w.b.recordFailure()
		return "", retryable, err
	}
	w.b.recordSuccess()
	return result, false, nil
}
