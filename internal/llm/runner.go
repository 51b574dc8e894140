// Package llm drives generation requests against a configured provider,
// wrapping every call in a bounded retry loop. The loop is an explicit
// state machine so tests can observe transitions and simulate time
// instead of sleeping.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	llmerrors "gitscribe/internal/llm/errors"
	"gitscribe/internal/llm/providers"
)

// State identifies a position in the request lifecycle.
type State int

const (
	// Building covers preparation before the first send.
	Building State = iota
	// Sending is an in-flight provider call.
	Sending
	// Backoff is the wait between a transient failure and the next send.
	Backoff
	// Succeeded is terminal with generated text.
	Succeeded
	// Fatal is terminal, carrying the attempt count and the last error.
	Fatal
)

func (s State) String() string {
	switch s {
	case Building:
		return "building"
	case Sending:
		return "sending"
	case Backoff:
		return "backoff"
	case Succeeded:
		return "succeeded"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Transition records one state change. Attempt is 1-based and zero for
// Building. Delay is set only for Backoff; Err only for Backoff and
// Fatal.
type Transition struct {
	State   State
	Attempt int
	Delay   time.Duration
	Err     error
}

// Clock schedules backoff waits. The real clock arms a timer; tests
// substitute one that records delays and returns immediately.
type Clock interface {
	// Sleep blocks for d or until ctx is done, returning ctx.Err()
	// when cancelled first.
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryPolicy bounds the retry loop.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// Multiplier grows the delay between consecutive attempts.
	Multiplier float64
	// Jitter is the fraction of the delay randomized around the
	// exponential value, in [0, 1].
	Jitter float64
}

// DefaultRetryPolicy returns the policy used when configuration does
// not override it.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
		Jitter:       0.2,
	}
}

// normalized clamps out-of-range values so a partially filled policy
// cannot stall or spin the loop.
func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay < 0 {
		p.InitialDelay = 0
	}
	if p.MaxDelay < p.InitialDelay {
		p.MaxDelay = p.InitialDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	if p.Jitter > 1 {
		p.Jitter = 1
	}
	return p
}

// FatalError is the terminal failure of a generation request after all
// permitted attempts.
type FatalError struct {
	Attempts int
	Err      error
}

func (e *FatalError) Error() string {
	if e.Attempts == 1 {
		return fmt.Sprintf("generation failed after 1 attempt: %v", e.Err)
	}
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Runner executes generation requests with retry and backoff.
type Runner struct {
	provider providers.Provider
	policy   RetryPolicy

	// Clock overrides the timer-based clock, letting tests simulate
	// time. Nil selects the system clock.
	Clock Clock
	// Rand overrides the jitter source with values in [0, 1). Nil
	// selects math/rand.
	Rand func() float64
	// OnTransition observes every state change when set.
	OnTransition func(Transition)
}

// NewRunner wraps a provider in a retry loop governed by policy.
func NewRunner(provider providers.Provider, policy RetryPolicy) *Runner {
	return &Runner{provider: provider, policy: policy}
}

// Generate sends the request, retrying transient and rate-limited
// failures until the policy is exhausted. Authentication and
// malformed-request failures end the loop after their first attempt,
// as do oversized-prompt errors, which the caller resolves by
// shrinking the prompt rather than resending it. The terminal failure
// is a *FatalError wrapping the last provider error.
func (r *Runner) Generate(ctx context.Context, req providers.Request) (string, error) {
	policy := r.policy.normalized()
	requestID := uuid.NewString()
	r.observe(Transition{State: Building})

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		r.observe(Transition{State: Sending, Attempt: attempt})
		slog.Debug("Sending provider request",
			"request_id", requestID,
			"provider", r.provider.Name(),
			"model", req.Model,
			"attempt", attempt)

		result, err := r.provider.Complete(ctx, req)
		attempts = attempt
		if err == nil {
			r.observe(Transition{State: Succeeded, Attempt: attempt})
			return result, nil
		}

		lastErr = err
		if !retryable(err) || attempt == policy.MaxAttempts {
			break
		}

		delay := r.delayFor(attempt, err, policy)
		r.observe(Transition{State: Backoff, Attempt: attempt, Delay: delay, Err: err})
		slog.Debug("Provider request failed, backing off",
			"request_id", requestID,
			"provider", r.provider.Name(),
			"attempt", attempt,
			"delay", delay,
			"error", err)

		if err := r.clock().Sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	r.observe(Transition{State: Fatal, Attempt: attempts, Err: lastErr})
	return "", &FatalError{Attempts: attempts, Err: lastErr}
}

// delayFor computes the wait before the attempt following a failed
// attempt k. A rate-limit delay supplied by the backend takes priority
// over the exponential schedule; both respect the per-attempt cap.
func (r *Runner) delayFor(attempt int, err error, policy RetryPolicy) time.Duration {
	var perr *llmerrors.ProviderError
	if errors.As(err, &perr) && perr.Class == llmerrors.RateLimited && perr.RetryAfter > 0 {
		if perr.RetryAfter > policy.MaxDelay {
			return policy.MaxDelay
		}
		return perr.RetryAfter
	}

	delay := float64(policy.InitialDelay) * math.Pow(policy.Multiplier, float64(attempt-1))
	if delay > float64(policy.MaxDelay) {
		delay = float64(policy.MaxDelay)
	}
	if policy.Jitter > 0 {
		spread := delay * policy.Jitter
		delay += spread * (2*r.random() - 1)
	}
	if delay < 0 {
		delay = 0
	}
	if delay > float64(policy.MaxDelay) {
		delay = float64(policy.MaxDelay)
	}
	return time.Duration(delay)
}

func (r *Runner) observe(tr Transition) {
	if r.OnTransition != nil {
		r.OnTransition(tr)
	}
}

func (r *Runner) clock() Clock {
	if r.Clock != nil {
		return r.Clock
	}
	return systemClock{}
}

func (r *Runner) random() float64 {
	if r.Rand != nil {
		return r.Rand()
	}
	return rand.Float64()
}

// retryable reports whether another attempt may succeed. Oversized
// prompts are excluded because resending the same prompt cannot change
// the outcome.
func retryable(err error) bool {
	var cwerr *llmerrors.ContextWindowError
	if errors.As(err, &cwerr) {
		return false
	}
	var perr *llmerrors.ProviderError
	if errors.As(err, &perr) {
		return perr.Retryable()
	}
	return false
}
