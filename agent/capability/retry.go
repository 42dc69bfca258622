package capability

import (
	"context"
	"math/rand"
	"time"

	"github.com/agentkernel/agentkernel/agent/kernel"
)

// RetryPolicy configures exponential backoff with jitter.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// delay returns the backoff duration before attempt (1-indexed), with full
// jitter in [0, computed) to avoid synchronized retry storms.
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt-1)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d)))
}

// retryTool wraps a Tool with RetryPolicy, retrying only when the
// underlying call reports retryable == true.
type retryTool struct {
	inner  Tool
	policy RetryPolicy
}

// RetryTool wraps inner with exponential-backoff-and-jitter retry,
// calling inner at most policy.MaxAttempts times in total (the first call
// included), and retrying only while the tool reports its failure as
// retryable.
func RetryTool(inner Tool, policy RetryPolicy) Tool {
	return retryTool{inner: inner, policy: policy}
}

func (r retryTool) Call(ctx context.Context, name, args string) (string, bool, error) {
	var lastErr error
	var lastRetryable bool
	attempts := r.policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		result, retryable, err := r.inner.Call(ctx, name, args)
		if err == nil {
			return result, false, nil
		}
		lastErr, lastRetryable = err, retryable
		if !retryable || attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-time.After(r.policy.delay(attempt)):
		}
	}
	return "", lastRetryable, lastErr
}

// retryLLM wraps an LLM with RetryPolicy, retrying any error (LLM
// completions have no retryable/non-retryable distinction at this layer).
type retryLLM struct {
	inner  LLM
	policy RetryPolicy
}

// RetryLLM wraps inner with exponential-backoff-and-jitter retry.
func RetryLLM(inner LLM, policy RetryPolicy) LLM {
	return retryLLM{inner: inner, policy: policy}
}

func (r retryLLM) Complete(ctx context.Context, req kernel.RequestLLM) (string, error) {
	var lastErr error
	attempts := r.policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := r.inner.Complete(ctx, req)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.policy.delay(attempt)):
		}
	}
	return "", lastErr
}
