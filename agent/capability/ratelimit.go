package capability

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/agentkernel/agentkernel/agent/kernel"
)

// rateLimitedLLM throttles calls to inner via a token-bucket limiter,
// blocking (respecting ctx cancellation) rather than failing fast, since an
// LLM request that must wait a few hundred milliseconds for a token is
// preferable to one rejected outright.
type rateLimitedLLM struct {
	inner   LLM
	limiter *rate.Limiter
}

// RateLimitLLM wraps inner with a token-bucket limiter admitting at most
// requestsPerSecond calls per second, with a burst of burst.
func RateLimitLLM(inner LLM, requestsPerSecond float64, burst int) LLM {
	return rateLimitedLLM{inner: inner, limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

func (w rateLimitedLLM) Complete(ctx context.Context, req kernel.RequestLLM) (string, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return w.inner.Complete(ctx, req)
}
