package capability

import (
	"context"
	"strings"

	"github.com/agentkernel/agentkernel/agent/kernel"
)

// StreamSource is a model client that delivers a completion as a sequence
// of chunks rather than a single response, for use with ReconcileStream.
// The model/anthropic, model/openai and model/bedrock adapters do not
// implement it; they implement LLM directly.
type StreamSource interface {
	// Stream invokes onChunk once per chunk of the completion as it
	// arrives. It must return only once the stream is fully consumed or
	// ctx is cancelled.
	Stream(ctx context.Context, req kernel.RequestLLM, onChunk func(chunk string)) error
}

// streamingReconciler adapts a StreamSource into an LLM by accumulating
// every chunk before returning, so the kernel — which has no concept of a
// partial completion — only ever observes one finished LLMCompleted event
// per RequestLLM, regardless of how the underlying SDK streamed it.
type streamingReconciler struct {
	source StreamSource
}

// ReconcileStream adapts a StreamSource into an LLM.
func ReconcileStream(source StreamSource) LLM {
	return streamingReconciler{source: source}
}

func (r streamingReconciler) Complete(ctx context.Context, req kernel.RequestLLM) (string, error) {
	var sb strings.Builder
	if err := r.source.Stream(ctx, req, func(chunk string) { sb.WriteString(chunk) }); err != nil {
		return "", err
	}
	return sb.String(), nil
}
