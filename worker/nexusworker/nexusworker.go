// Package nexusworker implements capability.Worker over a Nexus service,
// for delegated sub-agent runs that live in a different Temporal
// namespace (or a different system entirely) than the parent session.
// Where worker/temporalworker models delegation as a workflow in the same
// namespace, nexusworker models it as a cross-system operation whose
// result Await fetches through the operation handle.
package nexusworker

import (
	"context"
	"fmt"

	"github.com/nexus-rpc/sdk-go/nexus"
)

// RunDelegatedAgentOperation is the Nexus operation name a delegated
// sub-agent run is exposed as.
const RunDelegatedAgentOperation = "run-delegated-agent"

// Worker adapts a Nexus client into capability.Worker.
type Worker struct {
	client *nexus.HTTPClient
}

// New returns a Worker issuing Nexus operations through client.
func New(client *nexus.HTTPClient) *Worker {
	return &Worker{client: client}
}

// Spawn starts the RunDelegatedAgentOperation and returns its Nexus
// operation token, used as the capability.Worker workerID.
func (w *Worker) Spawn(ctx context.Context, spec string) (string, error) {
	handle, err := nexus.StartOperation(ctx, w.client, nexus.NewOperationReference[string, string](RunDelegatedAgentOperation), spec, nexus.StartOperationOptions{})
	if err != nil {
		return "", fmt.Errorf("nexusworker: starting operation: %w", err)
	}
	return handle.ID, nil
}

// Await polls the operation identified by workerID until it completes and
// returns its result.
func (w *Worker) Await(ctx context.Context, workerID string) (string, error) {
	handle, err := nexus.NewHandle[string](w.client, RunDelegatedAgentOperation, workerID)
	if err != nil {
		return "", fmt.Errorf("nexusworker: resolving handle for %s: %w", workerID, err)
	}
	result, err := handle.GetResult(ctx, nexus.GetOperationResultOptions{})
	if err != nil {
		return "", fmt.Errorf("nexusworker: awaiting operation %s: %w", workerID, err)
	}
	return result, nil
}
