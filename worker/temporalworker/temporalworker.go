// Package temporalworker implements capability.Worker by running each
// delegated sub-agent as a durable Temporal workflow, so a worker
// that crashes mid-run resumes from its last recorded activity instead of
// losing its place.
package temporalworker

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/agentkernel/agentkernel/agent/capability"
)

// runDelegatedAgentActivityName is the registered name of the activity
// that actually drives a nested kernel/session pair for the delegated
// run; this package only owns the Temporal plumbing around it, not the
// agent logic itself. The host process supplies the activity
// implementation via RegisterWith.
const runDelegatedAgentActivityName = "RunDelegatedAgent"

// DelegatedRunWorkflow is the workflow type a spawned sub-agent runs as.
// Spec is the serialized task description the kernel's SpawnWorker intent
// carried; the workflow returns the sub-agent's final response text.
func DelegatedRunWorkflow(ctx workflow.Context, spec string) (string, error) {
	ao := workflow.ActivityOptions{StartToCloseTimeout: 10 * time.Minute}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var result string
	if err := workflow.ExecuteActivity(ctx, runDelegatedAgentActivityName, spec).Get(ctx, &result); err != nil {
		return "", err
	}
	return result, nil
}

// Worker adapts a Temporal client into capability.Worker.
type Worker struct {
	client       client.Client
	taskQueue    string
	stallTimeout time.Duration
}

// New returns a Worker that starts workflows on taskQueue using c.
// stallTimeout bounds how long Await waits for progress before reporting
// capability.ErrStall; zero means Await blocks indefinitely.
func New(c client.Client, taskQueue string, stallTimeout time.Duration) *Worker {
	return &Worker{client: c, taskQueue: taskQueue, stallTimeout: stallTimeout}
}

// Spawn starts a DelegatedRunWorkflow execution and returns its workflow
// id, used as the capability.Worker workerID.
func (w *Worker) Spawn(ctx context.Context, spec string) (string, error) {
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("delegated-%d", time.Now().UnixNano()),
		TaskQueue: w.taskQueue,
	}
	run, err := w.client.ExecuteWorkflow(ctx, options, DelegatedRunWorkflow, spec)
	if err != nil {
		return "", fmt.Errorf("temporalworker: starting workflow: %w", err)
	}
	return run.GetID(), nil
}

// Await blocks until the workflow identified by workerID completes and
// returns its result. If stallTimeout elapses with no result, Await
// returns an error wrapping capability.ErrStall rather than blocking
// forever, so the kernel can decide whether to retry the delegation.
func (w *Worker) Await(ctx context.Context, workerID string) (string, error) {
	run := w.client.GetWorkflow(ctx, workerID, "")

	waitCtx := ctx
	var cancel context.CancelFunc
	if w.stallTimeout > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, w.stallTimeout)
		defer cancel()
	}

	var result string
	err := run.Get(waitCtx, &result)
	if err == nil {
		return result, nil
	}
	if waitCtx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("temporalworker: workflow %s: %w", workerID, capability.ErrStall)
	}
	return "", fmt.Errorf("temporalworker: awaiting workflow %s: %w", workerID, err)
}

// RegisterWith registers DelegatedRunWorkflow and impl (the concrete
// function that drives a nested kernel/session pair) with w so a Temporal
// SDK worker process can execute both.
func RegisterWith(w worker.Worker, impl any) {
	w.RegisterWorkflow(DelegatedRunWorkflow)
	w.RegisterActivityWithOptions(impl, activity.RegisterOptions{Name: runDelegatedAgentActivityName})
}
