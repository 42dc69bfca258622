// Package capability implements the capability runtime: the strongly
// typed, composable set of ports the session scheduler dispatches intents
// through. There is no dynamic string-keyed dispatch anywhere in this
// package — each capability is a distinct Go interface, and Runtime.Carry
// switches on the concrete kernel.Intent type to pick one.
package capability

import (
	"context"
	"errors"

	"github.com/agentkernel/agentkernel/agent/ids"
	"github.com/agentkernel/agentkernel/agent/kernel"
)

// LLM completes a rendered context into a response. Implementations may
// stream internally, but must reconcile streamed chunks into a single
// accumulated response before returning — the kernel only ever observes
// one LLMCompleted event per RequestLLM.
type LLM interface {
	Complete(ctx context.Context, req kernel.RequestLLM) (string, error)
}

// Tool executes one named tool call and returns its result.
type Tool interface {
	Call(ctx context.Context, name, args string) (result string, retryable bool, err error)
}

// Approval asks a human (or an auto-approval policy already consulted
// upstream) to approve or deny a pending tool call.
type Approval interface {
	Request(ctx context.Context, req kernel.RequestApproval) (granted bool, reason string, err error)
}

// Worker spawns and awaits a delegated sub-agent run.
type Worker interface {
	Spawn(ctx context.Context, spec string) (workerID string, err error)
	Await(ctx context.Context, workerID string) (result string, err error)
}

// Telemetry is the narrow slice of observability the capability runtime
// needs: a structured logger, a span tracer, and a metrics recorder. See
// package telemetry for the noop and clue-backed implementations.
type Telemetry interface {
	Logger() Logger
	StartSpan(ctx context.Context, name string) (context.Context, Span)
	RecordLatency(capability string, seconds float64)
	RecordOutcome(capability string, ok bool)
}

// Logger is a minimal structured logger, satisfied by both a noop
// implementation and one backed by goa.design/clue/log.
type Logger interface {
	Info(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, keyvals ...any)
}

// Span is a single traced unit of work.
type Span interface {
	End()
	SetError(err error)
}

// Runtime wires concrete capability implementations (each already wrapped
// with whatever retry, circuit-breaker or rate-limiting middleware the
// caller wants) to intent dispatch.
type Runtime struct {
	LLM       LLM
	Tool      Tool
	Approval  Approval
	Worker    Worker
	Telemetry Telemetry
}

// Carry executes one intent and returns the KernelEvent it produced. The
// caller (the session's transport adapter, typically) is responsible for
// tagging the result with a logical clock value and source before handing
// it back to the scheduler.
func (r Runtime) Carry(ctx context.Context, id ids.IntentId, intent kernel.Intent) kernel.KernelEvent {
	switch v := intent.(type) {
	case kernel.RequestLLM:
		return r.carryLLM(ctx, id, v)
	case kernel.CallTool:
		return r.carryTool(ctx, id, v)
	case kernel.RequestApproval:
		return r.carryApproval(ctx, id, v)
	case kernel.SpawnWorker:
		return r.carryWorker(ctx, id, v)
	default:
		// EmitResponse and Exit carry no further side effect; the session
		// surfaces them directly and never calls Carry for them.
		return nil
	}
}

func (r Runtime) carryLLM(ctx context.Context, id ids.IntentId, req kernel.RequestLLM) kernel.KernelEvent {
	ctx, span := r.Telemetry.StartSpan(ctx, "capability.llm.complete")
	defer span.End()

	content, err := r.LLM.Complete(ctx, req)
	r.Telemetry.RecordOutcome("llm", err == nil)
	if err != nil {
		span.SetError(err)
		return kernel.RuntimeError{IntentId: id, Error: err.Error()}
	}
	return kernel.LLMCompleted{IntentId: id, Content: content}
}

func (r Runtime) carryTool(ctx context.Context, id ids.IntentId, req kernel.CallTool) kernel.KernelEvent {
	ctx, span := r.Telemetry.StartSpan(ctx, "capability.tool.call")
	defer span.End()

	result, retryable, err := r.Tool.Call(ctx, req.Name, req.Args)
	r.Telemetry.RecordOutcome("tool:"+req.Name, err == nil)
	if err != nil {
		span.SetError(err)
		return kernel.ToolCompleted{IntentId: id, Tool: req.Name, Err: err.Error(), Retryable: retryable}
	}
	return kernel.ToolCompleted{IntentId: id, Tool: req.Name, Result: result}
}

func (r Runtime) carryApproval(ctx context.Context, id ids.IntentId, req kernel.RequestApproval) kernel.KernelEvent {
	granted, reason, err := r.Approval.Request(ctx, req)
	if err != nil {
		return kernel.RuntimeError{IntentId: id, Error: err.Error()}
	}
	outcome := kernel.ApprovalDeniedOutcome
	if granted {
		outcome = kernel.ApprovalGrantedOutcome
	}
	return kernel.ApprovalGiven{IntentId: id, Outcome: outcome, Reason: reason}
}

func (r Runtime) carryWorker(ctx context.Context, id ids.IntentId, req kernel.SpawnWorker) kernel.KernelEvent {
	workerID, err := r.Worker.Spawn(ctx, req.Spec)
	if err != nil {
		return kernel.WorkerFailed{WorkerId: workerID, Error: err.Error(), IsStall: errors.Is(err, ErrStall)}
	}
	result, err := r.Worker.Await(ctx, workerID)
	if err != nil {
		return kernel.WorkerFailed{WorkerId: workerID, Error: err.Error(), IsStall: errors.Is(err, ErrStall)}
	}
	return kernel.WorkerCompleted{WorkerId: workerID, Result: result}
}
