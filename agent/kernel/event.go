package kernel

import "github.com/agentkernel/agentkernel/agent/ids"

// EventKind discriminates the concrete type held by a KernelEvent.
type EventKind int

const (
	EventUserMessage EventKind = iota
	EventToolCompleted
	EventLLMCompleted
	EventApprovalGiven
	EventWorkerCompleted
	EventWorkerFailed
	EventRuntimeError
	EventInterrupt
	EventTick
)

// KernelEvent is a tagged variant describing one external stimulus the
// kernel must react to. Process is total over KernelEvent: every variant
// below has a defined transition.
type KernelEvent interface {
	Kind() EventKind
}

// UserMessage carries a new message from the end user.
type UserMessage struct {
	Text string
}

func (UserMessage) Kind() EventKind { return EventUserMessage }

// ToolCompleted carries the result of a previously dispatched CallTool.
type ToolCompleted struct {
	IntentId ids.IntentId
	Tool     string
	Result   string
	Err      string // non-empty signals the tool call failed
	Retryable bool
}

func (ToolCompleted) Kind() EventKind { return EventToolCompleted }

// LLMCompleted carries the accumulated response of a previously dispatched
// RequestLLM (streaming chunks, if any, are reconciled by the capability
// runtime before this event is posted).
type LLMCompleted struct {
	IntentId ids.IntentId
	Content  string
}

func (LLMCompleted) Kind() EventKind { return EventLLMCompleted }

// ApprovalOutcome discriminates the result of a RequestApproval.
type ApprovalOutcome int

const (
	ApprovalGrantedOutcome ApprovalOutcome = iota
	ApprovalDeniedOutcome
)

// ApprovalGiven carries the human decision on a previously dispatched
// RequestApproval.
type ApprovalGiven struct {
	IntentId ids.IntentId
	Outcome  ApprovalOutcome
	Reason   string
}

func (ApprovalGiven) Kind() EventKind { return EventApprovalGiven }

// WorkerCompleted carries the successful result of a previously spawned
// worker.
type WorkerCompleted struct {
	WorkerId string
	Result   string
}

func (WorkerCompleted) Kind() EventKind { return EventWorkerCompleted }

// WorkerFailed carries a worker failure. IsStall distinguishes a worker
// that stopped making progress from one that errored outright. Process
// answers every stall with a new SpawnWorker intent (whose Spec is the
// stalled worker's id) and counts it against MaxDelegations; there is no
// per-worker limit of one retry, and a stall is never surfaced to the LLM:
// once the delegation limit is reached the run ends with ExitError.
type WorkerFailed struct {
	WorkerId string
	Error    string
	IsStall  bool
}

func (WorkerFailed) Kind() EventKind { return EventWorkerFailed }

// RuntimeError carries a failure from the capability runtime that is not
// shaped as a ToolCompleted/LLMCompleted (e.g. a dispatch-time fault).
type RuntimeError struct {
	IntentId ids.IntentId
	Error    string
}

func (RuntimeError) Kind() EventKind { return EventRuntimeError }

// Interrupt requests immediate, graceful shutdown of the run.
type Interrupt struct{}

func (Interrupt) Kind() EventKind { return EventInterrupt }

// Tick is a periodic, no-op-unless-timeouts-pending heartbeat.
type Tick struct {
	UnixNano int64
}

func (Tick) Kind() EventKind { return EventTick }

// EventEnvelope wraps a KernelEvent with the logical clock value assigned
// to it by the session and the source that produced it. Source determines
// scheduling priority; LogicalClock determines linearization order.
type EventEnvelope struct {
	Event       KernelEvent
	LogicalClock uint64
	Source      ids.EventSource
}
