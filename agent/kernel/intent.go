package kernel

import "github.com/agentkernel/agentkernel/agent/ids"

// IntentKind discriminates the concrete type held by an Intent value.
type IntentKind int

const (
	IntentCallTool IntentKind = iota
	IntentRequestLLM
	IntentRequestApproval
	IntentSpawnWorker
	IntentEmitResponse
	IntentExit
	IntentNone
)

// Intent is a declarative request for a side effect. The kernel never
// executes an Intent itself — it only ever returns one for the session
// scheduler to place in the intent graph and, eventually, for the
// capability runtime to carry out.
type Intent interface {
	Kind() IntentKind
}

// CallTool requests execution of a named tool. RequiresApproval is decided
// by policy at emission time so the graph can wire the dependency on a
// RequestApproval intent before the tool is ever dispatched.
type CallTool struct {
	Name             string
	Args             string
	RequiresApproval bool
}

func (CallTool) Kind() IntentKind { return IntentCallTool }

// RequestLLM requests one LLM completion over the given rendered context.
type RequestLLM struct {
	Context     string
	Model       string
	MaxTokens   int
	Temperature float64
	Stream      bool
}

func (RequestLLM) Kind() IntentKind { return IntentRequestLLM }

// RequestApproval requests a human decision on whether Tool may run with
// Args. Reason is a short human-readable justification (e.g. the forbidden
// or non-auto-approved pattern that triggered the request).
type RequestApproval struct {
	Tool   string
	Args   string
	Reason string
}

func (RequestApproval) Kind() IntentKind { return IntentRequestApproval }

// SpawnWorker requests a delegated sub-agent run described by Spec.
type SpawnWorker struct {
	Spec string
}

func (SpawnWorker) Kind() IntentKind { return IntentSpawnWorker }

// EmitResponse requests that Text be surfaced to the user as the agent's
// final answer for this step.
type EmitResponse struct {
	Text string
}

func (EmitResponse) Kind() IntentKind { return IntentEmitResponse }

// ExitReasonKind discriminates the concrete reason a run terminated.
type ExitReasonKind int

const (
	ExitComplete ExitReasonKind = iota
	ExitStepLimit
	ExitUserRequest
	ExitError
)

// ExitReason describes why the kernel terminated the run. Message is only
// meaningful when Kind is ExitError.
type ExitReason struct {
	Kind    ExitReasonKind
	Message string
}

// Exit requests termination of the run.
type Exit struct {
	Reason ExitReason
}

func (Exit) Kind() IntentKind { return IntentExit }

// NoneIntent signals that the kernel took no externally visible action for
// this event.
type NoneIntent struct{}

func (NoneIntent) Kind() IntentKind { return IntentNone }

// Dependencies returns the set of intent ids that must complete before a
// graph node wrapping intent becomes Ready, given the id of the
// RequestApproval paired with it in the same batch (if any) and the ids of
// all tool calls currently in flight (Pending or Dispatched). The
// kernel does not itself own the graph, but it is the sole source of truth
// for what depends on what, per spec §4.2's dependency rules:
//
//   - a RequestApproval has no dependencies.
//   - a CallTool with RequiresApproval depends on its paired RequestApproval.
//   - a RequestLLM depends on every tool call currently Pending or Dispatched
//     (sequential reasoning).
//   - SpawnWorker has no dependencies.
func Dependencies(intent Intent, pairedApproval *ids.IntentId, inflightTools []ids.IntentId) []ids.IntentId {
	switch v := intent.(type) {
	case CallTool:
		if v.RequiresApproval && pairedApproval != nil {
			return []ids.IntentId{*pairedApproval}
		}
		return nil
	case RequestLLM:
		return append([]ids.IntentId{}, inflightTools...)
	default:
		return nil
	}
}
