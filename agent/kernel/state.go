// Package kernel implements the cognitive kernel: a pure, synchronous state
// machine mapping (state, event) to (state', intents). The kernel performs
// no I/O, owns no clock, and allocates no side effects — every side effect
// the agent needs is expressed as a returned Intent for the session and
// capability runtime to carry out.
package kernel

import "fmt"

// Role identifies the speaker of a history entry.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
	RoleSystem
	RoleTool
)

// String renders the role for transcript rendering and prompt assembly.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	case RoleSystem:
		return "system"
	case RoleTool:
		return "tool"
	default:
		return "unknown"
	}
}

// HistoryEntry is one turn of the rendered conversation transcript.
type HistoryEntry struct {
	Role    Role
	Content string
}

// toolCallKey identifies a tool invocation by name and serialized
// arguments, used for consecutive-repetition detection.
type toolCallKey struct {
	name string
	args string
}

// AgentState is the kernel's entire view of a conversation. It is immutable
// at the type level: every mutator method below returns a new value rather
// than mutating the receiver, so callers may safely retain and compare prior
// snapshots (e.g. for persistence or replay).
//
// Invariants (enforced by the mutator methods, never by external callers):
//   - StepCount never exceeds MaxSteps without the kernel emitting Exit(StepLimit).
//   - A new turn (UserMessage) resets DelegationCount and RejectionCount.
//   - PendingLLM is true iff exactly one LLM request is currently in flight.
type AgentState struct {
	History []HistoryEntry

	StepCount int
	MaxSteps  int

	DelegationCount int
	MaxDelegations  int

	RejectionCount int
	MaxRejections  int

	PendingLLM      bool
	PendingApproval bool

	ShutdownRequested bool

	Scratchpad string

	// parseFailures counts consecutive short-key-action parse failures
	// since the last successful parse. Reset on any successful parse.
	parseFailures int

	// lastToolCall and repetitionCount back repetition detection: three
	// consecutive CallTool intents with identical (name, args) end the run.
	lastToolCall    *toolCallKey
	repetitionCount int
}

// NewAgentState returns an initial, empty state bounded by the given caps.
func NewAgentState(maxSteps, maxDelegations, maxRejections int) AgentState {
	return AgentState{
		MaxSteps:       maxSteps,
		MaxDelegations: maxDelegations,
		MaxRejections:  maxRejections,
	}
}

// AtStepLimit reports whether StepCount has reached MaxSteps.
func (s AgentState) AtStepLimit() bool {
	return s.MaxSteps > 0 && s.StepCount >= s.MaxSteps
}

// AtDelegationLimit reports whether DelegationCount has reached MaxDelegations.
func (s AgentState) AtDelegationLimit() bool {
	return s.MaxDelegations > 0 && s.DelegationCount >= s.MaxDelegations
}

// AtRejectionLimit reports whether RejectionCount has reached MaxRejections.
func (s AgentState) AtRejectionLimit() bool {
	return s.MaxRejections > 0 && s.RejectionCount >= s.MaxRejections
}

// withHistory returns a copy of s with entry appended to History.
func (s AgentState) withHistory(role Role, content string) AgentState {
	next := s.clone()
	next.History = append(append([]HistoryEntry{}, s.History...), HistoryEntry{Role: role, Content: content})
	return next
}

// clone returns a shallow copy of s safe to mutate field-by-field without
// aliasing the receiver's History slice.
func (s AgentState) clone() AgentState {
	next := s
	next.History = append([]HistoryEntry{}, s.History...)
	return next
}

// resetTurnCounters returns a copy of s with per-turn counters reset, as
// happens on every new UserMessage.
func (s AgentState) resetTurnCounters() AgentState {
	next := s.clone()
	next.DelegationCount = 0
	next.RejectionCount = 0
	next.repetitionCount = 0
	next.lastToolCall = nil
	return next
}

// incrementStep returns a copy of s with StepCount incremented by one.
func (s AgentState) incrementStep() AgentState {
	next := s.clone()
	next.StepCount++
	return next
}

// withPendingLLM returns a copy of s with PendingLLM set to v.
func (s AgentState) withPendingLLM(v bool) AgentState {
	next := s.clone()
	next.PendingLLM = v
	return next
}

// withPendingApproval returns a copy of s with PendingApproval set to v.
func (s AgentState) withPendingApproval(v bool) AgentState {
	next := s.clone()
	next.PendingApproval = v
	return next
}

// withShutdownRequested returns a copy of s with ShutdownRequested set.
func (s AgentState) withShutdownRequested() AgentState {
	next := s.clone()
	next.ShutdownRequested = true
	return next
}

// incrementDelegation returns a copy of s with DelegationCount incremented.
func (s AgentState) incrementDelegation() AgentState {
	next := s.clone()
	next.DelegationCount++
	return next
}

// incrementRejection returns a copy of s with RejectionCount incremented.
func (s AgentState) incrementRejection() AgentState {
	next := s.clone()
	next.RejectionCount++
	return next
}

// recordParseFailure returns a copy of s with the parse-failure counter
// incremented, and reports the new count.
func (s AgentState) recordParseFailure() (AgentState, int) {
	next := s.clone()
	next.parseFailures++
	return next, next.parseFailures
}

// clearParseFailures returns a copy of s with the parse-failure counter reset.
func (s AgentState) clearParseFailures() AgentState {
	if s.parseFailures == 0 {
		return s
	}
	next := s.clone()
	next.parseFailures = 0
	return next
}

// observeToolCall returns a copy of s with repetition tracking updated for
// the given tool invocation, and reports the resulting consecutive-repeat
// count.
func (s AgentState) observeToolCall(name, args string) (AgentState, int) {
	next := s.clone()
	key := toolCallKey{name: name, args: args}
	if next.lastToolCall != nil && *next.lastToolCall == key {
		next.repetitionCount++
	} else {
		next.repetitionCount = 1
	}
	next.lastToolCall = &key
	return next, next.repetitionCount
}

// RenderContext builds the prompt context handed to RequestLLM from the
// current history, scratchpad and system prompt. It is a pure function of
// state, so identical states always render identical contexts.
func (s AgentState) RenderContext(systemPrompt string) string {
	out := systemPrompt
	if s.Scratchpad != "" {
		out += "\n\n<scratchpad>\n" + s.Scratchpad + "\n</scratchpad>"
	}
	for _, h := range s.History {
		out += fmt.Sprintf("\n\n[%s] %s", h.Role, h.Content)
	}
	return out
}
