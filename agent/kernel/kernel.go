package kernel

import (
	"fmt"

	"github.com/agentkernel/agentkernel/agent/actions"
)

// Process is the kernel's entire reason for existing: a pure, total
// function from (state, event) to (state', intents). It performs no I/O,
// reads no clock, and makes no random choice — replaying the same event
// sequence against the same initial state always yields the same sequence
// of states and intents.
//
// Process never panics on malformed input; parse failures and policy
// rejections are folded into the returned state and intents per the
// contract below (spec §4.1):
//
//   - UserMessage advances the turn and requests one LLM completion, or
//     ends the run with Exit(StepLimit) once MaxSteps is reached.
//   - LLMCompleted is parsed as one or more short-key actions; a malformed
//     completion counts toward MaxParseFailures before ending the run.
//   - A CallTool action is classified by cfg.Policy before becoming an
//     intent: forbidden tools never dispatch, approval-gated tools pair a
//     RequestApproval intent with the CallTool intent the graph holds back
//     until it resolves.
//   - cfg.MaxRepeatToolCalls (three by default) consecutive identical
//     CallTool actions end the run with ExitError, per the repetition guard.
//   - A Final action always ends the step with EmitResponse + Exit(Complete).
func Process(state AgentState, event KernelEvent, cfg Config) (AgentState, []Intent) {
	if state.ShutdownRequested {
		return state, []Intent{Exit{Reason: ExitReason{Kind: ExitUserRequest}}}
	}

	switch e := event.(type) {
	case UserMessage:
		return processUserMessage(state, e, cfg)
	case LLMCompleted:
		return processLLMCompleted(state, e, cfg)
	case ToolCompleted:
		return processToolCompleted(state, e, cfg)
	case ApprovalGiven:
		return processApprovalGiven(state, e, cfg)
	case WorkerCompleted:
		return processWorkerCompleted(state, e, cfg)
	case WorkerFailed:
		return processWorkerFailed(state, e, cfg)
	case RuntimeError:
		return processRuntimeError(state, e, cfg)
	case Interrupt:
		return state.withShutdownRequested(), []Intent{Exit{Reason: ExitReason{Kind: ExitUserRequest}}}
	case Tick:
		return state, []Intent{NoneIntent{}}
	default:
		return state, []Intent{NoneIntent{}}
	}
}

func processUserMessage(state AgentState, e UserMessage, cfg Config) (AgentState, []Intent) {
	next := state.withHistory(RoleUser, e.Text).resetTurnCounters()
	return requestStep(next, cfg)
}

// requestStep advances StepCount and either ends the run at the step
// limit or requests the next LLM completion over the freshly rendered
// context.
func requestStep(state AgentState, cfg Config) (AgentState, []Intent) {
	next := state.incrementStep()
	if next.AtStepLimit() {
		return next, []Intent{Exit{Reason: ExitReason{Kind: ExitStepLimit}}}
	}
	next = next.withPendingLLM(true)
	return next, []Intent{RequestLLM{
		Context:     next.RenderContext(cfg.SystemPrompt),
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Stream:      cfg.Stream,
	}}
}

func processLLMCompleted(state AgentState, e LLMCompleted, cfg Config) (AgentState, []Intent) {
	next := state.withPendingLLM(false)

	parsed, err := actions.Parse(e.Content)
	if err != nil {
		var failed int
		next, failed = next.recordParseFailure()
		if cfg.MaxParseFailures > 0 && failed >= cfg.MaxParseFailures {
			return next, []Intent{Exit{Reason: ExitReason{
				Kind:    ExitError,
				Message: fmt.Sprintf("malformed LLM completion after %d consecutive attempts: %v", failed, err),
			}}}
		}
		next = next.withHistory(RoleSystem, fmt.Sprintf("your last response could not be parsed (%v); respond using only the \"t\"/\"a\"/\"i\"/\"f\" short-key format", err))
		return requestStep(next, cfg)
	}
	next = next.clearParseFailures()
	next = next.withHistory(RoleAssistant, e.Content)

	var intents []Intent
	for _, action := range parsed {
		if action.DroppedFinal != "" {
			next = next.withHistory(RoleSystem, fmt.Sprintf("warning: both a tool call and a final answer were present; the final answer %q was dropped", action.DroppedFinal))
		}

		switch action.Kind {
		case actions.KindFinal:
			return next, []Intent{
				EmitResponse{Text: action.Final},
				Exit{Reason: ExitReason{Kind: ExitComplete}},
			}
		case actions.KindToolCall:
			toolIntents, repeated := classifyToolCall(&next, action, cfg)
			if repeated {
				return next, []Intent{
					EmitResponse{Text: fmt.Sprintf("repetition detected: the same tool call was attempted %d times in a row", cfg.MaxRepeatToolCalls)},
					Exit{Reason: ExitReason{Kind: ExitError, Message: "repeated tool call"}},
				}
			}
			intents = append(intents, toolIntents...)
		}
	}

	if len(intents) == 0 {
		return requestStep(next, cfg)
	}
	next = next.withPendingApproval(containsApprovalRequest(intents))
	return next, intents
}

// classifyToolCall runs policy, updates repetition tracking, and returns
// the intents for one tool-call action. The returned bool reports whether
// this call tripped the repetition guard, in which case the caller must
// discard any intents and end the run instead.
func classifyToolCall(state *AgentState, action actions.Action, cfg Config) ([]Intent, bool) {
	if cfg.Policy != nil && cfg.Policy.Forbidden(action.Tool, action.Input) {
		*state = state.withHistory(RoleTool, fmt.Sprintf("tool %q is forbidden by policy and was not run", action.Tool))
		return nil, false
	}

	var updated AgentState
	var repeatCount int
	updated, repeatCount = state.observeToolCall(action.Tool, action.Input)
	*state = updated
	if cfg.MaxRepeatToolCalls > 0 && repeatCount >= cfg.MaxRepeatToolCalls {
		return nil, true
	}

	requiresApproval := cfg.Policy != nil && cfg.Policy.RequiresApproval(action.Tool, action.Input)
	callTool := CallTool{Name: action.Tool, Args: action.Input, RequiresApproval: requiresApproval}
	if !requiresApproval {
		return []Intent{callTool}, false
	}
	return []Intent{
		RequestApproval{Tool: action.Tool, Args: action.Input, Reason: "policy requires approval for this tool"},
		callTool,
	}, false
}

func containsApprovalRequest(intents []Intent) bool {
	for _, it := range intents {
		if it.Kind() == IntentRequestApproval {
			return true
		}
	}
	return false
}

func processToolCompleted(state AgentState, e ToolCompleted, cfg Config) (AgentState, []Intent) {
	var next AgentState
	if e.Err != "" {
		next = state.withHistory(RoleTool, fmt.Sprintf("%s failed: %s", e.Tool, e.Err))
	} else {
		next = state.withHistory(RoleTool, fmt.Sprintf("%s returned: %s", e.Tool, e.Result))
	}
	return requestStep(next, cfg)
}

func processApprovalGiven(state AgentState, e ApprovalGiven, cfg Config) (AgentState, []Intent) {
	next := state.withPendingApproval(false)
	if e.Outcome == ApprovalGrantedOutcome {
		return next, []Intent{NoneIntent{}}
	}

	next = next.incrementRejection()
	if next.AtRejectionLimit() {
		return next, []Intent{Exit{Reason: ExitReason{Kind: ExitError, Message: "too many tool requests were rejected"}}}
	}
	reason := e.Reason
	if reason == "" {
		reason = "no reason given"
	}
	next = next.withHistory(RoleSystem, fmt.Sprintf("the pending tool call was denied: %s", reason))
	return requestStep(next, cfg)
}

func processWorkerCompleted(state AgentState, e WorkerCompleted, cfg Config) (AgentState, []Intent) {
	next := state.withHistory(RoleTool, fmt.Sprintf("delegated worker %s returned: %s", e.WorkerId, e.Result))
	return requestStep(next, cfg)
}

func processWorkerFailed(state AgentState, e WorkerFailed, cfg Config) (AgentState, []Intent) {
	if e.IsStall {
		next := state.incrementDelegation()
		if next.AtDelegationLimit() {
			return next, []Intent{Exit{Reason: ExitReason{Kind: ExitError, Message: fmt.Sprintf("delegated worker %s stalled and the delegation limit was reached", e.WorkerId)}}}
		}
		next = next.withHistory(RoleSystem, fmt.Sprintf("delegated worker %s stalled and will be retried", e.WorkerId))
		return next, []Intent{SpawnWorker{Spec: e.WorkerId}}
	}
	next := state.withHistory(RoleSystem, fmt.Sprintf("delegated worker %s failed: %s", e.WorkerId, e.Error))
	return requestStep(next, cfg)
}

func processRuntimeError(state AgentState, e RuntimeError, cfg Config) (AgentState, []Intent) {
	next := state.withHistory(RoleSystem, fmt.Sprintf("runtime error: %s", e.Error))
	return requestStep(next, cfg)
}
