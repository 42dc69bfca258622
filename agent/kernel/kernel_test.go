package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentkernel/agentkernel/agent/kernel"
)

type stubPolicy struct {
	requireApproval map[string]bool
	forbid          map[string]bool
}

func (p stubPolicy) RequiresApproval(tool, args string) bool { return p.requireApproval[tool] }
func (p stubPolicy) Forbidden(tool, args string) bool         { return p.forbid[tool] }

func testConfig() kernel.Config {
	cfg := kernel.DefaultConfig()
	cfg.SystemPrompt = "you are a test agent"
	cfg.Model = "test-model"
	cfg.Policy = stubPolicy{
		requireApproval: map[string]bool{"bash": true},
		forbid:          map[string]bool{"rm": true},
	}
	return cfg
}

func TestUserMessageRequestsLLM(t *testing.T) {
	state := kernel.NewAgentState(10, 5, 3)
	next, intents := kernel.Process(state, kernel.UserMessage{Text: "hello"}, testConfig())

	require.Len(t, intents, 1)
	req, ok := intents[0].(kernel.RequestLLM)
	require.True(t, ok)
	assert.Contains(t, req.Context, "hello")
	assert.True(t, next.PendingLLM)
	assert.Equal(t, 1, next.StepCount)
}

func TestStepLimitEndsRun(t *testing.T) {
	state := kernel.NewAgentState(1, 5, 3)
	state.StepCount = 1
	_, intents := kernel.Process(state, kernel.UserMessage{Text: "go"}, testConfig())

	require.Len(t, intents, 1)
	exit, ok := intents[0].(kernel.Exit)
	require.True(t, ok)
	assert.Equal(t, kernel.ExitStepLimit, exit.Reason.Kind)
}

func TestLLMCompletedFinalAnswerEndsRun(t *testing.T) {
	state := kernel.NewAgentState(10, 5, 3)
	_, intents := kernel.Process(state, kernel.LLMCompleted{Content: `{"f": "done"}`}, testConfig())

	require.Len(t, intents, 2)
	resp, ok := intents[0].(kernel.EmitResponse)
	require.True(t, ok)
	assert.Equal(t, "done", resp.Text)
	exit, ok := intents[1].(kernel.Exit)
	require.True(t, ok)
	assert.Equal(t, kernel.ExitComplete, exit.Reason.Kind)
}

func TestLLMCompletedToolCallWithoutApproval(t *testing.T) {
	state := kernel.NewAgentState(10, 5, 3)
	_, intents := kernel.Process(state, kernel.LLMCompleted{Content: `{"a": "fs_read", "i": {"path": "x"}}`}, testConfig())

	require.Len(t, intents, 1)
	call, ok := intents[0].(kernel.CallTool)
	require.True(t, ok)
	assert.Equal(t, "fs_read", call.Name)
	assert.False(t, call.RequiresApproval)
}

func TestLLMCompletedToolCallRequiringApprovalPairsIntents(t *testing.T) {
	state := kernel.NewAgentState(10, 5, 3)
	_, intents := kernel.Process(state, kernel.LLMCompleted{Content: `{"a": "bash", "i": {"cmd": "ls"}}`}, testConfig())

	require.Len(t, intents, 2)
	_, isApproval := intents[0].(kernel.RequestApproval)
	require.True(t, isApproval)
	call, isCall := intents[1].(kernel.CallTool)
	require.True(t, isCall)
	assert.True(t, call.RequiresApproval)
}

func TestLLMCompletedForbiddenToolIsNotDispatched(t *testing.T) {
	state := kernel.NewAgentState(10, 5, 3)
	next, intents := kernel.Process(state, kernel.LLMCompleted{Content: `{"a": "rm", "i": {"path": "/"}}`}, testConfig())

	require.Len(t, intents, 1)
	_, isRequestLLM := intents[0].(kernel.RequestLLM)
	assert.True(t, isRequestLLM)
	assert.Equal(t, 1, next.StepCount)
}

func TestRepeatedIdenticalToolCallEndsRun(t *testing.T) {
	cfg := testConfig()
	state := kernel.NewAgentState(10, 5, 3)

	completion := kernel.LLMCompleted{Content: `{"a": "fs_read", "i": {"path": "x"}}`}
	state, _ = kernel.Process(state, completion, cfg)
	state, _ = kernel.Process(state, completion, cfg)
	_, intents := kernel.Process(state, completion, cfg)

	require.Len(t, intents, 2)
	_, isResponse := intents[0].(kernel.EmitResponse)
	assert.True(t, isResponse)
	exit, isExit := intents[1].(kernel.Exit)
	require.True(t, isExit)
	assert.Equal(t, kernel.ExitError, exit.Reason.Kind)
}

func TestMalformedCompletionCountsTowardParseFailureLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxParseFailures = 2
	state := kernel.NewAgentState(10, 5, 3)

	bad := kernel.LLMCompleted{Content: "not json at all"}
	state, intents := kernel.Process(state, bad, cfg)
	_, isRetry := intents[0].(kernel.RequestLLM)
	assert.True(t, isRetry)

	_, intents = kernel.Process(state, bad, cfg)
	require.Len(t, intents, 1)
	exit, ok := intents[0].(kernel.Exit)
	require.True(t, ok)
	assert.Equal(t, kernel.ExitError, exit.Reason.Kind)
}

func TestApprovalDeniedIncrementsRejectionAndContinues(t *testing.T) {
	cfg := testConfig()
	state := kernel.NewAgentState(10, 5, 3)
	next, intents := kernel.Process(state, kernel.ApprovalGiven{Outcome: kernel.ApprovalDeniedOutcome, Reason: "too risky"}, cfg)

	require.Len(t, intents, 1)
	_, ok := intents[0].(kernel.RequestLLM)
	require.True(t, ok)
	assert.Equal(t, 1, next.RejectionCount)
}

func TestApprovalDeniedPastLimitEndsRun(t *testing.T) {
	cfg := testConfig()
	state := kernel.NewAgentState(10, 5, 1)
	_, intents := kernel.Process(state, kernel.ApprovalGiven{Outcome: kernel.ApprovalDeniedOutcome}, cfg)

	require.Len(t, intents, 1)
	exit, ok := intents[0].(kernel.Exit)
	require.True(t, ok)
	assert.Equal(t, kernel.ExitError, exit.Reason.Kind)
}

func TestInterruptEndsRunImmediately(t *testing.T) {
	state := kernel.NewAgentState(10, 5, 3)
	next, intents := kernel.Process(state, kernel.Interrupt{}, testConfig())

	require.Len(t, intents, 1)
	exit, ok := intents[0].(kernel.Exit)
	require.True(t, ok)
	assert.Equal(t, kernel.ExitUserRequest, exit.Reason.Kind)
	assert.True(t, next.ShutdownRequested)
}

func TestProcessIsDeterministic(t *testing.T) {
	cfg := testConfig()
	state := kernel.NewAgentState(10, 5, 3)
	event := kernel.UserMessage{Text: "repeat me"}

	s1, i1 := kernel.Process(state, event, cfg)
	s2, i2 := kernel.Process(state, event, cfg)

	assert.Equal(t, s1, s2)
	assert.Equal(t, i1, i2)
}
