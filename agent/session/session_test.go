package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentkernel/agentkernel/agent/ids"
	"github.com/agentkernel/agentkernel/agent/kernel"
	"github.com/agentkernel/agentkernel/agent/session"
)

type recordingTransport struct {
	dispatched []kernel.Intent
}

func (t *recordingTransport) Dispatch(ctx context.Context, id ids.IntentId, intent kernel.Intent) error {
	t.dispatched = append(t.dispatched, intent)
	return nil
}

type approveBash struct{}

func (approveBash) RequiresApproval(tool, args string) bool { return tool == "bash" }
func (approveBash) Forbidden(tool, args string) bool        { return false }

func testConfig() kernel.Config {
	cfg := kernel.DefaultConfig()
	cfg.SystemPrompt = "test"
	cfg.Model = "test-model"
	cfg.Policy = approveBash{}
	return cfg
}

func TestStepDispatchesRequestLLMOnUserMessage(t *testing.T) {
	transport := &recordingTransport{}
	sched := session.New(kernel.NewAgentState(10, 5, 3), testConfig(), transport)

	sched.Enqueue(kernel.EventEnvelope{
		Event:        kernel.UserMessage{Text: "hi"},
		LogicalClock: 1,
		Source:       ids.SourceUser,
	})

	more, err := sched.Step(context.Background())
	require.NoError(t, err)
	assert.True(t, more)
	require.Len(t, transport.dispatched, 1)
	_, ok := transport.dispatched[0].(kernel.RequestLLM)
	assert.True(t, ok)
}

func TestStepReturnsFalseOnEmptyQueue(t *testing.T) {
	sched := session.New(kernel.NewAgentState(10, 5, 3), testConfig(), &recordingTransport{})
	more, err := sched.Step(context.Background())
	require.NoError(t, err)
	assert.False(t, more)
}

func TestApprovalGatedToolOnlyDispatchesAfterApproval(t *testing.T) {
	transport := &recordingTransport{}
	sched := session.New(kernel.NewAgentState(10, 5, 3), testConfig(), transport)

	sched.Enqueue(kernel.EventEnvelope{
		Event:        kernel.LLMCompleted{Content: `{"a": "bash", "i": {"cmd": "ls"}}`},
		LogicalClock: 1,
		Source:       ids.SourceWorker,
	})
	_, err := sched.Step(context.Background())
	require.NoError(t, err)

	// Only the RequestApproval intent should have been dispatched; the
	// paired CallTool is held back until the approval completes.
	require.Len(t, transport.dispatched, 1)
	_, ok := transport.dispatched[0].(kernel.RequestApproval)
	assert.True(t, ok)
}
