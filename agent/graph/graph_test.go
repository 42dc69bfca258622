package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentkernel/agentkernel/agent/graph"
	"github.com/agentkernel/agentkernel/agent/ids"
	"github.com/agentkernel/agentkernel/agent/kernel"
)

func TestInsertRejectsUnknownDependency(t *testing.T) {
	g := graph.New()
	missing := ids.FromStep(1, 0)
	err := g.Insert(ids.FromStep(1, 1), kernel.CallTool{Name: "fs_read"}, []ids.IntentId{missing})

	require.Error(t, err)
	var ce *graph.ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, graph.UnknownDependency, ce.Kind)
	assert.Equal(t, 0, g.Len())
}

func TestInsertRejectsCycle(t *testing.T) {
	g := graph.New()
	a := ids.FromStep(1, 0)
	b := ids.FromStep(1, 1)

	require.NoError(t, g.Insert(a, kernel.RequestApproval{}, nil))
	require.NoError(t, g.Insert(b, kernel.CallTool{}, []ids.IntentId{a}))

	err := g.Insert(a, kernel.CallTool{}, []ids.IntentId{b})
	require.Error(t, err)
}

func TestReadyOnlyAfterDepsComplete(t *testing.T) {
	g := graph.New()
	approval := ids.FromStep(1, 0)
	call := ids.FromStep(1, 1)

	require.NoError(t, g.Insert(approval, kernel.RequestApproval{}, nil))
	require.NoError(t, g.Insert(call, kernel.CallTool{RequiresApproval: true}, []ids.IntentId{approval}))

	assert.Equal(t, []ids.IntentId{approval}, g.Ready())

	g.MarkDispatched(approval)
	require.NoError(t, g.Complete(approval))

	assert.Equal(t, []ids.IntentId{call}, g.Ready())
}

func TestCompleteIsIdempotent(t *testing.T) {
	g := graph.New()
	a := ids.FromStep(1, 0)
	require.NoError(t, g.Insert(a, kernel.RequestApproval{}, nil))
	require.NoError(t, g.Complete(a))

	err := g.Complete(a)
	assert.ErrorIs(t, err, graph.ErrAlreadyCompleted)
}

func TestFailCascadesCancellation(t *testing.T) {
	g := graph.New()
	a := ids.FromStep(1, 0)
	b := ids.FromStep(1, 1)
	c := ids.FromStep(1, 2)

	require.NoError(t, g.Insert(a, kernel.RequestLLM{}, nil))
	require.NoError(t, g.Insert(b, kernel.CallTool{}, []ids.IntentId{a}))
	require.NoError(t, g.Insert(c, kernel.CallTool{}, []ids.IntentId{b}))

	cancelled := g.Fail(a)
	assert.ElementsMatch(t, []ids.IntentId{b, c}, cancelled)

	nodeB, _ := g.Node(b)
	assert.Equal(t, graph.StatusCancelled, nodeB.Status)
}

func TestReadyOrderingIsDeterministic(t *testing.T) {
	g := graph.New()
	for i := uint32(0); i < 5; i++ {
		require.NoError(t, g.Insert(ids.FromStep(1, i), kernel.RequestApproval{}, nil))
	}
	first := g.Ready()
	second := g.Ready()
	assert.Equal(t, first, second)
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i-1].Less(first[i]))
	}
}
