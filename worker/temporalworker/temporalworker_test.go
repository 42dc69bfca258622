package temporalworker

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

// DelegatedRunWorkflow is deterministic workflow code, so it can be
// exercised against the Temporal test environment without a live server —
// the same testsuite the rest of the ecosystem uses for workflow unit
// tests.
func TestDelegatedRunWorkflowExecutesActivity(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	env.RegisterActivityWithOptions(func(spec string) (string, error) {
		return "handled: " + spec, nil
	}, activity.RegisterOptions{Name: runDelegatedAgentActivityName})

	env.ExecuteWorkflow(DelegatedRunWorkflow, "do the thing")

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result string
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, "handled: do the thing", result)
}
