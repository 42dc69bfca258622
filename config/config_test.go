package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentkernel/agentkernel/config"
)

func TestParseAppliesDefaults(t *testing.T) {
	opts, err := config.Parse([]byte(`
agent:
  system_prompt: "you are a helper"
model:
  provider: anthropic
  model: claude-sonnet
`))
	require.NoError(t, err)
	assert.Equal(t, "you are a helper", opts.Agent.SystemPrompt)
	assert.Equal(t, 50, opts.Agent.MaxSteps)
	assert.Equal(t, 3, opts.Model.RetryMaxAttempts)
	assert.Equal(t, "noop", opts.Telemetry.Kind)
	assert.Equal(t, "in-process", opts.Transport.Kind)
}

func TestParseHonorsExplicitValues(t *testing.T) {
	opts, err := config.Parse([]byte(`
agent:
  max_steps: 10
policy:
  allowed_tools: ["fs_read", "bash"]
  auto_approve_patterns: ["fs_read:*"]
`))
	require.NoError(t, err)
	assert.Equal(t, 10, opts.Agent.MaxSteps)
	assert.ElementsMatch(t, []string{"fs_read", "bash"}, opts.Policy.AllowedTools)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := config.Parse([]byte("not: valid: yaml: ["))
	require.Error(t, err)
}
