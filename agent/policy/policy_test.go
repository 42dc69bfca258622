package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentkernel/agentkernel/agent/policy"
)

func TestMatchLiteral(t *testing.T) {
	assert.True(t, policy.Match("bash:ls", "bash:ls"))
	assert.False(t, policy.Match("bash:ls", "bash:rm"))
}

func TestMatchStar(t *testing.T) {
	assert.True(t, policy.Match("bash:*", "bash:ls -la"))
	assert.True(t, policy.Match("*", "anything"))
	assert.True(t, policy.Match("fs_read:/home/*", "fs_read:/home/user/file.txt"))
	assert.False(t, policy.Match("fs_read:/home/*", "fs_read:/etc/passwd"))
}

func TestMatchQuestion(t *testing.T) {
	assert.True(t, policy.Match("v?.txt", "v1.txt"))
	assert.False(t, policy.Match("v?.txt", "v10.txt"))
}

func TestMatchMixedWildcards(t *testing.T) {
	assert.True(t, policy.Match("fs_write:*.??", "fs_write:notes.md"))
	assert.False(t, policy.Match("fs_write:*.??", "fs_write:notes.markdown"))
}

func TestMatchMultipleStarsInOrder(t *testing.T) {
	assert.True(t, policy.Match("bash:git *commit*", "bash:git -C . commit -m x"))
	assert.False(t, policy.Match("bash:git *commit*", "bash:git -C . push"))
}

func TestEvaluateForbiddenBeatsAutoApprove(t *testing.T) {
	p := policy.Policy{
		ForbiddenPatterns:   []string{"bash:rm -rf*"},
		AutoApprovePatterns: []string{"bash:*"},
	}
	assert.Equal(t, policy.DecisionForbid, p.Evaluate("bash", "rm -rf /"))
}

func TestEvaluateAutoApprove(t *testing.T) {
	p := policy.Policy{AutoApprovePatterns: []string{"fs_read:*"}}
	assert.Equal(t, policy.DecisionAllow, p.Evaluate("fs_read", "/tmp/x"))
}

func TestEvaluateDefaultsToApproval(t *testing.T) {
	p := policy.Policy{}
	assert.Equal(t, policy.DecisionRequireApproval, p.Evaluate("bash", "echo hi"))
}

func TestEvaluateAllowedToolsExcludesUnlisted(t *testing.T) {
	p := policy.Policy{
		AllowedTools:        []string{"fs_read"},
		AutoApprovePatterns: []string{"*"},
	}
	assert.Equal(t, policy.DecisionAllow, p.Evaluate("fs_read", "/tmp/x"))
	assert.Equal(t, policy.DecisionForbid, p.Evaluate("bash", "echo hi"))
}
