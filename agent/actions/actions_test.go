package actions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentkernel/agentkernel/agent/actions"
)

func TestParseSingleToolCall(t *testing.T) {
	got, err := actions.Parse(`{"t": "checking the file", "a": "fs_read", "i": {"path": "/tmp/x"}}`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, actions.KindToolCall, got[0].Kind)
	assert.Equal(t, "fs_read", got[0].Tool)
	assert.JSONEq(t, `{"path": "/tmp/x"}`, got[0].Input)
}

func TestParseFinalAnswer(t *testing.T) {
	got, err := actions.Parse(`{"f": "the answer is 42"}`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, actions.KindFinal, got[0].Kind)
	assert.Equal(t, "the answer is 42", got[0].Final)
}

func TestParseArray(t *testing.T) {
	got, err := actions.Parse(`[{"a": "fs_read", "i": {"path": "a"}}, {"a": "fs_read", "i": {"path": "b"}}]`)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestParseStripsFence(t *testing.T) {
	got, err := actions.Parse("```json\n{\"f\": \"done\"}\n```")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "done", got[0].Final)
}

func TestParseToolWithoutInputIsError(t *testing.T) {
	_, err := actions.Parse(`{"a": "fs_read"}`)
	require.Error(t, err)
}

func TestParseNeitherToolNorFinalIsError(t *testing.T) {
	_, err := actions.Parse(`{"t": "thinking out loud"}`)
	require.Error(t, err)
}

func TestParseToolWinsOverFinal(t *testing.T) {
	got, err := actions.Parse(`{"a": "fs_read", "i": {"path": "x"}, "f": "ignored"}`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, actions.KindToolCall, got[0].Kind)
	assert.Equal(t, "ignored", got[0].DroppedFinal)
}

func TestParseEmptyIsError(t *testing.T) {
	_, err := actions.Parse("   ")
	require.Error(t, err)
}

func TestParseNonJSONIsError(t *testing.T) {
	_, err := actions.Parse("I think I should read the file now.")
	require.Error(t, err)
}
