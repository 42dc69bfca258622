package bedrock_test

import (
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"github.com/agentkernel/agentkernel/model/bedrock"
)

type fakeAPIError struct {
	fault smithy.ErrorFault
}

func (e fakeAPIError) Error() string             { return "fake api error" }
func (e fakeAPIError) ErrorCode() string          { return "FakeError" }
func (e fakeAPIError) ErrorMessage() string       { return "fake api error" }
func (e fakeAPIError) ErrorFault() smithy.ErrorFault { return e.fault }

func TestRetryableClassifiesServerFault(t *testing.T) {
	assert.True(t, bedrock.Retryable(fakeAPIError{fault: smithy.FaultServer}))
}

func TestRetryableClassifiesClientFault(t *testing.T) {
	assert.False(t, bedrock.Retryable(fakeAPIError{fault: smithy.FaultClient}))
}

func TestRetryableFalseForPlainError(t *testing.T) {
	assert.False(t, bedrock.Retryable(errors.New("plain")))
}
