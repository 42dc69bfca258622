package kernel_test

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agentkernel/agentkernel/agent/kernel"
)

// TestProcessDeterminismProperty checks spec §8's determinism property:
// for any state and any single event, replaying Process twice against the
// same inputs always yields byte-identical results.
func TestProcessDeterminismProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("Process is deterministic over arbitrary user text", prop.ForAll(
		func(text string) bool {
			state := kernel.NewAgentState(20, 5, 3)
			cfg := kernel.DefaultConfig()
			cfg.SystemPrompt = "system"
			cfg.Model = "test-model"
			event := kernel.UserMessage{Text: text}

			s1, i1 := kernel.Process(state, event, cfg)
			s2, i2 := kernel.Process(state, event, cfg)

			return fmt.Sprintf("%+v", s1) == fmt.Sprintf("%+v", s2) &&
				fmt.Sprintf("%+v", i1) == fmt.Sprintf("%+v", i2)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// TestStepCountMonotonicProperty checks that StepCount never decreases and
// never exceeds MaxSteps across an arbitrary sequence of user messages.
func TestStepCountMonotonicProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("StepCount is monotonic and bounded", prop.ForAll(
		func(messages []string) bool {
			const maxSteps = 5
			state := kernel.NewAgentState(maxSteps, 5, 3)
			cfg := kernel.DefaultConfig()
			cfg.SystemPrompt = "system"
			cfg.Model = "test-model"
			cfg.MaxSteps = maxSteps

			prevStep := 0
			for _, m := range messages {
				if state.ShutdownRequested {
					break
				}
				next, intents := kernel.Process(state, kernel.UserMessage{Text: m}, cfg)
				if next.StepCount < prevStep {
					return false
				}
				if next.StepCount > maxSteps {
					return false
				}
				prevStep = next.StepCount
				state = next
				if len(intents) == 1 {
					if _, isExit := intents[0].(kernel.Exit); isExit {
						break
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.AnyString()),
	))

	properties.TestingRun(t)
}
