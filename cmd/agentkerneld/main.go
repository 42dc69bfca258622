// Command agentkerneld runs a single agent session end to end against an
// in-process capability runtime, reading its configuration from a YAML
// file and user messages from stdin, one per line. It is meant as a reference
// wiring of every layer — kernel, graph, session, capability, policy —
// rather than a production entry point; a real deployment would replace
// the in-process transport and stub capabilities with the redis/grpc
// transports and the model/anthropic, model/openai or model/bedrock
// adapters under transport/ and model/.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/agentkernel/agentkernel/agent/capability"
	"github.com/agentkernel/agentkernel/agent/ids"
	"github.com/agentkernel/agentkernel/agent/kernel"
	"github.com/agentkernel/agentkernel/agent/policy"
	"github.com/agentkernel/agentkernel/agent/session"
	"github.com/agentkernel/agentkernel/agent/telemetry"
	"github.com/agentkernel/agentkernel/config"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (see config.Options)")
	flag.Parse()

	opts := config.Options{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("agentkerneld: %v", err)
		}
		opts = loaded
	}
	opts.ApplyDefaults()

	cfg := kernel.Config{
		SystemPrompt:       opts.Agent.SystemPrompt,
		Model:              opts.Model.Model,
		MaxTokens:          opts.Agent.MaxTokens,
		Temperature:        opts.Agent.Temperature,
		Stream:             opts.Agent.Stream,
		MaxSteps:           opts.Agent.MaxSteps,
		MaxDelegations:     opts.Agent.MaxDelegations,
		MaxRejections:      opts.Agent.MaxRejections,
		MaxParseFailures:   opts.Agent.MaxParseFailures,
		MaxRepeatToolCalls: opts.Agent.MaxRepeatToolCalls,
		Policy: policy.Policy{
			AllowedTools:        opts.Policy.AllowedTools,
			ForbiddenPatterns:   opts.Policy.ForbiddenPatterns,
			AutoApprovePatterns: opts.Policy.AutoApprovePatterns,
		},
	}

	runtime := capability.Runtime{
		LLM:       echoLLM{},
		Tool:      noopTool{},
		Approval:  autoApprove{},
		Worker:    noopWorker{},
		Telemetry: telemetry.Noop{},
	}

	transport := &inProcessTransport{runtime: runtime}
	scheduler := session.New(kernel.NewAgentState(cfg.MaxSteps, cfg.MaxDelegations, cfg.MaxRejections), cfg, transport)
	transport.scheduler = scheduler

	reader := bufio.NewScanner(os.Stdin)
	fmt.Println("agentkerneld: enter a message (Ctrl-D to exit)")
	for reader.Scan() {
		scheduler.Enqueue(kernel.EventEnvelope{
			Event:        kernel.UserMessage{Text: reader.Text()},
			LogicalClock: 1,
			Source:       ids.SourceUser,
		})
		for {
			more, err := scheduler.Step(context.Background())
			if err != nil {
				log.Fatalf("agentkerneld: %v", err)
			}
			if !more {
				break
			}
		}
	}
}

// inProcessTransport carries intents straight through capability.Runtime
// and feeds the resulting event back into the same scheduler, for local
// runs that don't need a real transport.
type inProcessTransport struct {
	runtime   capability.Runtime
	scheduler *session.Scheduler
}

func (t *inProcessTransport) Dispatch(ctx context.Context, id ids.IntentId, intent kernel.Intent) error {
	event := t.runtime.Carry(ctx, id, intent)
	if event == nil {
		return nil
	}
	t.scheduler.Enqueue(kernel.EventEnvelope{Event: event, LogicalClock: 1, Source: ids.SourceRuntime})
	return nil
}

type echoLLM struct{}

func (echoLLM) Complete(ctx context.Context, req kernel.RequestLLM) (string, error) {
	return `{"f": "this is a reference wiring; no real model is configured"}`, nil
}

type noopTool struct{}

func (noopTool) Call(ctx context.Context, name, args string) (string, bool, error) {
	return "", false, fmt.Errorf("no tool named %q is registered", name)
}

type autoApprove struct{}

func (autoApprove) Request(ctx context.Context, req kernel.RequestApproval) (bool, string, error) {
	return true, "auto-approved by reference wiring", nil
}

type noopWorker struct{}

func (noopWorker) Spawn(ctx context.Context, spec string) (string, error) {
	return "", fmt.Errorf("delegation is not configured in this reference wiring")
}

func (noopWorker) Await(ctx context.Context, workerID string) (string, error) {
	return "", fmt.Errorf("delegation is not configured in this reference wiring")
}
