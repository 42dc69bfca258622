// Package telemetry provides the concrete Telemetry implementations the
// capability runtime is wired with: a noop implementation for tests and
// local runs, and an OpenTelemetry/clue-backed implementation for
// production. Both satisfy capability.Telemetry.
package telemetry

import (
	"context"

	"github.com/agentkernel/agentkernel/agent/capability"
)

// Noop satisfies capability.Telemetry by discarding everything. It is the
// zero-configuration default so capability.Runtime never needs a nil
// check.
type Noop struct{}

func (Noop) Logger() capability.Logger { return noopLogger{} }

func (Noop) StartSpan(ctx context.Context, name string) (context.Context, capability.Span) {
	return ctx, noopSpan{}
}

func (Noop) RecordLatency(capabilityName string, seconds float64) {}

func (Noop) RecordOutcome(capabilityName string, ok bool) {}

type noopLogger struct{}

func (noopLogger) Info(ctx context.Context, msg string, keyvals ...any)  {}
func (noopLogger) Error(ctx context.Context, msg string, keyvals ...any) {}

type noopSpan struct{}

func (noopSpan) End()             {}
func (noopSpan) SetError(error) {}
