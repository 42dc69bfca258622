package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"goa.design/clue/log"

	"github.com/agentkernel/agentkernel/agent/capability"
)

// Clue is a capability.Telemetry backed by goa.design/clue/log for
// structured logging and OpenTelemetry for tracing and metrics. Meter and
// Tracer must be obtained from an already-configured OTEL provider (clue's
// own bootstrap, typically); Clue does not configure exporters itself.
type Clue struct {
	tracer       trace.Tracer
	latencyHist  metric.Float64Histogram
	outcomeCount metric.Int64Counter
}

// NewClue builds a Clue telemetry implementation from an OTEL tracer and
// meter, creating the latency histogram and outcome counter on meter.
func NewClue(tracer trace.Tracer, meter metric.Meter) (*Clue, error) {
	latency, err := meter.Float64Histogram(
		"agentkernel.capability.latency",
		metric.WithDescription("capability call latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	outcomes, err := meter.Int64Counter(
		"agentkernel.capability.outcomes",
		metric.WithDescription("capability call outcomes by success/failure"),
	)
	if err != nil {
		return nil, err
	}
	return &Clue{tracer: tracer, latencyHist: latency, outcomeCount: outcomes}, nil
}

func (c *Clue) Logger() capability.Logger { return clueLogger{} }

func (c *Clue) StartSpan(ctx context.Context, name string) (context.Context, capability.Span) {
	ctx, span := c.tracer.Start(ctx, name)
	return ctx, clueSpan{span: span}
}

func (c *Clue) RecordLatency(capabilityName string, seconds float64) {
	c.latencyHist.Record(context.Background(), seconds, metric.WithAttributes(
		attributeString("capability", capabilityName),
	))
}

func (c *Clue) RecordOutcome(capabilityName string, ok bool) {
	c.outcomeCount.Add(context.Background(), 1, metric.WithAttributes(
		attributeString("capability", capabilityName),
		attributeBool("ok", ok),
	))
}

type clueLogger struct{}

func (clueLogger) Info(ctx context.Context, msg string, keyvals ...any) {
	log.Info(ctx, msg, logFields(keyvals)...)
}

func (clueLogger) Error(ctx context.Context, msg string, keyvals ...any) {
	log.Error(ctx, nil, append([]log.Fielder{log.KV{K: "msg", V: msg}}, logFields(keyvals)...)...)
}

func logFields(keyvals []any) []log.Fielder {
	fields := make([]log.Fielder, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, _ := keyvals[i].(string)
		fields = append(fields, log.KV{K: key, V: keyvals[i+1]})
	}
	return fields
}

type clueSpan struct {
	span trace.Span
}

func (s clueSpan) End() { s.span.End() }

func (s clueSpan) SetError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
}
