// Package redistransport implements an at-least-once session.Transport
// over Redis Streams: intents are XADDed for a pool of capability-runtime
// workers to XREADGROUP. Deduplication uses a Redis set keyed by intent id
// so a redelivered message is never carried out twice. The package carries
// intents only; it has no stream for completion events.
package redistransport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentkernel/agentkernel/agent/ids"
	"github.com/agentkernel/agentkernel/agent/kernel"
)

// WireIntent is the JSON envelope an intent is serialized as on the wire.
// Kind lets the consumer reconstruct the concrete kernel.Intent type;
// Payload holds its JSON-encoded fields.
type WireIntent struct {
	ID      string          `json:"id"`
	Kind    kernel.IntentKind `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Transport dispatches intents onto a Redis stream and deduplicates
// redelivered ones via a processed-ids set.
type Transport struct {
	client *redis.Client

	intentStream string
	dedupSet     string
	dedupTTL     time.Duration
}

// New returns a Transport publishing to intentStream on client, with
// dedup records expiring after dedupTTL (zero means never expire, which
// is only appropriate for short-lived test runs).
func New(client *redis.Client, intentStream string, dedupTTL time.Duration) *Transport {
	return &Transport{
		client:       client,
		intentStream: intentStream,
		dedupSet:     intentStream + ":dedup",
		dedupTTL:     dedupTTL,
	}
}

// Dispatch serializes intent and XADDs it to the intent stream, tagged
// with its deterministic id so a consumer can deduplicate redeliveries.
func (t *Transport) Dispatch(ctx context.Context, id ids.IntentId, intent kernel.Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("redistransport: marshaling intent %s: %w", id, err)
	}
	wire := WireIntent{ID: id.String(), Kind: intent.Kind(), Payload: payload}
	data, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("redistransport: marshaling envelope %s: %w", id, err)
	}
	return t.client.XAdd(ctx, &redis.XAddArgs{
		Stream: t.intentStream,
		Values: map[string]any{"data": data},
	}).Err()
}

// ClaimForProcessing attempts to mark id as being processed. It returns
// false if id has already been claimed (and not yet expired), meaning a
// redelivery of the same message should be acknowledged and dropped
// without re-executing the intent.
func (t *Transport) ClaimForProcessing(ctx context.Context, id ids.IntentId) (bool, error) {
	added, err := t.client.SAdd(ctx, t.dedupSet, id.String()).Result()
	if err != nil {
		return false, fmt.Errorf("redistransport: claiming %s: %w", id, err)
	}
	if t.dedupTTL > 0 {
		t.client.Expire(ctx, t.dedupSet, t.dedupTTL)
	}
	return added == 1, nil
}
