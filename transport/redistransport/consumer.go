package redistransport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/agentkernel/agentkernel/agent/ids"
)

// Consumer reads WireIntent envelopes from a consumer group on the
// intent stream, deduplicating against the same Transport's dedup set
// before handing each one to Handle.
type Consumer struct {
	client    *redis.Client
	transport *Transport
	group     string
	name      string
}

// NewConsumer returns a Consumer belonging to group, identified as name
// (the Redis consumer name within the group).
func NewConsumer(client *redis.Client, transport *Transport, group, name string) *Consumer {
	return &Consumer{client: client, transport: transport, group: group, name: name}
}

// EnsureGroup creates the consumer group on the intent stream if it does
// not already exist.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.transport.intentStream, c.group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("redistransport: ensuring group %s: %w", c.group, err)
	}
	return nil
}

// Poll reads up to count pending messages and invokes handle for each
// WireIntent that has not already been claimed by this Transport's dedup
// set. Acknowledged automatically on successful handling.
func (c *Consumer) Poll(ctx context.Context, count int64, handle func(WireIntent) error) error {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.name,
		Streams:  []string{c.transport.intentStream, ">"},
		Count:    count,
		Block:    0,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("redistransport: reading group: %w", err)
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			raw, _ := msg.Values["data"].(string)
			var wire WireIntent
			if err := json.Unmarshal([]byte(raw), &wire); err != nil {
				c.client.XAck(ctx, c.transport.intentStream, c.group, msg.ID)
				continue
			}

			claimed, err := c.transport.ClaimForProcessing(ctx, parseWireID(wire.ID))
			if err != nil {
				return err
			}
			if claimed {
				if err := handle(wire); err != nil {
					return err
				}
			}
			c.client.XAck(ctx, c.transport.intentStream, c.group, msg.ID)
		}
	}
	return nil
}

func parseWireID(s string) ids.IntentId {
	var step, index uint32
	_, _ = fmt.Sscanf(s, "%d.%d", &step, &index)
	return ids.FromStep(step, index)
}
