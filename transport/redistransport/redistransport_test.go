package redistransport_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/agentkernel/agentkernel/agent/ids"
	"github.com/agentkernel/agentkernel/agent/kernel"
	"github.com/agentkernel/agentkernel/transport/redistransport"
)

func TestDispatchAndConsume(t *testing.T) {
	if testing.Short() {
		t.Skip("requires Docker; skipped in -short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	transport := redistransport.New(client, "agentkernel:intents", time.Minute)
	consumer := redistransport.NewConsumer(client, transport, "runtime", "worker-1")
	require.NoError(t, consumer.EnsureGroup(ctx))

	id := ids.FromStep(1, 0)
	require.NoError(t, transport.Dispatch(ctx, id, kernel.CallTool{Name: "fs_read", Args: "{}"}))

	handled := 0
	require.NoError(t, consumer.Poll(ctx, 10, func(w redistransport.WireIntent) error {
		handled++
		require.Equal(t, kernel.IntentCallTool, w.Kind)
		return nil
	}))
	require.Equal(t, 1, handled)
}
