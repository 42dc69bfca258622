package mongostore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/agentkernel/agentkernel/agent/kernel"
	"github.com/agentkernel/agentkernel/store/mongostore"
)

// TestSaveLoadRoundTrip exercises mongostore against a throwaway MongoDB
// container. It is skipped in -short runs since it needs a working Docker
// daemon.
func TestSaveLoadRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("requires Docker; skipped in -short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	uri := "mongodb://" + host + ":" + port.Port()
	store, err := mongostore.Open(ctx, uri, "agentkernel_test", "sessions")
	require.NoError(t, err)

	snap := mongostore.Snapshot{
		SessionID:    "session-1",
		State:        kernel.NewAgentState(10, 5, 3),
		LogicalClock: 3,
		Step:         2,
	}
	require.NoError(t, store.Save(ctx, snap))

	loaded, ok, err := store.Load(ctx, "session-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, snap.Step, loaded.Step)

	require.NoError(t, store.Delete(ctx, "session-1"))
	_, ok, err = store.Load(ctx, "session-1")
	require.NoError(t, err)
	require.False(t, ok)
}
