package vectorstore

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// qdrantContainer wraps a Qdrant container started for a test.
type qdrantContainer struct {
	testcontainers.Container
	Host string
	Port int
}

func setupQdrantContainer(ctx context.Context) (*qdrantContainer, error) {
	req := testcontainers.ContainerRequest{
		Image: "qdrant/qdrant:v1.11.0",
		Env: map[string]string{
			"QDRANT__SERVICE__GRPC_PORT": "6334",
		},
		ExposedPorts: []string{"6334/tcp"},
		WaitingFor:   wait.ForListeningPort("6334/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start qdrant container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}
	mappedPort, err := container.MappedPort(ctx, "6334")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	if err := waitForPort(host, mappedPort.Port(), 30*time.Second); err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("qdrant container not ready: %w", err)
	}

	return &qdrantContainer{
		Container: container,
		Host:      host,
		Port:      mappedPort.Int(),
	}, nil
}

func waitForPort(host, port string, timeout time.Duration) error {
	start := time.Now()
	for {
		if time.Since(start) > timeout {
			return fmt.Errorf("timed out waiting for %s:%s", host, port)
		}
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), 2*time.Second)
		if err == nil {
			_ = conn.Close()
			time.Sleep(2 * time.Second)
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func TestClientEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	containerInstance, err := setupQdrantContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	client, err := NewClient(Config{
		Host:       containerInstance.Host,
		Port:       containerInstance.Port,
		Collection: "embeddings-test",
		Timeout:    10 * time.Second,
	})
	require.NoError(t, err)
	defer func() { require.NoError(t, client.Close()) }()

	t.Run("EnsureCollection", func(t *testing.T) {
		require.NoError(t, client.EnsureCollection(ctx, 4))
		// Second call is a no-op.
		require.NoError(t, client.EnsureCollection(ctx, 4))
	})

	t.Run("UpsertAndSearch", func(t *testing.T) {
		vectors := []SentenceVector{
			{Sentence: "the cat sat on the mat", RunName: "run-a", Vector: []float64{1, 0, 0, 0}},
			{Sentence: "a dog ran fast", RunName: "run-a", Vector: []float64{0, 1, 0, 0}},
			{Sentence: "stocks fell sharply", RunName: "run-b", Vector: []float64{0, 0, 1, 0}},
		}
		require.NoError(t, client.UpsertSentences(ctx, vectors))

		matches, err := client.SearchSimilar(ctx, []float64{0.9, 0.1, 0, 0}, SearchFilter{}, 2)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "the cat sat on the mat", matches[0].Sentence)
		assert.Greater(t, matches[0].Score, matches[1].Score)
	})

	t.Run("SearchFilteredByRun", func(t *testing.T) {
		matches, err := client.SearchSimilar(ctx, []float64{0.5, 0.5, 0.5, 0}, SearchFilter{RunName: "run-b"}, 10)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "stocks fell sharply", matches[0].Sentence)
		assert.Equal(t, "run-b", matches[0].RunName)
	})

	t.Run("SearchFilteredByTime", func(t *testing.T) {
		future := time.Now().UTC().Add(time.Hour)
		matches, err := client.SearchSimilar(ctx, []float64{0.5, 0.5, 0.5, 0}, SearchFilter{
			Indexed: TimeRange{After: &future},
		}, 10)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("UpsertEmptyIsNoop", func(t *testing.T) {
		require.NoError(t, client.UpsertSentences(ctx, nil))
	})
}
