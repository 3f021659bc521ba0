package corpusdb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image: "postgres:16-alpine",
		Env: map[string]string{
			"POSTGRES_USER":     "corpus",
			"POSTGRES_PASSWORD": "corpus",
			"POSTGRES_DB":       "corpus",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", err
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", err
	}

	dsn := fmt.Sprintf("postgres://corpus:corpus@%s:%s/corpus?sslmode=disable", host, port.Port())
	return container, dsn, nil
}

func TestSourceLoadsSentences(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, dsn, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `CREATE TABLE sentences (id SERIAL PRIMARY KEY, text TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO sentences (text) VALUES ('the cat sat'), (''), ('  a dog ran  ')`)
	require.NoError(t, err)

	source, err := NewSource(ctx, Config{DSN: dsn, Table: "sentences", Column: "text"})
	require.NoError(t, err)
	defer source.Close()

	sentences, err := source.LoadSentences(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"the cat sat", "a dog ran"}, sentences)

	t.Run("LimitCapsRows", func(t *testing.T) {
		limited, err := NewSource(ctx, Config{DSN: dsn, Table: "sentences", Column: "text", Limit: 1})
		require.NoError(t, err)
		defer limited.Close()

		sentences, err := limited.LoadSentences(ctx)
		require.NoError(t, err)
		assert.Len(t, sentences, 1)
	})
}

func TestNewSourceRejectsInvalidConfig(t *testing.T) {
	if _, err := NewSource(context.Background(), Config{}); err == nil {
		t.Error("expected error for empty dsn")
	}
}
