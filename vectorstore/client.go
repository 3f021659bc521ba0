package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/sentencelab/simcl/observability"
)

// Client wraps the Qdrant API for the embedding sink operations the trainer
// and the inference path need.
type Client struct {
	api      *qdrant.Client
	cfg      Config
	observer observability.Observer
}

// NewClient connects to Qdrant and verifies the connection with a health
// check.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	api, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: cannot create client: %w", err)
	}

	c := &Client{api: api, cfg: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if _, err := api.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("vectorstore: health check failed: %w", err)
	}

	return c, nil
}

// WithObserver attaches observability hooks for vector store operations.
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if err := c.api.Close(); err != nil {
		return fmt.Errorf("vectorstore: cannot close connection: %w", err)
	}
	return nil
}

func (c *Client) observe(op string, start time.Time, size int64, err error) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component: "qdrant",
		Operation: op,
		Resource:  c.cfg.Collection,
		Duration:  time.Since(start),
		Error:     err,
		Size:      size,
	})
}
