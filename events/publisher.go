package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sentencelab/simcl/observability"
)

// StepEvent is emitted after every optimization step.
type StepEvent struct {
	RunID        string    `json:"run_id"`
	RunName      string    `json:"run_name"`
	Epoch        int       `json:"epoch"`
	Step         int       `json:"step"`
	SentenceLoss float64   `json:"sentence_loss"`
	TokenLoss    float64   `json:"token_loss"`
	TotalLoss    float64   `json:"total_loss"`
	At           time.Time `json:"at"`
}

// RunEvent is emitted when a run starts, completes or fails.
type RunEvent struct {
	RunID   string    `json:"run_id"`
	RunName string    `json:"run_name"`
	Status  string    `json:"status"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher writes training events to Kafka. Events are keyed by run id so
// one run's events stay ordered within a partition.
type Publisher struct {
	writer   *kafka.Writer
	cfg      Config
	observer observability.Observer
}

// NewPublisher builds a publisher for the configured topic.
func NewPublisher(cfg Config) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
	}

	return &Publisher{writer: writer, cfg: cfg}, nil
}

// WithObserver attaches observability hooks for publish operations.
func (p *Publisher) WithObserver(observer observability.Observer) *Publisher {
	p.observer = observer
	return p
}

// PublishStep emits one step event.
func (p *Publisher) PublishStep(ctx context.Context, ev StepEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return p.publish(ctx, "step", ev.RunID, ev)
}

// PublishRun emits one run lifecycle event.
func (p *Publisher) PublishRun(ctx context.Context, ev RunEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return p.publish(ctx, "run", ev.RunID, ev)
}

func (p *Publisher) publish(ctx context.Context, kind, key string, ev interface{}) error {
	start := time.Now()

	raw, err := json.Marshal(ev)
	if err != nil {
		p.observe(kind, start, -1, err)
		return fmt.Errorf("events: cannot marshal %s event: %w", kind, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: raw,
		Headers: []kafka.Header{
			{Key: "event-kind", Value: []byte(kind)},
		},
	})
	p.observe(kind, start, int64(len(raw)), err)
	if err != nil {
		return fmt.Errorf("events: cannot publish %s event: %w", kind, err)
	}
	return nil
}

func (p *Publisher) observe(op string, start time.Time, size int64, err error) {
	if p.observer == nil {
		return
	}
	p.observer.ObserveOperation(observability.OperationContext{
		Component: "kafka",
		Operation: op,
		Resource:  p.cfg.Topic,
		Duration:  time.Since(start),
		Error:     err,
		Size:      size,
	})
}

// Close flushes buffered events and releases the writer.
func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("events: cannot close writer: %w", err)
	}
	return nil
}
