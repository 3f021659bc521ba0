package observability

import "time"

// OperationContext carries everything an Observer needs to record a single
// operation performed by one of the infrastructure clients (object store,
// vector store, event publisher, ...).
type OperationContext struct {
	// Component identifies the client emitting the operation, e.g. "minio",
	// "qdrant", "kafka".
	Component string

	// Operation is the action performed, e.g. "put", "upsert", "publish".
	Operation string

	// Resource is the primary resource operated on (bucket, collection, topic).
	Resource string

	// SubResource is optional extra context (object key, run id, ...).
	SubResource string

	// Duration is how long the operation took.
	Duration time.Duration

	// Error is non-nil if the operation failed.
	Error error

	// Size is the payload size in bytes, or -1 if unknown.
	Size int64

	// Metadata holds any additional key-value context.
	Metadata map[string]interface{}
}

// Observer receives operation notifications from infrastructure clients.
// Implementations typically forward them to metrics and tracing.
//
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}
