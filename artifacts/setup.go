package artifacts

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sentencelab/simcl/logger"
	"github.com/sentencelab/simcl/observability"
)

// Store is the object storage client for run artifacts.
type Store struct {
	client   *minio.Client
	cfg      Config
	observer observability.Observer
	logger   *logger.LoggerClient
}

// NewStore connects to object storage, validates the connection and makes
// sure the artifact bucket exists.
func NewStore(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("artifacts: cannot create client: %w", err)
	}

	s := &Store{client: client, cfg: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// WithObserver attaches observability hooks for storage operations.
func (s *Store) WithObserver(observer observability.Observer) *Store {
	s.observer = observer
	return s
}

// WithLogger attaches a logger for lifecycle events.
func (s *Store) WithLogger(log *logger.LoggerClient) *Store {
	s.logger = log
	return s
}

func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("artifacts: cannot check bucket %q: %w", s.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if !s.cfg.CreateBucket {
		return fmt.Errorf("artifacts: bucket %q does not exist", s.cfg.Bucket)
	}

	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("artifacts: cannot create bucket %q: %w", s.cfg.Bucket, err)
	}
	if s.logger != nil {
		s.logger.Info("created artifact bucket", nil, map[string]interface{}{"bucket": s.cfg.Bucket})
	}
	return nil
}

func (s *Store) observe(op, key string, start time.Time, size int64, err error) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveOperation(observability.OperationContext{
		Component:   "artifacts",
		Operation:   op,
		Resource:    s.cfg.Bucket,
		SubResource: key,
		Duration:    time.Since(start),
		Error:       err,
		Size:        size,
	})
}
