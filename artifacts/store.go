package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
)

const (
	runArgsObject    = "run_args.json"
	checkpointPrefix = "checkpoints"
)

// PutJSON marshals a value and stores it under <run>/<name>.
func (s *Store) PutJSON(ctx context.Context, run, name string, value interface{}) error {
	start := time.Now()
	key := fmt.Sprintf("%s/%s", run, name)

	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		s.observe("put", key, start, -1, err)
		return fmt.Errorf("artifacts: cannot marshal %s: %w", key, err)
	}

	_, err = s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	s.observe("put", key, start, int64(len(raw)), err)
	if err != nil {
		return fmt.Errorf("artifacts: cannot store %s: %w", key, err)
	}
	return nil
}

// GetJSON fetches <run>/<name> and unmarshals it into out.
func (s *Store) GetJSON(ctx context.Context, run, name string, out interface{}) error {
	start := time.Now()
	key := fmt.Sprintf("%s/%s", run, name)

	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		s.observe("get", key, start, -1, err)
		return fmt.Errorf("artifacts: cannot fetch %s: %w", key, err)
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	s.observe("get", key, start, int64(len(raw)), err)
	if err != nil {
		return fmt.Errorf("artifacts: cannot read %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("artifacts: cannot parse %s: %w", key, err)
	}
	return nil
}

// SaveRunArgs persists the resolved run arguments next to the run's other
// artifacts, so every run records the exact configuration that produced it.
func (s *Store) SaveRunArgs(ctx context.Context, run string, args interface{}) error {
	return s.PutJSON(ctx, run, runArgsObject, args)
}

// LoadRunArgs fetches a run's recorded arguments.
func (s *Store) LoadRunArgs(ctx context.Context, run string, out interface{}) error {
	return s.GetJSON(ctx, run, runArgsObject, out)
}

// SaveCheckpoint stores a training checkpoint for the given epoch.
func (s *Store) SaveCheckpoint(ctx context.Context, run string, epoch int, checkpoint interface{}) error {
	return s.PutJSON(ctx, run, fmt.Sprintf("%s/epoch-%04d.json", checkpointPrefix, epoch), checkpoint)
}

// LoadCheckpoint fetches the checkpoint written for the given epoch.
func (s *Store) LoadCheckpoint(ctx context.Context, run string, epoch int, out interface{}) error {
	return s.GetJSON(ctx, run, fmt.Sprintf("%s/epoch-%04d.json", checkpointPrefix, epoch), out)
}

// ListRunObjects returns the keys of every artifact a run has written.
func (s *Store) ListRunObjects(ctx context.Context, run string) ([]string, error) {
	start := time.Now()

	var keys []string
	for obj := range s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    run + "/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			s.observe("list", run, start, -1, obj.Err)
			return nil, fmt.Errorf("artifacts: cannot list run %q: %w", run, obj.Err)
		}
		keys = append(keys, obj.Key)
	}

	s.observe("list", run, start, int64(len(keys)), nil)
	return keys, nil
}
