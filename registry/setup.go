package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one training run's registry row.
type Run struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Strategy    string    `gorm:"not null"`
	Pooler      string    `gorm:"not null"`
	Temperature float64
	TokenCoeff  float64
	Epochs      int
	BatchSize   int
	Seed        int64
	Status      string `gorm:"index;not null"`
	FinalLoss   *float64
	Failure     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Registry is the database client for run records.
type Registry struct {
	db *gorm.DB
}

// NewRegistry connects to the database and migrates the runs table when
// configured to.
func NewRegistry(cfg Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("registry: cannot connect: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&Run{}); err != nil {
			return nil, fmt.Errorf("registry: cannot migrate runs table: %w", err)
		}
	}

	return &Registry{db: db}, nil
}

// NewRegistryWithDB wraps an existing connection; used by tests.
func NewRegistryWithDB(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// CreateRun inserts a new run in running state and returns its id.
func (r *Registry) CreateRun(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.Status = StatusRunning

	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("registry: cannot create run %q: %w", run.Name, err)
	}
	return nil
}

// CompleteRun marks a run finished and records its final loss.
func (r *Registry) CompleteRun(ctx context.Context, id uuid.UUID, finalLoss float64) error {
	res := r.db.WithContext(ctx).Model(&Run{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     StatusCompleted,
		"final_loss": finalLoss,
	})
	if res.Error != nil {
		return fmt.Errorf("registry: cannot complete run %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("registry: run %s not found", id)
	}
	return nil
}

// FailRun marks a run failed and records the failure reason.
func (r *Registry) FailRun(ctx context.Context, id uuid.UUID, cause error) error {
	failure := ""
	if cause != nil {
		failure = cause.Error()
	}

	res := r.db.WithContext(ctx).Model(&Run{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":  StatusFailed,
		"failure": failure,
	})
	if res.Error != nil {
		return fmt.Errorf("registry: cannot fail run %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("registry: run %s not found", id)
	}
	return nil
}

// GetRun fetches one run by id.
func (r *Registry) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("registry: cannot fetch run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns runs newest first, optionally filtered by status.
func (r *Registry) ListRuns(ctx context.Context, status string, limit int) ([]Run, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var runs []Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("registry: cannot list runs: %w", err)
	}
	return runs, nil
}
