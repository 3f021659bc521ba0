package vectorstore

import (
	"time"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// TimeRange bounds matches by indexing time. Nil bounds are open.
type TimeRange struct {
	After  *time.Time
	Before *time.Time
}

// SearchFilter narrows a similarity search. The zero value matches
// everything.
type SearchFilter struct {
	// RunName restricts matches to vectors written by one training run.
	RunName string

	// Indexed restricts matches by when the vector was written.
	Indexed TimeRange
}

func (f SearchFilter) build() *qdrant.Filter {
	var must []*qdrant.Condition
	if f.RunName != "" {
		must = append(must, qdrant.NewMatch("run_name", f.RunName))
	}
	if cond := f.Indexed.condition("indexed_at"); cond != nil {
		must = append(must, cond)
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

func (r TimeRange) condition(key string) *qdrant.Condition {
	dateRange := &qdrant.DatetimeRange{
		Gte: toTimestamp(r.After),
		Lt:  toTimestamp(r.Before),
	}
	if dateRange.Gte == nil && dateRange.Lt == nil {
		return nil
	}
	return qdrant.NewDatetimeRange(key, dateRange)
}

func toTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}
