package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// SentenceVector is one embedded sentence headed for the store.
type SentenceVector struct {
	Sentence string
	RunName  string
	Vector   []float64
}

// Match is one nearest-neighbor result.
type Match struct {
	Sentence string
	RunName  string
	Score    float32
}

// EnsureCollection creates the configured collection with cosine distance if
// it does not exist yet. Dimension must match the encoder's embedding size.
func (c *Client) EnsureCollection(ctx context.Context, dimension int) error {
	start := time.Now()

	exists, err := c.api.CollectionExists(ctx, c.cfg.Collection)
	if err != nil {
		c.observe("ensure-collection", start, -1, err)
		return fmt.Errorf("vectorstore: cannot check collection %q: %w", c.cfg.Collection, err)
	}
	if exists {
		c.observe("ensure-collection", start, -1, nil)
		return nil
	}

	err = c.api.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		c.observe("ensure-collection", start, -1, err)
		return fmt.Errorf("vectorstore: cannot create collection %q: %w", c.cfg.Collection, err)
	}

	// The indexed_at payload carries RFC3339 timestamps; the datetime index
	// serves the time-range search filter.
	_, err = c.api.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: c.cfg.Collection,
		FieldName:      "indexed_at",
		FieldType:      qdrant.FieldType_FieldTypeDatetime.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	c.observe("ensure-collection", start, -1, err)
	if err != nil {
		return fmt.Errorf("vectorstore: cannot index collection %q: %w", c.cfg.Collection, err)
	}
	return nil
}

// UpsertSentences writes embedded sentences as points. Point ids are random
// UUIDs; the sentence text and originating run ride along as payload.
func (c *Client) UpsertSentences(ctx context.Context, vectors []SentenceVector) error {
	start := time.Now()
	if len(vectors) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(vectors))
	for i, sv := range vectors {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.NewString()),
			Vectors: qdrant.NewVectors(toFloat32(sv.Vector)...),
			Payload: qdrant.NewValueMap(map[string]any{
				"sentence":   sv.Sentence,
				"run_name":   sv.RunName,
				"indexed_at": time.Now().UTC().Format(time.RFC3339),
			}),
		}
	}

	_, err := c.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.cfg.Collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	c.observe("upsert", start, int64(len(points)), err)
	if err != nil {
		return fmt.Errorf("vectorstore: cannot upsert %d points: %w", len(points), err)
	}
	return nil
}

// SearchSimilar returns the sentences closest to the query embedding,
// optionally narrowed by the filter.
func (c *Client) SearchSimilar(ctx context.Context, vector []float64, filter SearchFilter, limit uint64) ([]Match, error) {
	start := time.Now()

	query := &qdrant.QueryPoints{
		CollectionName: c.cfg.Collection,
		Query:          qdrant.NewQuery(toFloat32(vector)...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         filter.build(),
	}

	points, err := c.api.Query(ctx, query)
	c.observe("search", start, int64(len(points)), err)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: search failed: %w", err)
	}

	matches := make([]Match, 0, len(points))
	for _, p := range points {
		m := Match{Score: p.GetScore()}
		if payload := p.GetPayload(); payload != nil {
			m.Sentence = payload["sentence"].GetStringValue()
			m.RunName = payload["run_name"].GetStringValue()
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
