package corpusdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Source reads sentences out of a Postgres table.
type Source struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewSource connects to the corpus database and verifies the connection.
func NewSource(ctx context.Context, cfg Config) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("corpusdb: cannot create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("corpusdb: cannot reach database: %w", err)
	}

	return &Source{pool: pool, cfg: cfg}, nil
}

// LoadSentences fetches all non-empty sentences, oldest rows first so runs
// over the same table stay reproducible.
func (s *Source) LoadSentences(ctx context.Context) ([]string, error) {
	column := pgx.Identifier{s.cfg.Column}.Sanitize()
	table := pgx.Identifier{s.cfg.Table}.Sanitize()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s <> '' ORDER BY ctid", column, table, column)
	if s.cfg.Limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, s.cfg.Limit)
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("corpusdb: query failed: %w", err)
	}
	defer rows.Close()

	var sentences []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("corpusdb: cannot scan row: %w", err)
		}
		if text = strings.TrimSpace(text); text != "" {
			sentences = append(sentences, text)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("corpusdb: row iteration failed: %w", err)
	}

	return sentences, nil
}

// Close releases the connection pool.
func (s *Source) Close() {
	s.pool.Close()
}
