package index

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore persists chunks in Postgres so a restarted process can rebuild its
// in-memory index without re-embedding. The table is append-only; rows are
// only ever inserted.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore connects to the database named by databaseURL.
func NewPgStore(ctx context.Context, databaseURL string) (*PgStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL not set")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &PgStore{pool: pool}, nil
}

// Init creates the chunk table if it does not exist.
func (s *PgStore) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS document_chunks (
			document_id   TEXT        NOT NULL,
			start_offset  INT         NOT NULL,
			end_offset    INT         NOT NULL,
			version       TEXT        NOT NULL,
			ticker        TEXT        NOT NULL,
			doc_type      TEXT        NOT NULL,
			published_at  TIMESTAMPTZ NOT NULL,
			content       TEXT        NOT NULL,
			embedding     REAL[]      NOT NULL,
			PRIMARY KEY (document_id, start_offset, end_offset, version)
		)`)
	return err
}

// AppendChunks inserts a batch of embedded chunks.
func (s *PgStore) AppendChunks(ctx context.Context, chunks []DocumentChunk) error {
	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(`
			INSERT INTO document_chunks
				(document_id, start_offset, end_offset, version, ticker, doc_type, published_at, content, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT DO NOTHING`,
			c.DocumentID, c.StartOffset, c.EndOffset, c.Version, c.Ticker,
			string(c.Type), c.PublishedAt, c.Text, c.Embedding)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range chunks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to persist chunk batch: %w", err)
		}
	}
	return nil
}

// LoadAll reads every persisted chunk, for warming a fresh in-memory index.
func (s *PgStore) LoadAll(ctx context.Context) ([]DocumentChunk, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT document_id, start_offset, end_offset, version, ticker, doc_type, published_at, content, embedding
		FROM document_chunks
		ORDER BY document_id, start_offset`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []DocumentChunk
	for rows.Next() {
		var c DocumentChunk
		var docType string
		if err := rows.Scan(&c.DocumentID, &c.StartOffset, &c.EndOffset, &c.Version,
			&c.Ticker, &docType, &c.PublishedAt, &c.Text, &c.Embedding); err != nil {
			return nil, err
		}
		c.Type = DocType(docType)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Close releases the connection pool.
func (s *PgStore) Close() {
	s.pool.Close()
}
