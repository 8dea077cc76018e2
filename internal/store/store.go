// Package store persists cleaned pages and periodic corpus statistics to
// PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE cleaned_pages (
//	    source      TEXT NOT NULL,
//	    page        INT  NOT NULL,
//	    content     TEXT NOT NULL,
//	    entities    JSONB NOT NULL DEFAULT '[]',
//	    cleaned_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (source, page)
//	);
//
//	CREATE TABLE corpus_stats (
//	    id          BIGSERIAL PRIMARY KEY,
//	    snapshot    JSONB NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayurcorpus/corpus-cleaning-platform/internal/pipeline"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/metrics"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/postgres"
)

// CorpusStats is one snapshot of pipeline counters, stored as JSONB.
type CorpusStats struct {
	Documents       int64     `json:"documents"`
	PagesCleaned    int64     `json:"pages_cleaned"`
	PagesSkipped    int64     `json:"pages_skipped"`
	WordsCorrected  int64     `json:"words_corrected"`
	EntitiesFound   int64     `json:"entities_found"`
	VocabularyTerms int       `json:"vocabulary_terms"`
	CacheHits       int64     `json:"cache_hits"`
	CacheMisses     int64     `json:"cache_misses"`
	Timestamp       time.Time `json:"timestamp"`
}

// Store reads and writes cleaned pages and stats snapshots.
type Store struct {
	client  *postgres.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New builds a Store. m may be nil.
func New(client *postgres.Client, m *metrics.Metrics) *Store {
	return &Store{
		client:  client,
		metrics: m,
		logger:  slog.Default().With("component", "store"),
	}
}

// SavePage upserts one cleaned page, replacing any earlier cleaning of the
// same (source, page).
func (s *Store) SavePage(ctx context.Context, page pipeline.CleanedPage) error {
	entities, err := json.Marshal(page.Metadata.Entities)
	if err != nil {
		return fmt.Errorf("encoding entities: %w", err)
	}
	_, err = s.client.DB.ExecContext(ctx, `
		INSERT INTO cleaned_pages (source, page, content, entities, cleaned_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (source, page)
		DO UPDATE SET content = EXCLUDED.content,
		              entities = EXCLUDED.entities,
		              cleaned_at = now()`,
		page.Metadata.Source, page.Metadata.Page, page.Content, entities,
	)
	if err != nil {
		return fmt.Errorf("saving page %s/%d: %w", page.Metadata.Source, page.Metadata.Page, err)
	}
	return nil
}

// SaveDocument writes all pages of a document in one transaction, so a
// partially cleaned document never becomes visible.
func (s *Store) SaveDocument(ctx context.Context, pages []pipeline.CleanedPage) error {
	return s.client.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO cleaned_pages (source, page, content, entities, cleaned_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (source, page)
			DO UPDATE SET content = EXCLUDED.content,
			              entities = EXCLUDED.entities,
			              cleaned_at = now()`)
		if err != nil {
			return fmt.Errorf("preparing page upsert: %w", err)
		}
		defer stmt.Close()

		for _, page := range pages {
			entities, err := json.Marshal(page.Metadata.Entities)
			if err != nil {
				return fmt.Errorf("encoding entities: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, page.Metadata.Source, page.Metadata.Page, page.Content, entities); err != nil {
				return fmt.Errorf("saving page %s/%d: %w", page.Metadata.Source, page.Metadata.Page, err)
			}
		}
		return nil
	})
}

// PagesBySource returns all cleaned pages of one source in page order.
func (s *Store) PagesBySource(ctx context.Context, source string) ([]pipeline.CleanedPage, error) {
	rows, err := s.client.DB.QueryContext(ctx, `
		SELECT page, content, entities
		FROM cleaned_pages
		WHERE source = $1
		ORDER BY page`,
		source,
	)
	if err != nil {
		return nil, fmt.Errorf("querying pages for %s: %w", source, err)
	}
	defer rows.Close()

	var pages []pipeline.CleanedPage
	for rows.Next() {
		p := pipeline.CleanedPage{Metadata: pipeline.Metadata{Source: source}}
		var entities []byte
		if err := rows.Scan(&p.Metadata.Page, &p.Content, &entities); err != nil {
			return nil, fmt.Errorf("scanning page row: %w", err)
		}
		if err := json.Unmarshal(entities, &p.Metadata.Entities); err != nil {
			return nil, fmt.Errorf("decoding entities for %s/%d: %w", source, p.Metadata.Page, err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// SaveStatsSnapshot appends one stats snapshot.
func (s *Store) SaveStatsSnapshot(ctx context.Context, stats CorpusStats) error {
	if stats.Timestamp.IsZero() {
		stats.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encoding stats snapshot: %w", err)
	}
	_, err = s.client.DB.ExecContext(ctx,
		`INSERT INTO corpus_stats (snapshot) VALUES ($1)`, payload)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SnapshotSavedTotal.WithLabelValues("error").Inc()
		}
		return fmt.Errorf("saving stats snapshot: %w", err)
	}
	if s.metrics != nil {
		s.metrics.SnapshotSavedTotal.WithLabelValues("ok").Inc()
	}
	return nil
}

// LatestStats returns the most recent snapshot, or sql.ErrNoRows when none
// has been written yet.
func (s *Store) LatestStats(ctx context.Context) (CorpusStats, error) {
	var payload []byte
	err := s.client.DB.QueryRowContext(ctx,
		`SELECT snapshot FROM corpus_stats ORDER BY id DESC LIMIT 1`).Scan(&payload)
	if err != nil {
		return CorpusStats{}, err
	}
	var stats CorpusStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return CorpusStats{}, fmt.Errorf("decoding stats snapshot: %w", err)
	}
	return stats, nil
}

// StartPeriodicSnapshot writes a snapshot from collect every interval until
// ctx is cancelled. Failures are logged and the loop continues.
func (s *Store) StartPeriodicSnapshot(ctx context.Context, interval time.Duration, collect func() CorpusStats) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.SaveStatsSnapshot(ctx, collect()); err != nil {
					s.logger.Error("stats snapshot failed", "error", err)
				}
			}
		}
	}()
}

// Ping verifies database connectivity, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.DB.PingContext(ctx)
}
