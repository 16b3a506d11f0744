// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists lookup outcomes to a local SQLite database so
// past concept resolutions can be reviewed without re-querying the services.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ontomap/pkg/types"
)

const dbFile = "lookups.db"

// Record is one persisted lookup outcome.
type Record struct {
	ID             int64     `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	ConceptKey     string    `json:"concept_key"`
	ConceptLabel   string    `json:"concept_label"`
	Ontologies     string    `json:"ontologies"`
	Services       []string  `json:"services"`
	BioPortalCount int       `json:"bioportal_count"`
	OLSCount       int       `json:"ols_count"`
	MergedCount    int       `json:"merged_count"`
	Discrepancies  []string  `json:"discrepancies,omitempty"`
}

// Summary aggregates the stored history.
type Summary struct {
	TotalLookups      int `json:"total_lookups"`
	DistinctConcepts  int `json:"distinct_concepts"`
	WithDiscrepancies int `json:"with_discrepancies"`
}

// Store manages the lookup history SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database at cfg.Dir/lookups.db and
// creates the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS lookups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			concept_key TEXT NOT NULL,
			concept_label TEXT NOT NULL,
			ontologies TEXT,
			services TEXT,
			bioportal_count INTEGER,
			ols_count INTEGER,
			merged_count INTEGER,
			discrepancies TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_concept_key ON lookups(concept_key)`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_timestamp ON lookups(timestamp)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts one lookup outcome. A zero Timestamp is replaced with the
// current time.
func (s *Store) Record(ctx context.Context, rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	servicesJSON, _ := json.Marshal(rec.Services)
	discrepanciesJSON, _ := json.Marshal(rec.Discrepancies)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lookups (timestamp, concept_key, concept_label, ontologies,
			services, bioportal_count, ols_count, merged_count, discrepancies)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.ConceptKey, rec.ConceptLabel, rec.Ontologies,
		string(servicesJSON), rec.BioPortalCount, rec.OLSCount,
		rec.MergedCount, string(discrepanciesJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting lookup record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. A non-positive limit
// defaults to 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, concept_key, concept_label, ontologies,
			services, bioportal_count, ols_count, merged_count, discrepancies
		 FROM lookups ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying lookup history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var ts, servicesJSON, discrepanciesJSON string
		if err := rows.Scan(&rec.ID, &ts, &rec.ConceptKey, &rec.ConceptLabel,
			&rec.Ontologies, &servicesJSON, &rec.BioPortalCount, &rec.OLSCount,
			&rec.MergedCount, &discrepanciesJSON); err != nil {
			return nil, fmt.Errorf("scanning lookup record: %w", err)
		}
		rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing record timestamp: %w", err)
		}
		if err := json.Unmarshal([]byte(servicesJSON), &rec.Services); err != nil {
			return nil, fmt.Errorf("parsing record services: %w", err)
		}
		if err := json.Unmarshal([]byte(discrepanciesJSON), &rec.Discrepancies); err != nil {
			return nil, fmt.Errorf("parsing record discrepancies: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ForConcept returns all records for one concept key, newest first.
func (s *Store) ForConcept(ctx context.Context, conceptKey string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, concept_key, concept_label, ontologies,
			services, bioportal_count, ols_count, merged_count, discrepancies
		 FROM lookups WHERE concept_key = ? ORDER BY id DESC LIMIT ?`,
		conceptKey, limit)
	if err != nil {
		return nil, fmt.Errorf("querying lookup history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var ts, servicesJSON, discrepanciesJSON string
		if err := rows.Scan(&rec.ID, &ts, &rec.ConceptKey, &rec.ConceptLabel,
			&rec.Ontologies, &servicesJSON, &rec.BioPortalCount, &rec.OLSCount,
			&rec.MergedCount, &discrepanciesJSON); err != nil {
			return nil, fmt.Errorf("scanning lookup record: %w", err)
		}
		rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing record timestamp: %w", err)
		}
		if err := json.Unmarshal([]byte(servicesJSON), &rec.Services); err != nil {
			return nil, fmt.Errorf("parsing record services: %w", err)
		}
		if err := json.Unmarshal([]byte(discrepanciesJSON), &rec.Discrepancies); err != nil {
			return nil, fmt.Errorf("parsing record discrepancies: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Summarize computes aggregate counts over the whole history.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	var summary Summary
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*),
			count(DISTINCT concept_key),
			count(CASE WHEN discrepancies IS NOT NULL
				AND discrepancies != 'null' AND discrepancies != '[]'
				THEN 1 END)
		 FROM lookups`,
	).Scan(&summary.TotalLookups, &summary.DistinctConcepts, &summary.WithDiscrepancies)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing lookup history: %w", err)
	}
	return summary, nil
}

// Clear deletes every stored record and returns the number removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lookups`)
	if err != nil {
		return 0, fmt.Errorf("clearing lookup history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleared records: %w", err)
	}
	return n, nil
}
