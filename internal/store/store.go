// Package store is the DuckDB-backed implementation of query.Store, the
// single adapter at the edge that renders internal/query.Predicate into
// SQL (spec.md §9 design note). Schema and connection handling follow the
// teacher's internal/duckdb package: database/sql plus the DuckDB driver,
// a single ensureSchema pass, and the Appender API for batch writes.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/dfci/matchengine/internal/fulltext"
)

// Store is a DuckDB-backed document store holding the clinical, genomic,
// trial, and trial_match collections (spec.md §6).
type Store struct {
	db   *sql.DB
	path string
	sv   *fulltext.Index // optional secondary index over structural_variant_comment
}

// Open opens or creates a DuckDB database at path ("" for in-memory).
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store directory: %w", err)
			}
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// WithFullText attaches a structural-variant full-text index (internal/fulltext)
// used to accelerate structural_variant_comment lookups before falling back
// to the regex ground truth (internal/fulltext package docs).
func (s *Store) WithFullText(idx *fulltext.Index) { s.sv = idx }

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// DB returns the underlying *sql.DB for loader/export use.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS clinical (
			sample_id VARCHAR PRIMARY KEY,
			mrn VARCHAR,
			clinical_id VARCHAR,
			oncotree_primary_diagnosis_name VARCHAR,
			birth_date DATE,
			gender VARCHAR,
			vital_status VARCHAR,
			ord_physician_name VARCHAR,
			ord_physician_email VARCHAR,
			report_date DATE
		)`,
		`CREATE TABLE IF NOT EXISTS genomic (
			sample_id VARCHAR,
			clinical_id VARCHAR,
			genomic_id VARCHAR,
			unique_genomic_id VARCHAR,
			true_hugo_symbol VARCHAR,
			true_protein_change VARCHAR,
			true_variant_classification VARCHAR,
			variant_category VARCHAR,
			cnv_call VARCHAR,
			wildtype BOOLEAN,
			true_transcript_exon INTEGER,
			mmr_status VARCHAR,
			structural_variant_comment VARCHAR,
			tier INTEGER,
			actionability VARCHAR
		)`,
		`CREATE INDEX IF NOT EXISTS idx_genomic_hugo_wildtype ON genomic (true_hugo_symbol, wildtype)`,
		`CREATE INDEX IF NOT EXISTS idx_clinical_sample_id ON clinical (sample_id)`,
		`CREATE TABLE IF NOT EXISTS trial (
			protocol_no VARCHAR PRIMARY KEY,
			nct_id VARCHAR,
			document VARCHAR -- serialized trial document (YAML/JSON), parsed by internal/matchtree
		)`,
		`CREATE TABLE IF NOT EXISTS trial_match (
			sample_id VARCHAR,
			mrn VARCHAR,
			protocol_no VARCHAR,
			nct_id VARCHAR,
			match_level VARCHAR,
			internal_id VARCHAR,
			code VARCHAR,
			arm_name VARCHAR,
			arm_description VARCHAR,
			trial_accrual_status VARCHAR,
			cancer_type_match VARCHAR,
			coordinating_center VARCHAR,
			genomic_alteration VARCHAR,
			match_type VARCHAR,
			clinical_only BOOLEAN,
			genomic_id VARCHAR,
			true_hugo_symbol VARCHAR,
			true_protein_change VARCHAR,
			variant_classification VARCHAR,
			variant_category VARCHAR,
			cnv_call VARCHAR,
			wildtype BOOLEAN,
			mmr_status VARCHAR,
			tier INTEGER,
			actionability VARCHAR,
			oncotree_primary_diagnosis_name VARCHAR,
			gender VARCHAR,
			vital_status VARCHAR,
			report_date DATE,
			sort_order INTEGER
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}
