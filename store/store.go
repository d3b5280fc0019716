// Package store keeps a SQLite snapshot of the granular cube and the
// demographic tables, so a local run can skip decoding the large JSON assets.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/spektr-org/painel/engine"
)

// DefaultBatchSize is the number of rows inserted per transaction.
const DefaultBatchSize = 1000

// Config holds configuration for Open.
type Config struct {
	DBPath    string
	BatchSize int
}

// Store is a SQLite-backed snapshot.
type Store struct {
	db        *sql.DB
	dbPath    string
	batchSize int
}

// Stats counts the rows held by the snapshot.
type Stats struct {
	CubeRecords      int64
	DimensionRecords map[string]int64
}

// Open creates or opens a snapshot database.
// Pass ":memory:" for an in-memory database (testing).
func Open(cfg Config) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps a ":memory:" database alive and shared.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, dbPath: cfg.DBPath, batchSize: cfg.BatchSize}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path is the database location.
func (s *Store) Path() string { return s.dbPath }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cube (
			mun           TEXT NOT NULL,
			cadeia        TEXT NOT NULL,
			periodo       TEXT NOT NULL,
			admissoes     INTEGER NOT NULL,
			demissoes     INTEGER NOT NULL,
			salario_medio REAL NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS dimensions (
			dimensao      TEXT NOT NULL,
			mun           TEXT NOT NULL,
			periodo       TEXT NOT NULL,
			cadeia        TEXT NOT NULL,
			valor         TEXT NOT NULL,
			admissoes     INTEGER NOT NULL,
			demissoes     INTEGER NOT NULL,
			salario_medio REAL NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dimensions_dimensao ON dimensions(dimensao)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// IMPORT
// ============================================================================

// ImportCube replaces the stored cube.
func (s *Store) ImportCube(ctx context.Context, cube []engine.GranularRecord) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cube`); err != nil {
		return fmt.Errorf("clearing cube: %w", err)
	}
	for i := 0; i < len(cube); i += s.batchSize {
		end := min(i+s.batchSize, len(cube))
		if err := s.insertCube(ctx, cube[i:end]); err != nil {
			return fmt.Errorf("cube batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (s *Store) insertCube(ctx context.Context, rows []engine.GranularRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cube (mun, cadeia, periodo, admissoes, demissoes, salario_medio) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Municipality, r.Chain, r.Period, r.Admissions, r.Terminations, r.MeanSalary); err != nil {
			return fmt.Errorf("inserting cube record: %w", err)
		}
	}
	return tx.Commit()
}

// ImportDimensions replaces the stored demographic tables. Nil tables are
// not stored and load back as nil.
func (s *Store) ImportDimensions(ctx context.Context, dims *engine.DimensionTables) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM dimensions`); err != nil {
		return fmt.Errorf("clearing dimensions: %w", err)
	}
	for _, d := range engine.Demographics {
		rows := dims.Table(d)
		if rows == nil {
			continue
		}
		key := d.WireKey()
		if len(rows) == 0 {
			// Marker row so an empty-but-loaded table survives the round trip.
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO dimensions (dimensao, mun, periodo, cadeia, valor, admissoes, demissoes) VALUES (?, '', '', '', '', -1, -1)`, key); err != nil {
				return fmt.Errorf("marking empty %s table: %w", key, err)
			}
			continue
		}
		for i := 0; i < len(rows); i += s.batchSize {
			end := min(i+s.batchSize, len(rows))
			if err := s.insertDimension(ctx, key, rows[i:end]); err != nil {
				return fmt.Errorf("%s batch %d-%d: %w", key, i, end, err)
			}
		}
	}
	return nil
}

func (s *Store) insertDimension(ctx context.Context, key string, rows []engine.DimensionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO dimensions (dimensao, mun, periodo, cadeia, valor, admissoes, demissoes, salario_medio) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, key, r.Municipality, r.Period, r.Chain, r.Value, r.Admissions, r.Terminations, r.MeanSalary); err != nil {
			return fmt.Errorf("inserting dimension record: %w", err)
		}
	}
	return tx.Commit()
}

// ============================================================================
// LOAD
// ============================================================================

// LoadCube reads the stored cube in insertion order. An empty snapshot
// returns an empty, non-nil cube.
func (s *Store) LoadCube(ctx context.Context) ([]engine.GranularRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT mun, cadeia, periodo, admissoes, demissoes, salario_medio FROM cube ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying cube: %w", err)
	}
	defer rows.Close()

	cube := []engine.GranularRecord{}
	for rows.Next() {
		var r engine.GranularRecord
		if err := rows.Scan(&r.Municipality, &r.Chain, &r.Period, &r.Admissions, &r.Terminations, &r.MeanSalary); err != nil {
			return nil, fmt.Errorf("scanning cube record: %w", err)
		}
		cube = append(cube, r)
	}
	return cube, rows.Err()
}

// LoadDimensions reads the stored demographic tables.
func (s *Store) LoadDimensions(ctx context.Context) (*engine.DimensionTables, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dimensao, mun, periodo, cadeia, valor, admissoes, demissoes, salario_medio FROM dimensions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying dimensions: %w", err)
	}
	defer rows.Close()

	byKey := make(map[string][]engine.DimensionRecord)
	for rows.Next() {
		var (
			key string
			r   engine.DimensionRecord
		)
		if err := rows.Scan(&key, &r.Municipality, &r.Period, &r.Chain, &r.Value, &r.Admissions, &r.Terminations, &r.MeanSalary); err != nil {
			return nil, fmt.Errorf("scanning dimension record: %w", err)
		}
		if byKey[key] == nil {
			byKey[key] = []engine.DimensionRecord{}
		}
		if r.Admissions < 0 {
			continue
		}
		byKey[key] = append(byKey[key], r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &engine.DimensionTables{
		BySex:         byKey[engine.DemographicSex.WireKey()],
		ByAgeBand:     byKey[engine.DemographicAgeBand.WireKey()],
		ByEducation:   byKey[engine.DemographicEducation.WireKey()],
		ByCompanySize: byKey[engine.DemographicCompanySize.WireKey()],
	}, nil
}

// Stats counts stored rows.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DimensionRecords: map[string]int64{}}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cube`).Scan(&st.CubeRecords); err != nil {
		return nil, fmt.Errorf("counting cube: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT dimensao, COUNT(*) FROM dimensions WHERE admissoes >= 0 GROUP BY dimensao`)
	if err != nil {
		return nil, fmt.Errorf("counting dimensions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			n   int64
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		st.DimensionRecords[key] = n
	}
	return st, rows.Err()
}
