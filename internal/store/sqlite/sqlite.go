/*
Package sqlite provides a SQLite-backed decrement table source.

KEY TABLES:

	decrement_tables: one row per (code, gender) with its kind and minimum age
	decrement_rates:  one row per (code, gender, age) with the annual rate q

The store implements tables.Source and tables.Lister, so it can be chained in
front of the built-in tables:

	store, err := sqlite.New("./data/tables.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

	provider := tables.NewProvider(tables.ChainSource{store, tables.BuiltinSource{}}, nil)

Schema is auto-migrated on New(). Use ":memory:" for an in-memory database.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rpgo/actuarial-engine/internal/domain"
	"github.com/rpgo/actuarial-engine/internal/tables"
)

// Store persists decrement tables in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) the database at dbPath.
func New(dbPath string) (*Store, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn += "?_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a second connection to ":memory:" would see an empty database
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decrement_tables (
		code TEXT NOT NULL,
		gender TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'mortality',
		min_age INTEGER NOT NULL,
		imported_at TEXT NOT NULL,
		PRIMARY KEY (code, gender)
	);

	CREATE TABLE IF NOT EXISTS decrement_rates (
		code TEXT NOT NULL,
		gender TEXT NOT NULL,
		age INTEGER NOT NULL,
		rate REAL NOT NULL CHECK (rate >= 0 AND rate <= 1),
		PRIMARY KEY (code, gender, age)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Lookup implements tables.Source.
func (s *Store) Lookup(ctx context.Context, code string, gender domain.Gender) (*tables.DecrementTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var minAge int
	err := s.db.QueryRowContext(ctx,
		"SELECT min_age FROM decrement_tables WHERE code = ? AND gender = ?",
		code, string(gender)).Scan(&minAge)
	if err == sql.ErrNoRows {
		return nil, &domain.TableNotFoundError{Code: code, Gender: gender}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s: %w", code, err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT age, rate FROM decrement_rates WHERE code = ? AND gender = ? ORDER BY age ASC",
		code, string(gender))
	if err != nil {
		return nil, fmt.Errorf("failed to query rates for %s: %w", code, err)
	}
	defer rows.Close()

	var rates []float64
	expected := minAge
	for rows.Next() {
		var age int
		var q float64
		if err := rows.Scan(&age, &q); err != nil {
			return nil, err
		}
		if age != expected {
			return nil, fmt.Errorf("table %s (%s): missing rate for age %d", code, gender, expected)
		}
		rates = append(rates, q)
		expected++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables.NewDecrementTable(code, gender, minAge, rates)
}

// Codes implements tables.Lister.
func (s *Store) Codes(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT code FROM decrement_tables ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// Import replaces the stored rates of every table in the file atomically.
func (s *Store) Import(ctx context.Context, tf *tables.TableFile) (int, error) {
	tbls, err := tf.Tables()
	if err != nil {
		return 0, err
	}
	kind := strings.ToLower(tf.Kind)
	if kind == "" {
		kind = "mortality"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, t := range tbls {
		if err := importTable(ctx, tx, t, kind, now); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return len(tbls), nil
}

func importTable(ctx context.Context, tx *sql.Tx, t *tables.DecrementTable, kind, now string) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM decrement_rates WHERE code = ? AND gender = ?", t.Code, string(t.Gender)); err != nil {
		return fmt.Errorf("failed to clear rates for %s: %w", t.Code, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO decrement_tables (code, gender, kind, min_age, imported_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (code, gender) DO UPDATE SET kind = excluded.kind, min_age = excluded.min_age, imported_at = excluded.imported_at`,
		t.Code, string(t.Gender), kind, t.MinAge, now); err != nil {
		return fmt.Errorf("failed to save table %s: %w", t.Code, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO decrement_rates (code, gender, age, rate) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, q := range t.Rates {
		if _, err := stmt.ExecContext(ctx, t.Code, string(t.Gender), t.MinAge+i, q); err != nil {
			return fmt.Errorf("failed to save rate %s age %d: %w", t.Code, t.MinAge+i, err)
		}
	}
	return nil
}
