/*
Package sqlite persists named allocation scenarios in SQLite.

A scenario is one complete input (primary state, visiting window, other-state
days, pay periods, bonuses and tax settings) saved under a name so it can be
reloaded, edited and recalculated later. The input is stored as a JSON
document; only the name and timestamps are columns.

The database is opened in WAL mode. Use ":memory:" for a throwaway database.
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rgehrsitz/splittax/internal/domain"
)

// ErrNotFound is returned when no scenario has the requested ID
var ErrNotFound = errors.New("scenario not found")

// Scenario is a saved input
type Scenario struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Config    domain.Configuration `json:"config"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// Summary describes a scenario without its input
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is a SQLite scenario store
type Store struct {
	db *sql.DB
	mu sync.RWMutex

	now func() time.Time
}

// New opens (and creates if needed) the database at dbPath
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.HasPrefix(dbPath, ":memory:") {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scenarios_name ON scenarios(name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create saves a new scenario and returns it with its generated ID
func (s *Store) Create(ctx context.Context, name string, cfg domain.Configuration) (*Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scenario: %w", err)
	}
	now := s.now()
	sc := &Scenario{ID: uuid.NewString(), Name: name, Config: cfg, CreatedAt: now, UpdatedAt: now}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO scenarios (id, name, config_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		sc.ID, sc.Name, string(data), now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert scenario: %w", err)
	}
	return sc, nil
}

// Get loads a scenario by ID
func (s *Store) Get(ctx context.Context, id string) (*Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		sc                   Scenario
		data                 string
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, config_json, created_at, updated_at FROM scenarios WHERE id = ?",
		id,
	).Scan(&sc.ID, &sc.Name, &data, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(data), &sc.Config); err != nil {
		return nil, fmt.Errorf("failed to decode scenario %s: %w", id, err)
	}
	sc.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	sc.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &sc, nil
}

// List returns every scenario ordered by name
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM scenarios ORDER BY name, created_at",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sum                  Summary
			createdAt, updatedAt string
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		sum.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Update replaces a scenario's name and input
func (s *Store) Update(ctx context.Context, id, name string, cfg domain.Configuration) (*Scenario, error) {
	s.mu.Lock()
	data, err := json.Marshal(cfg)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to encode scenario: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE scenarios SET name = ?, config_json = ?, updated_at = ? WHERE id = ?",
		name, string(data), s.now().Format(time.RFC3339Nano), id,
	)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to update scenario: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a scenario
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM scenarios WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
