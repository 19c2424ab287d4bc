// Package snapshot persists the state of a run to SQLite: unit property
// bags, heuristic track records, and run-level statistics, so separate
// invocations can inspect what a run discovered.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"eureka/internal/concept"
	"eureka/internal/heuristic"
	"eureka/internal/logging"
)

// Store manages the snapshot database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// NewStore creates or opens the snapshot store under the workspace
// directory.
func NewStore(workspaceDir string) (*Store, error) {
	dbPath := filepath.Join(workspaceDir, "snapshots.db")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// initSchema creates the database schema.
func (s *Store) initSchema() error {
	schema := `
	-- One row per engine run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		cycles INTEGER NOT NULL,
		tasks_executed INTEGER NOT NULL,
		tasks_completed INTEGER NOT NULL,
		tasks_failed INTEGER NOT NULL,
		tasks_aborted INTEGER NOT NULL,
		units_at_start INTEGER NOT NULL,
		units_at_end INTEGER NOT NULL,
		duplicates_removed INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Final unit state per run
	CREATE TABLE IF NOT EXISTS units (
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		worth INTEGER NOT NULL,
		isa_json TEXT,
		props_json TEXT,
		PRIMARY KEY (run_id, name),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);
	CREATE INDEX IF NOT EXISTS idx_units_worth ON units(run_id, worth);

	-- Heuristic track records per run
	CREATE TABLE IF NOT EXISTS heuristic_records (
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		worth INTEGER NOT NULL,
		successes INTEGER NOT NULL,
		failures INTEGER NOT NULL,
		phases_json TEXT,
		PRIMARY KEY (run_id, name),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RunInfo is the persisted summary of one run.
type RunInfo struct {
	ID                string
	StartedAt         time.Time
	FinishedAt        time.Time
	Cycles            int
	TasksExecuted     int
	TasksCompleted    int
	TasksFailed       int
	TasksAborted      int
	UnitsAtStart      int
	UnitsAtEnd        int
	DuplicatesRemoved int
}

// SaveRun stores a run summary and returns its generated id.
func (s *Store) SaveRun(info RunInfo) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info.ID == "" {
		info.ID = uuid.NewString()
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, finished_at, cycles, tasks_executed,
			tasks_completed, tasks_failed, tasks_aborted, units_at_start,
			units_at_end, duplicates_removed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.ID, info.StartedAt, info.FinishedAt, info.Cycles, info.TasksExecuted,
		info.TasksCompleted, info.TasksFailed, info.TasksAborted, info.UnitsAtStart,
		info.UnitsAtEnd, info.DuplicatesRemoved)
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}
	logging.Snapshot("saved run %s (%d tasks, %d units)", info.ID, info.TasksExecuted, info.UnitsAtEnd)
	return info.ID, nil
}

// SaveUnits stores the final state of every unit in the registry under a
// run id. Function-valued properties cannot be serialized and are
// dropped from the persisted bag.
func (s *Store) SaveUnits(runID string, units *concept.UnitRegistry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO units (run_id, name, worth, isa_json, props_json)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for name, u := range units.All() {
		isaJSON, err := json.Marshal(u.Isa())
		if err != nil {
			return fmt.Errorf("failed to marshal isa of %s: %w", name, err)
		}
		propsJSON, err := json.Marshal(serializableProps(u))
		if err != nil {
			return fmt.Errorf("failed to marshal props of %s: %w", name, err)
		}
		if _, err := stmt.Exec(runID, name, u.Worth(), string(isaJSON), string(propsJSON)); err != nil {
			return fmt.Errorf("failed to save unit %s: %w", name, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logging.SnapshotDebug("saved %d unit(s) for run %s", saved, runID)
	return nil
}

// SaveHeuristicRecords stores each registered heuristic's worth and
// per-phase track record under a run id.
func (s *Store) SaveHeuristicRecords(runID string, reg *heuristic.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO heuristic_records (run_id, name, worth, successes, failures, phases_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, h := range reg.Snapshot() {
		phases := make(map[string]heuristic.Record)
		for _, phase := range heuristic.PhaseOrder {
			for _, failed := range []bool{false, true} {
				slot := heuristic.RecordSlot(phase, failed)
				if rec := h.GetRecord(slot); rec.Count > 0 {
					phases[slot] = rec
				}
			}
		}
		phasesJSON, err := json.Marshal(phases)
		if err != nil {
			return fmt.Errorf("failed to marshal records of %s: %w", h.Name(), err)
		}
		if _, err := stmt.Exec(runID, h.Name(), h.Worth(), h.SuccessCount(), h.FailureCount(), string(phasesJSON)); err != nil {
			return fmt.Errorf("failed to save heuristic %s: %w", h.Name(), err)
		}
	}

	return tx.Commit()
}

// ListRuns returns run summaries, most recent first.
func (s *Store) ListRuns(limit int) ([]RunInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, cycles, tasks_executed, tasks_completed,
			tasks_failed, tasks_aborted, units_at_start, units_at_end, duplicates_removed
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.ID, &info.StartedAt, &info.FinishedAt, &info.Cycles,
			&info.TasksExecuted, &info.TasksCompleted, &info.TasksFailed, &info.TasksAborted,
			&info.UnitsAtStart, &info.UnitsAtEnd, &info.DuplicatesRemoved); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// UnitRow is one persisted unit.
type UnitRow struct {
	Name  string
	Worth int
	Isa   []string
}

// TopUnits returns the highest-worth units of a run.
func (s *Store) TopUnits(runID string, limit int) ([]UnitRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT name, worth, isa_json FROM units
		WHERE run_id = ? ORDER BY worth DESC, name ASC LIMIT ?`, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var out []UnitRow
	for rows.Next() {
		var row UnitRow
		var isaJSON string
		if err := rows.Scan(&row.Name, &row.Worth, &isaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		if isaJSON != "" {
			if err := json.Unmarshal([]byte(isaJSON), &row.Isa); err != nil {
				return nil, fmt.Errorf("failed to decode isa of %s: %w", row.Name, err)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// serializableProps copies a unit's property bag minus anything JSON
// cannot represent (algorithm and predicate values).
func serializableProps(u *concept.Unit) map[string]interface{} {
	out := make(map[string]interface{})
	for name, value := range u.Snapshot() {
		if value == nil {
			continue
		}
		if reflect.TypeOf(value).Kind() == reflect.Func {
			continue
		}
		out[name] = value
	}
	return out
}
