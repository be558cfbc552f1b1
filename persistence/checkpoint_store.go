// Package persistence provides durable stores for workflow checkpoints.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gsampaio-rh/virt-llm-agents/workflow"
)

// SQLiteCheckpointStore persists workflow checkpoints in a SQLite database.
// One row per session; saving again overwrites the previous snapshot so the
// table always holds the latest resumable position.
type SQLiteCheckpointStore struct {
	db *sql.DB
}

// NewSQLiteCheckpointStore opens (or creates) the database at dbPath. Use
// ":memory:" for a throwaway store.
func NewSQLiteCheckpointStore(dbPath string) (*SQLiteCheckpointStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	store := &SQLiteCheckpointStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteCheckpointStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checkpoints (
		session_id TEXT PRIMARY KEY,
		step INTEGER NOT NULL,
		state TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save upserts the checkpoint for its session.
func (s *SQLiteCheckpointStore) Save(ctx context.Context, checkpoint *workflow.Checkpoint) error {
	if checkpoint == nil {
		return errors.New("nil checkpoint")
	}
	if checkpoint.SessionID == "" {
		return errors.New("checkpoint missing session id")
	}
	encoded, err := json.Marshal(checkpoint.State)
	if err != nil {
		return fmt.Errorf("encode checkpoint state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (session_id, step, state, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			step = excluded.step,
			state = excluded.state,
			created_at = excluded.created_at
	`, checkpoint.SessionID, checkpoint.Step, string(encoded), checkpoint.CreatedAt.UTC())
	return err
}

// Load retrieves the latest checkpoint for a session. The second return
// value is false when the session has no checkpoint.
func (s *SQLiteCheckpointStore) Load(ctx context.Context, sessionID string) (*workflow.Checkpoint, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT step, state, created_at FROM checkpoints WHERE session_id = ?
	`, sessionID)
	var (
		step      int
		encoded   string
		createdAt time.Time
	)
	if err := row.Scan(&step, &encoded, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var state workflow.State
	if err := json.Unmarshal([]byte(encoded), &state); err != nil {
		return nil, false, fmt.Errorf("decode checkpoint state: %w", err)
	}
	return &workflow.Checkpoint{
		SessionID: sessionID,
		Step:      step,
		State:     state,
		CreatedAt: createdAt,
	}, true, nil
}

// List returns the session IDs with stored checkpoints, oldest first.
func (s *SQLiteCheckpointStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id FROM checkpoints ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

// Delete removes a session's checkpoint.
func (s *SQLiteCheckpointStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE session_id = ?`, sessionID)
	return err
}

// Close releases the database handle.
func (s *SQLiteCheckpointStore) Close() error {
	return s.db.Close()
}

// MemoryCheckpointStore keeps checkpoints in process memory. Useful in
// tests and for single-shot sessions where durability is not needed.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]workflow.Checkpoint
}

// NewMemoryCheckpointStore builds an empty in-memory store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{checkpoints: make(map[string]workflow.Checkpoint)}
}

// Save stores a copy of the checkpoint.
func (m *MemoryCheckpointStore) Save(ctx context.Context, checkpoint *workflow.Checkpoint) error {
	if checkpoint == nil {
		return errors.New("nil checkpoint")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *checkpoint
	copied.State = checkpoint.State.Clone()
	m.checkpoints[checkpoint.SessionID] = copied
	return nil
}

// Load retrieves a stored checkpoint.
func (m *MemoryCheckpointStore) Load(ctx context.Context, sessionID string) (*workflow.Checkpoint, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	checkpoint, ok := m.checkpoints[sessionID]
	if !ok {
		return nil, false, nil
	}
	copied := checkpoint
	copied.State = checkpoint.State.Clone()
	return &copied, true, nil
}
