package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/soyeahso/voyant/internal/domain"
	"github.com/soyeahso/voyant/internal/logging"
)

// SQLiteStore is a ConversationStore backed by SQLite. Message history is
// append-only: Save only inserts the tail of messages the database has not
// seen yet, inside one transaction with the conversation row update.
type SQLiteStore struct {
	db  *sql.DB
	log *logging.Logger
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
// Use ":memory:" for an in-memory database (useful for tests).
func OpenSQLite(path string, log *logging.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db, log: log.Sub("store")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s.log.Info().Str("path", path).Msg("database opened")
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing database")
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&count); err != nil {
			return fmt.Errorf("checking migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		s.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// Load returns the stored state for id, or a fresh default when absent.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*domain.ConversationState, error) {
	state := domain.NewConversationState()

	var intent, prefsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT intent, preferences FROM conversations WHERE id = ?`, id,
	).Scan(&intent, &prefsJSON)
	if err == sql.ErrNoRows {
		return state, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load conversation", Err: err}
	}

	state.Intent = domain.ParseIntent(intent)
	if err := json.Unmarshal([]byte(prefsJSON), &state.Preferences); err != nil {
		return nil, &PersistenceError{Op: "decode preferences", Err: err}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, tool_calls, timestamp FROM messages
		 WHERE conversation_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, &PersistenceError{Op: "load messages", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var msg domain.Message
		var toolCalls sql.NullString
		var ts string
		if err := rows.Scan(&msg.Role, &msg.Content, &toolCalls, &ts); err != nil {
			return nil, &PersistenceError{Op: "scan message", Err: err}
		}
		if toolCalls.Valid && toolCalls.String != "" {
			if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
				return nil, &PersistenceError{Op: "decode tool calls", Err: err}
			}
		}
		msg.Timestamp, _ = time.Parse(time.DateTime, ts)
		state.Messages = append(state.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate messages", Err: err}
	}
	return state, nil
}

// Save upserts the conversation row and appends the unseen message tail in
// one transaction.
func (s *SQLiteStore) Save(ctx context.Context, id string, state *domain.ConversationState) error {
	prefsJSON, err := json.Marshal(state.Preferences)
	if err != nil {
		return &PersistenceError{Op: "encode preferences", Err: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "begin save", Err: err}
	}
	defer tx.Rollback()

	now := time.Now().Format(time.DateTime)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (id, intent, preferences, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET intent = excluded.intent,
		   preferences = excluded.preferences, updated_at = excluded.updated_at`,
		id, string(state.Intent), string(prefsJSON), now, now,
	); err != nil {
		return &PersistenceError{Op: "upsert conversation", Err: err}
	}

	var stored int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, id,
	).Scan(&stored); err != nil {
		return &PersistenceError{Op: "count messages", Err: err}
	}
	if stored > len(state.Messages) {
		return &PersistenceError{Op: "append messages",
			Err: fmt.Errorf("stored history (%d) longer than state (%d)", stored, len(state.Messages))}
	}

	for i := stored; i < len(state.Messages); i++ {
		msg := state.Messages[i]
		var toolCalls sql.NullString
		if len(msg.ToolCalls) > 0 {
			data, err := json.Marshal(msg.ToolCalls)
			if err != nil {
				return &PersistenceError{Op: "encode tool calls", Err: err}
			}
			toolCalls = sql.NullString{String: string(data), Valid: true}
		}
		ts := msg.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (conversation_id, position, role, content, tool_calls, timestamp)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, msg.Role, msg.Content, toolCalls, ts.Format(time.DateTime),
		); err != nil {
			return &PersistenceError{Op: "insert message", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "commit save", Err: err}
	}
	return nil
}
