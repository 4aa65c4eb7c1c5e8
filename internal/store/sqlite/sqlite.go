package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/flashsend/relay/internal/store"
)

// schema mirrors the persisted layout: a users collection, rooms keyed by
// room ID carrying summary fields, and messages owned by their room.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	username     TEXT NOT NULL,
	device_token TEXT,
	profile_url  TEXT,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS rooms (
	id                     TEXT PRIMARY KEY,
	last_message           TEXT NOT NULL DEFAULT '',
	last_message_time      DATETIME,
	last_message_sender_id TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	room_id     TEXT NOT NULL,
	content     TEXT NOT NULL,
	sender_id   TEXT NOT NULL,
	sender_name TEXT NOT NULL,
	created_at  DATETIME NOT NULL,
	delivered   BOOLEAN NOT NULL DEFAULT 0,
	read        BOOLEAN NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_messages_room_unread
	ON messages (room_id, read, sender_id);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool limits
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function after the
// schema is applied. Useful for tests to seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(s.db); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserDirectory implementation ====

// GetUserDetails retrieves a user by ID.
// A missing user is (nil, nil); only datastore failures return an error.
func (s *SQLiteStore) GetUserDetails(ctx context.Context, userID string) (*store.User, error) {
	query := `
		SELECT id, username, COALESCE(device_token, ''), COALESCE(profile_url, ''), created_at
		FROM users
		WHERE id = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Username,
		&user.DeviceToken,
		&user.ProfileURL,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// ==== MessageStore implementation ====

// AppendMessage writes a new message under the room and returns the generated ID.
func (s *SQLiteStore) AppendMessage(ctx context.Context, roomID string, msg *store.Message) (string, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO messages (id, room_id, content, sender_id, sender_name, created_at, delivered, read)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		id,
		roomID,
		msg.Content,
		msg.SenderID,
		msg.SenderName,
		msg.CreatedAt,
		msg.Delivered,
		msg.Read,
	)
	if err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}

	msg.ID = id
	msg.RoomID = roomID
	return id, nil
}

// UpsertRoomSummary merges the summary fields into the room record.
// Only the summary columns are written; unrelated columns survive the upsert.
func (s *SQLiteStore) UpsertRoomSummary(ctx context.Context, roomID string, summary store.RoomSummary) error {
	query := `
		INSERT INTO rooms (id, last_message, last_message_time, last_message_sender_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_message           = excluded.last_message,
			last_message_time      = excluded.last_message_time,
			last_message_sender_id = excluded.last_message_sender_id
	`
	_, err := s.db.ExecContext(ctx, query,
		roomID,
		summary.LastMessage,
		summary.LastMessageTime,
		summary.LastMessageSenderID,
	)
	if err != nil {
		return fmt.Errorf("upsert room summary: %w", err)
	}

	return nil
}

// MarkUnreadAsRead flips read=true on unread messages from other senders.
// A single UPDATE is atomic in SQLite, so no application-level locking is needed.
func (s *SQLiteStore) MarkUnreadAsRead(ctx context.Context, roomID, excludingSenderID string) (int64, error) {
	query := `
		UPDATE messages
		SET read = 1
		WHERE room_id = ? AND sender_id != ? AND read = 0
	`
	result, err := s.db.ExecContext(ctx, query, roomID, excludingSenderID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return count, nil
}

// Ensure SQLiteStore implements store.Store
var _ store.Store = (*SQLiteStore)(nil)
