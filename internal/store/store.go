package store

import (
	"context"
	"time"
)

// User represents a user in the directory.
// Users are created by an external registration flow; this service only reads them.
type User struct {
	ID          string
	Username    string
	DeviceToken string // empty when the user has no registered device
	ProfileURL  string
	CreatedAt   time.Time
}

// RoomSummary holds the denormalized last-message fields of a conversation.
type RoomSummary struct {
	LastMessage         string
	LastMessageTime     time.Time
	LastMessageSenderID string
}

// Message represents a persisted chat message.
// Delivered records that the message reached the datastore, not the device;
// Read is the only field that mutates after creation (false -> true).
type Message struct {
	ID         string
	RoomID     string
	Content    string
	SenderID   string
	SenderName string
	CreatedAt  time.Time
	Delivered  bool
	Read       bool
}

// UserDirectory is the read-only lookup of user details.
type UserDirectory interface {
	// GetUserDetails retrieves a user by ID.
	// Returns (nil, nil) when no such user exists; a non-nil error only
	// signals a datastore failure.
	GetUserDetails(ctx context.Context, userID string) (*User, error)
}

// MessageStore handles message and conversation-summary persistence.
type MessageStore interface {
	// AppendMessage writes a new message under the room and returns the
	// generated message ID. The insert is atomic per message.
	AppendMessage(ctx context.Context, roomID string, msg *Message) (string, error)

	// UpsertRoomSummary merges the summary fields into the room record
	// without touching unrelated columns, creating the room row if absent.
	UpsertRoomSummary(ctx context.Context, roomID string, summary RoomSummary) error

	// MarkUnreadAsRead flips read=true on every unread message in the room
	// not sent by excludingSenderID, atomically, and returns the number of
	// messages affected. Zero is a valid outcome, not an error.
	MarkUnreadAsRead(ctx context.Context, roomID, excludingSenderID string) (int64, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserDirectory
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
