package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/flashsend/relay/internal/store"
)

func seedUsers(db *sql.DB) error {
	query := `
		INSERT INTO users (id, username, device_token, profile_url)
		VALUES
			('u1', 'alice', 'ExponentPushToken[xyz]', 'https://example.com/alice.png'),
			('u2', 'bob', NULL, NULL)
	`
	_, err := db.Exec(query)
	return err
}

func TestGetUserDetails(t *testing.T) {
	s, err := NewWithSetup(":memory:", seedUsers)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	user, err := s.GetUserDetails(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserDetails failed: %v", err)
	}
	if user == nil {
		t.Fatal("expected user u1, got nil")
	}
	if user.Username != "alice" || user.DeviceToken != "ExponentPushToken[xyz]" {
		t.Errorf("unexpected user: %+v", user)
	}

	// NULL token and profile come back as empty strings.
	user, err = s.GetUserDetails(ctx, "u2")
	if err != nil {
		t.Fatalf("GetUserDetails failed: %v", err)
	}
	if user == nil || user.DeviceToken != "" || user.ProfileURL != "" {
		t.Errorf("expected empty optional fields, got %+v", user)
	}

	// A missing user is not an error.
	user, err = s.GetUserDetails(ctx, "nobody")
	if err != nil {
		t.Fatalf("expected no error for missing user, got %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}

func TestAppendMessage(t *testing.T) {
	s, err := NewWithSetup(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	msg := &store.Message{
		Content:    "hello",
		SenderID:   "u1",
		SenderName: "alice",
		CreatedAt:  time.Now().UTC(),
		Delivered:  true,
		Read:       false,
	}

	id, err := s.AppendMessage(ctx, "r1", msg)
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated message id")
	}
	if msg.ID != id || msg.RoomID != "r1" {
		t.Errorf("expected message updated in place, got %+v", msg)
	}

	var content string
	var delivered, read bool
	row := s.db.QueryRow(`SELECT content, delivered, read FROM messages WHERE id = ?`, id)
	if err := row.Scan(&content, &delivered, &read); err != nil {
		t.Fatalf("failed to read message back: %v", err)
	}
	if content != "hello" || !delivered || read {
		t.Errorf("unexpected stored message: content=%q delivered=%v read=%v", content, delivered, read)
	}

	// Second append generates a distinct id.
	id2, err := s.AppendMessage(ctx, "r1", &store.Message{Content: "again", SenderID: "u1", SenderName: "alice", CreatedAt: time.Now().UTC(), Delivered: true})
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if id2 == id {
		t.Error("expected distinct message ids")
	}
}

func TestUpsertRoomSummary(t *testing.T) {
	s, err := NewWithSetup(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	first := store.RoomSummary{
		LastMessage:         "hello",
		LastMessageTime:     time.Now().UTC(),
		LastMessageSenderID: "u1",
	}
	if err := s.UpsertRoomSummary(ctx, "r1", first); err != nil {
		t.Fatalf("UpsertRoomSummary insert failed: %v", err)
	}

	second := store.RoomSummary{
		LastMessage:         "how are you",
		LastMessageTime:     time.Now().UTC().Add(time.Minute),
		LastMessageSenderID: "u2",
	}
	if err := s.UpsertRoomSummary(ctx, "r1", second); err != nil {
		t.Fatalf("UpsertRoomSummary update failed: %v", err)
	}

	var lastMessage, lastSender string
	row := s.db.QueryRow(`SELECT last_message, last_message_sender_id FROM rooms WHERE id = ?`, "r1")
	if err := row.Scan(&lastMessage, &lastSender); err != nil {
		t.Fatalf("failed to read room back: %v", err)
	}
	if lastMessage != "how are you" || lastSender != "u2" {
		t.Errorf("expected merged summary, got last_message=%q sender=%q", lastMessage, lastSender)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM rooms`).Scan(&count); err != nil {
		t.Fatalf("failed to count rooms: %v", err)
	}
	if count != 1 {
		t.Errorf("expected a single room row, got %d", count)
	}
}

func TestMarkUnreadAsRead(t *testing.T) {
	s, err := NewWithSetup(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	// Two unread from u2, one unread from u1 (the acting user), one already read.
	seed := []struct {
		sender string
		read   bool
	}{
		{"u2", false},
		{"u2", false},
		{"u1", false},
		{"u2", true},
	}
	for i, m := range seed {
		msg := &store.Message{
			Content:    "m",
			SenderID:   m.sender,
			SenderName: m.sender,
			CreatedAt:  time.Now().UTC().Add(time.Duration(i) * time.Second),
			Delivered:  true,
			Read:       m.read,
		}
		if _, err := s.AppendMessage(ctx, "r1", msg); err != nil {
			t.Fatalf("failed to seed message: %v", err)
		}
	}

	count, err := s.MarkUnreadAsRead(ctx, "r1", "u1")
	if err != nil {
		t.Fatalf("MarkUnreadAsRead failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 messages flipped, got %d", count)
	}

	// The acting user's own message stays unread.
	var ownUnread int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE sender_id = 'u1' AND read = 0`).Scan(&ownUnread); err != nil {
		t.Fatalf("failed to count own unread: %v", err)
	}
	if ownUnread != 1 {
		t.Errorf("expected acting user's message untouched, got %d unread", ownUnread)
	}

	// Idempotence: second call finds nothing and is still a success.
	count, err = s.MarkUnreadAsRead(ctx, "r1", "u1")
	if err != nil {
		t.Fatalf("second MarkUnreadAsRead failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 on second call, got %d", count)
	}
}
