// Package reply coordinates user lookup, message persistence and push
// dispatch for the reply and mark-as-read flows.
package reply

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/flashsend/relay/internal/push"
	"github.com/flashsend/relay/internal/store"
)

// ErrUserNotFound signals that the sender or recipient does not exist.
// No writes are performed when it is returned.
var ErrUserNotFound = errors.New("one or both users not found")

// Input carries one inbound reply request.
type Input struct {
	SenderID    string
	RecipientID string
	RoomID      string
	ReplyText   string
}

// Result reports what a successful reply did.
type Result struct {
	MessageID string
	Dispatch  push.Outcome
}

// Service is the reply orchestrator. All collaborators are injected; the
// service holds no mutable state of its own.
type Service struct {
	store      store.Store
	dispatcher *push.Dispatcher
	log        *zerolog.Logger
	now        func() time.Time
}

// NewService creates the orchestrator over the given store and dispatcher.
func NewService(st store.Store, dispatcher *push.Dispatcher, logger *zerolog.Logger) *Service {
	return &Service{
		store:      st,
		dispatcher: dispatcher,
		log:        logger,
		now:        time.Now,
	}
}

// Reply runs the end-to-end reply flow: resolve both users, persist the
// message and room summary, then notify the recipient. The dispatch outcome
// is returned for observability but never fails the operation.
func (s *Service) Reply(ctx context.Context, in Input) (*Result, error) {
	sender, recipient, err := s.lookupUsers(ctx, in.SenderID, in.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("lookup users: %w", err)
	}
	if sender == nil || recipient == nil {
		return nil, ErrUserNotFound
	}

	msg := &store.Message{
		Content:    in.ReplyText,
		SenderID:   in.SenderID,
		SenderName: sender.Username,
		CreatedAt:  s.now(),
		// Delivered records that the message reached the datastore; push
		// outcome never changes it.
		Delivered: true,
		Read:      false,
	}

	msgID, err := s.store.AppendMessage(ctx, in.RoomID, msg)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	summary := store.RoomSummary{
		LastMessage:         msg.Content,
		LastMessageTime:     s.now(),
		LastMessageSenderID: in.SenderID,
	}
	if err := s.store.UpsertRoomSummary(ctx, in.RoomID, summary); err != nil {
		// The appended message is not retracted; the whole operation still
		// reports failure so the client can retry.
		return nil, fmt.Errorf("upsert room summary: %w", err)
	}

	result := &Result{MessageID: msgID}
	if recipient.DeviceToken != "" {
		result.Dispatch = s.dispatcher.Dispatch(ctx, recipient.DeviceToken, push.Notification{
			Title:       sender.Username,
			Body:        in.ReplyText,
			RoomID:      in.RoomID,
			RecipientID: in.RecipientID,
			SenderID:    in.SenderID,
			ProfileURL:  sender.ProfileURL,
		})
	}

	s.log.Info().
		Str("room_id", in.RoomID).
		Str("message_id", msgID).
		Str("sender_id", in.SenderID).
		Str("recipient_id", in.RecipientID).
		Str("push_channel", result.Dispatch.Channel).
		Msg("reply persisted")

	return result, nil
}

// MarkAsRead flips all unread messages in the room not sent by actingUserID
// and returns the affected count. Zero unread messages is a success.
func (s *Service) MarkAsRead(ctx context.Context, roomID, actingUserID string) (int64, error) {
	count, err := s.store.MarkUnreadAsRead(ctx, roomID, actingUserID)
	if err != nil {
		return 0, fmt.Errorf("mark unread as read: %w", err)
	}

	s.log.Debug().
		Str("room_id", roomID).
		Str("user_id", actingUserID).
		Int64("count", count).
		Msg("messages marked read")

	return count, nil
}

// SendNotification dispatches a notification for an already-persisted event,
// routing by token shape like the reply flow does.
func (s *Service) SendNotification(ctx context.Context, token string, n push.Notification) push.Outcome {
	return s.dispatcher.Dispatch(ctx, token, n)
}

// lookupUsers resolves sender and recipient concurrently. Both lookups settle
// before the result is evaluated; a lookup failure on either side fails the
// whole step.
func (s *Service) lookupUsers(ctx context.Context, senderID, recipientID string) (*store.User, *store.User, error) {
	var (
		wg                  sync.WaitGroup
		sender, recipient   *store.User
		senderErr, recipErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sender, senderErr = s.store.GetUserDetails(ctx, senderID)
	}()
	go func() {
		defer wg.Done()
		recipient, recipErr = s.store.GetUserDetails(ctx, recipientID)
	}()
	wg.Wait()

	if senderErr != nil {
		return nil, nil, senderErr
	}
	if recipErr != nil {
		return nil, nil, recipErr
	}

	return sender, recipient, nil
}
