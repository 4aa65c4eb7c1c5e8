// Package fcm delivers notifications directly through Firebase Cloud Messaging.
package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/flashsend/relay/internal/push"
)

// sender is the slice of *messaging.Client the channel needs.
type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Channel implements push.Channel over the FCM Admin SDK.
type Channel struct {
	client sender
}

// New wraps an existing messaging client.
func New(client *messaging.Client) *Channel {
	return &Channel{client: client}
}

// NewFromCredentials initializes the Firebase app from a service account file
// and returns a ready channel. This is the process-wide init-once path; the
// returned channel is safe for concurrent use.
func NewFromCredentials(ctx context.Context, credentialsPath string) (*Channel, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}

	return &Channel{client: client}, nil
}

// Name returns the channel label used in logs.
func (c *Channel) Name() string { return "fcm" }

// Send delivers a data-only message. Title and body ride in the data bag
// instead of the native notification block so the receiving app renders the
// notification itself.
func (c *Channel) Send(ctx context.Context, token string, n push.Notification) (*push.Receipt, error) {
	msg := &messaging.Message{
		Token: token,
		Data: map[string]string{
			"title":            n.Title,
			"body":             n.Body,
			"recipientsUserId": n.RecipientID,
			"sendersUserId":    n.SenderID,
			"roomId":           n.RoomID,
			"profileUrl":       n.ProfileURL,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	id, err := c.client.Send(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("fcm send: %w", err)
	}

	return &push.Receipt{MessageID: id}, nil
}

// Ensure Channel implements push.Channel
var _ push.Channel = (*Channel)(nil)
