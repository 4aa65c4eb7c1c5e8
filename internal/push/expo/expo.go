// Package expo delivers notifications through the Expo push relay.
package expo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/flashsend/relay/internal/push"
)

// DefaultURL is the Expo push send endpoint.
const DefaultURL = "https://exp.host/--/api/v2/push/send"

// maxBodyLen is the relay's display budget; longer bodies are cut and
// suffixed with an ellipsis.
const maxBodyLen = 100

// message is the Expo push API request body.
type message struct {
	To        string            `json:"to"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data"`
	Sound     string            `json:"sound"`
	Priority  string            `json:"priority"`
	ChannelID string            `json:"channelId"`
}

// Channel implements push.Channel over the Expo HTTP relay.
type Channel struct {
	url       string
	channelID string
	client    *http.Client
}

// New creates an Expo channel posting to url with the given Android channel ID.
// Empty url falls back to DefaultURL; nil client gets a 10s-timeout default.
func New(url, channelID string, client *http.Client) *Channel {
	if url == "" {
		url = DefaultURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Channel{url: url, channelID: channelID, client: client}
}

// Name returns the channel label used in logs.
func (c *Channel) Name() string { return "expo" }

// Send posts the notification to the relay. Title and body ride as native
// notification fields; contextual IDs go in the data bag.
func (c *Channel) Send(ctx context.Context, token string, n push.Notification) (*push.Receipt, error) {
	msg := message{
		To:    token,
		Title: n.Title,
		Body:  truncate(n.Body),
		Data: map[string]string{
			"recipientsUserId": n.RecipientID,
			"sendersUserId":    n.SenderID,
			"roomId":           n.RoomID,
			"profileUrl":       n.ProfileURL,
		},
		Sound:     "default",
		Priority:  "high",
		ChannelID: c.channelID,
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal expo message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build expo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post expo message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("expo api returned status %d", resp.StatusCode)
	}

	// The relay answers with a ticket; its ID is the closest thing to a
	// provider message ID.
	var ticket struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if body, err := io.ReadAll(resp.Body); err == nil {
		_ = json.Unmarshal(body, &ticket)
	}

	return &push.Receipt{MessageID: ticket.Data.ID}, nil
}

func truncate(body string) string {
	if len(body) < maxBodyLen {
		return body
	}
	return body[:maxBodyLen] + "..."
}

// Ensure Channel implements push.Channel
var _ push.Channel = (*Channel)(nil)
