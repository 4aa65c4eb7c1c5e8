package push

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Notification is the ephemeral payload handed to a delivery channel.
// It lives only for the duration of one dispatch call.
type Notification struct {
	Title       string
	Body        string
	RoomID      string
	RecipientID string
	SenderID    string
	ProfileURL  string
}

// Receipt describes a provider-side acknowledgement of a send.
type Receipt struct {
	// MessageID is the provider's identifier for the accepted send, when it
	// returns one.
	MessageID string
}

// Channel delivers a notification to a device token over one provider.
type Channel interface {
	// Name returns the channel label used in logs.
	Name() string

	// Send delivers the notification to the token. Implementations report
	// provider failures as errors; absorbing them is the Dispatcher's job.
	Send(ctx context.Context, token string, n Notification) (*Receipt, error)
}

// Outcome is the result of a dispatch. It is deliberately not an error
// return: push delivery is a side channel and the caller is expected to
// discard the outcome rather than act on it.
type Outcome struct {
	Kind    TokenKind
	Channel string
	Receipt *Receipt
	Err     error
}

// Dispatcher routes a notification to the channel matching the recipient's
// token kind. Every channel failure is logged and folded into the Outcome;
// Dispatch never raises to its caller.
type Dispatcher struct {
	relay    Channel
	provider Channel
	timeout  time.Duration
	log      *zerolog.Logger
}

// NewDispatcher creates a dispatcher over the two delivery channels.
// timeout bounds each dispatch so a slow provider cannot hold up the caller;
// zero means 5s.
func NewDispatcher(relay, provider Channel, timeout time.Duration, logger *zerolog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		relay:    relay,
		provider: provider,
		timeout:  timeout,
		log:      logger,
	}
}

// Dispatch classifies the token and sends the notification on the matching
// channel. An empty token results in zero sends.
func (d *Dispatcher) Dispatch(ctx context.Context, token string, n Notification) Outcome {
	kind := ClassifyToken(token)

	var ch Channel
	switch kind {
	case TokenRelay:
		ch = d.relay
	case TokenProvider:
		ch = d.provider
	default:
		return Outcome{Kind: TokenNone}
	}

	if ch == nil {
		d.log.Warn().
			Str("kind", kind.String()).
			Str("room_id", n.RoomID).
			Msg("no channel configured for token kind, dropping notification")
		return Outcome{Kind: kind}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	receipt, err := ch.Send(ctx, token, n)
	if err != nil {
		d.log.Error().Err(err).
			Str("channel", ch.Name()).
			Str("room_id", n.RoomID).
			Str("recipient_id", n.RecipientID).
			Msg("push delivery failed")
		return Outcome{Kind: kind, Channel: ch.Name(), Err: err}
	}

	d.log.Debug().
		Str("channel", ch.Name()).
		Str("room_id", n.RoomID).
		Str("recipient_id", n.RecipientID).
		Msg("push delivered")
	return Outcome{Kind: kind, Channel: ch.Name(), Receipt: receipt}
}
