package push

import "strings"

// relayTokenPrefix identifies Expo push relay tickets, e.g. "ExponentPushToken[xyz]".
const relayTokenPrefix = "ExponentPushToken"

// TokenKind classifies a device token into the channel that can deliver to it.
type TokenKind int

const (
	// TokenNone means no device is registered; nothing can be dispatched.
	TokenNone TokenKind = iota
	// TokenRelay is a third-party push-relay ticket (Expo).
	TokenRelay
	// TokenProvider is a direct platform registration token (FCM).
	TokenProvider
)

// String returns the channel label used in logs.
func (k TokenKind) String() string {
	switch k {
	case TokenRelay:
		return "relay"
	case TokenProvider:
		return "provider"
	default:
		return "none"
	}
}

// ClassifyToken resolves a raw device token to its kind exactly once, so
// callers never string-match on token shapes themselves.
func ClassifyToken(token string) TokenKind {
	if token == "" {
		return TokenNone
	}
	if strings.Contains(token, relayTokenPrefix) {
		return TokenRelay
	}
	return TokenProvider
}
