package push

import "testing"

func TestClassifyToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  TokenKind
	}{
		{
			name:  "empty token",
			token: "",
			want:  TokenNone,
		},
		{
			name:  "expo relay ticket",
			token: "ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]",
			want:  TokenRelay,
		},
		{
			name:  "fcm registration token",
			token: "dGhpcyBpcyBhIGZha2UgZmNtIHRva2Vu:APA91bE",
			want:  TokenProvider,
		},
		{
			name:  "arbitrary non-empty token routes to provider",
			token: "some-opaque-token",
			want:  TokenProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyToken(tt.token); got != tt.want {
				t.Errorf("ClassifyToken(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}
