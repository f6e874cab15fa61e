package ws

import (
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestOriginPolicy_Check(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	policy := NewOriginPolicy(log, ParseOrigins(" http://localhost:8080 , HTTPS://Chat.Example.com,not a url,"))

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:8080", true},
		{"http://LOCALHOST:8080", true},
		{"https://chat.example.com", true},
		{"https://chat.example.com/path", true},
		{"http://localhost:9090", false},
		{"https://evil.example.com", false},
		{"", false},
		{"null", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			req.Equal(tt.allowed, policy.Check(r))
		})
	}
}

func TestOriginPolicy_Wildcard(t *testing.T) {
	req := require.New(t)
	policy := NewOriginPolicy(logs.GetLoggerFromLevel(slog.LevelDebug), []string{"*"})

	r := httptest.NewRequest("GET", "/ws", nil)
	req.True(policy.Check(r))
}

func TestOriginPolicy_Same_Host_When_Unconfigured(t *testing.T) {
	req := require.New(t)
	policy := NewOriginPolicy(logs.GetLoggerFromLevel(slog.LevelDebug), nil)

	r := httptest.NewRequest("GET", "http://chat.local:8080/ws", nil)
	r.Header.Set("Origin", "http://chat.local:8080")
	req.True(policy.Check(r))

	r.Header.Set("Origin", "http://elsewhere:8080")
	req.False(policy.Check(r))

	r.Header.Del("Origin")
	req.False(policy.Check(r))
}

func TestParseOrigins(t *testing.T) {
	req := require.New(t)

	req.Equal([]string{"a", "b"}, ParseOrigins("a, ,b,"))
	req.Empty(ParseOrigins(""))
}
