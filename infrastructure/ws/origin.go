package ws

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// OriginPolicy is the allow-list checked during the websocket handshake.
// Origins are compared on lowercase scheme://host; "*" allows any origin.
type OriginPolicy struct {
	log      *slog.Logger
	allowAll bool
	allowed  map[string]struct{}
}

func NewOriginPolicy(log *slog.Logger, origins []string) *OriginPolicy {
	policy := &OriginPolicy{log: log, allowed: make(map[string]struct{})}
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		switch {
		case trimmed == "":
			continue
		case trimmed == "*":
			policy.allowAll = true
		default:
			normalized, ok := normalizeOrigin(trimmed)
			if !ok {
				log.Warn("Ignoring invalid origin in configuration", "origin", origin)
				continue
			}
			policy.allowed[normalized] = struct{}{}
		}
	}
	return policy
}

// Check rejects requests without an Origin header unless every origin is allowed.
// An empty allow-list only accepts the origin serving the request.
func (p *OriginPolicy) Check(r *http.Request) bool {
	if p.allowAll {
		return true
	}

	header := r.Header.Get("Origin")
	normalized, ok := normalizeOrigin(header)
	if ok {
		if len(p.allowed) == 0 {
			if strings.EqualFold(strings.SplitN(normalized, "://", 2)[1], r.Host) {
				return true
			}
		} else if _, exists := p.allowed[normalized]; exists {
			return true
		}
	}
	p.log.Warn("Blocked websocket connection from disallowed origin", "origin", header)
	return false
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// ParseOrigins splits a comma separated ALLOWED_ORIGINS value.
func ParseOrigins(value string) []string {
	return lo.Compact(lo.Map(strings.Split(value, ","), func(origin string, _ int) string {
		return strings.TrimSpace(origin)
	}))
}
