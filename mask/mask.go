// Package mask obscures secret-like values before they are recorded in
// analysis output. Lines that carry no sensitive marker pass through
// unchanged.
package mask

import (
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// secretPatterns capture the secret value in group 2. The key/marker in
// group 1 stays readable so downstream consumers can still tell what kind
// of assignment was masked.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(password|passwd|pwd|secret|api[_-]?key|apikey|access[_-]?key|access[_-]?token|auth[_-]?token|private[_-]?key|credentials?|token)["']?\s*[:=]+\s*["']?([^\s"',;&]+)`),
	regexp.MustCompile(`(?i)\b(bearer)\s+([A-Za-z0-9\-._~+/]+=*)`),
}

// gateTokens mirror the markers in secretPatterns; the Aho-Corasick pass is
// a cheap gate so clean lines skip the regex pass entirely.
var gateTokens = []string{
	"password", "passwd", "pwd", "secret",
	"api_key", "api-key", "apikey",
	"access_key", "access-key", "access_token", "access-token",
	"auth_token", "auth-token", "private_key", "private-key",
	"credential", "token", "bearer",
}

var gate = ahocorasick.NewStringMatcher(gateTokens)

// String returns input with every recognized secret value obscured. The
// masked form keeps a short suffix for readability but never reproduces the
// original value verbatim.
func String(input string) string {
	if input == "" {
		return input
	}
	lower := strings.ToLower(input)
	if len(gate.MatchThreadSafe([]byte(lower))) == 0 {
		return input
	}
	masked := input
	for _, re := range secretPatterns {
		masked = re.ReplaceAllStringFunc(masked, func(m string) string {
			idx := re.FindStringSubmatchIndex(m)
			if idx == nil || len(idx) < 6 || idx[4] < 0 {
				return m
			}
			return m[:idx[4]] + Value(m[idx[4]:idx[5]]) + m[idx[5]:]
		})
	}
	return masked
}

// Strings masks every element of values, returning a new slice.
func Strings(values []string) []string {
	if values == nil {
		return nil
	}
	masked := make([]string, len(values))
	for i, v := range values {
		masked[i] = String(v)
	}
	return masked
}

// Map masks every value of m, returning a new map.
func Map(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	masked := make(map[string]string, len(m))
	for k, v := range m {
		masked[k] = String(v)
	}
	return masked
}

// Value obscures a single secret value. Short values are fully starred;
// longer values keep the last four characters visible.
func Value(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
