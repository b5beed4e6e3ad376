package redact

import (
	"regexp"
	"strings"
)

var (
	// Matches "Bearer <token>" (JWTs and opaque tokens).
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	// Slack bot/user/app tokens.
	slackTokenRe = regexp.MustCompile(`\bxox[abposr]-[A-Za-z0-9-]+`)

	// OpenAI-style secret keys.
	openAIKeyRe = regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}`)

	// Common key=value and header formats that leak in error strings.
	apiKeyKVRe = regexp.MustCompile(`(?i)\b(x-api-key|api[_-]?key|devaid[_-]?api[_-]?key|gemini[_-]?api[_-]?key|openai[_-]?api[_-]?key)\b\s*[:=]\s*[^\s"']+`)
)

// Secrets removes obvious secret-bearing substrings from error/log strings.
func Secrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	out = slackTokenRe.ReplaceAllString(out, "<redacted_slack_token>")
	out = openAIKeyRe.ReplaceAllString(out, "<redacted_key>")
	out = apiKeyKVRe.ReplaceAllString(out, "<redacted_kv>")
	return strings.TrimSpace(out)
}

// Snippet redacts and truncates a response body to a single short line.
func Snippet(body []byte, max int) string {
	if len(body) == 0 {
		return ""
	}
	b := body
	if len(b) > max {
		b = b[:max]
	}
	s := Secrets(string(b))
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(body) > max {
		return s + "..."
	}
	return s
}
