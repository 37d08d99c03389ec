// Package redact strips credentials, tokens and filesystem paths from
// strings before they are logged or returned in error responses. Store
// errors routinely carry connection strings and database file locations.
package redact

import "regexp"

// Placeholders written in place of redacted text.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules run in order; later patterns never match earlier placeholders.
var rules = []rule{
	// user:password in postgres URLs
	{
		regexp.MustCompile(`(?i)\b(postgres(?:ql)?)://[^@\s/]+@`),
		"${1}://" + RedactedCredentialPlaceholder + "@",
	},
	// password in keyword/value DSNs and query strings
	{
		regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[=:]\s*('[^']*'|"[^"]*"|[^\s&;]+)`),
		"${1}=" + RedactionPlaceholder,
	},
	{
		regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		RedactedJWTPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/-]+=*`),
		"Bearer " + RedactedKeyPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(jwt_secret|secret|api[_-]?key|token)\s*[=:]\s*[^\s&;,]{8,}`),
		"${1}=" + RedactedKeyPlaceholder,
	},
	// sqlite URI filenames
	{
		regexp.MustCompile(`(?i)\bfile:[^\s?]+`),
		"file:" + RedactedPathPlaceholder,
	},
	{
		regexp.MustCompile(`(?:/[\w.@-]+){2,}`),
		RedactedPathPlaceholder,
	},
	{
		regexp.MustCompile(`[A-Za-z]:\\[^\\\s]+(?:\\[^\\\s]+)+`),
		RedactedPathPlaceholder,
	},
}

// String redacts sensitive information from s.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error redacts sensitive information from err's message.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
