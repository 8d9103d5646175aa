package validation

import (
	"html"
	"regexp"
	"strings"
)

var (
	sqlInjectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(union\s+select|or\s+1\s*=\s*1|and\s+1\s*=\s*1)`),
		regexp.MustCompile(`(?i)(drop\s+table|delete\s+from|insert\s+into)`),
		regexp.MustCompile(`(?i)(exec\s*\(|execute\s*\(|\bsp_|\bxp_)`),
		regexp.MustCompile(`(?i)(script\s*>|javascript:|vbscript:)`),
		regexp.MustCompile(`--\s*$`),
	}

	nosqlInjectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\$where|\$regex|\$gt|\$lt|\$ne|\$in|\$nin`),
		regexp.MustCompile(`(?i)(this\.|function\s*\()`),
		regexp.MustCompile(`(?i)(sleep\s*\(|benchmark\s*\()`),
	}

	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

func ContainsSQLInjection(input string) bool {
	for _, p := range sqlInjectionPatterns {
		if p.MatchString(input) {
			return true
		}
	}
	return false
}

func ContainsNoSQLInjection(input string) bool {
	for _, p := range nosqlInjectionPatterns {
		if p.MatchString(input) {
			return true
		}
	}
	return false
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// SanitizeText rejects injection-looking input and HTML-escapes the rest.
func SanitizeText(input string) (string, bool) {
	if ContainsSQLInjection(input) || ContainsNoSQLInjection(input) {
		return "", false
	}
	return html.EscapeString(input), true
}

// NormalizeUsername trims and lowercases, then checks the allowed alphabet.
func NormalizeUsername(username string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	if normalized == "" || len(normalized) > 50 || !usernamePattern.MatchString(normalized) {
		return "", false
	}
	if ContainsSQLInjection(normalized) {
		return "", false
	}
	return normalized, true
}

func NormalizeEmail(email string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !IsValidEmail(normalized) || ContainsSQLInjection(normalized) {
		return "", false
	}
	return normalized, true
}
