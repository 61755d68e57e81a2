package textutil

import (
	"strings"
	"unicode"
)

// FolderName turns user input such as a vendor or project name into a single
// safe path segment. Path separators and characters Windows rejects become
// dashes or are dropped, control characters are removed, and names that
// would resolve to "." or ".." come back empty.
func FolderName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			b.WriteByte('-')
		case r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "." || out == ".." {
		return ""
	}
	return out
}

// Token lowercases value and keeps letters, digits, dashes, and
// underscores; runs of anything else collapse to one underscore. Empty
// results become "unknown".
func Token(value string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.TrimSpace(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pending = true
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
