package hosting

import (
	"strings"

	herrors "github.com/ksyq12/hostctl/internal/errors"
)

// Sanitize derives the folder name for a hostname: lowercase letters,
// digits, dot, underscore and hyphen only, with no ".." sequence and no
// leading dot.
func Sanitize(hostname string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(hostname) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}

	s := b.String()
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	s = strings.TrimLeft(s, ".")

	if s == "" {
		return "", herrors.Validation("hostname %q has no usable characters for a folder name", hostname)
	}
	return s, nil
}

// ValidateHostname rejects names that would break the generated config.
func ValidateHostname(name string) error {
	if name == "" {
		return herrors.Validation("hostname is required")
	}
	if strings.ContainsAny(name, " \t\r\n\"'<>/\\,") {
		return herrors.Validation("invalid hostname %q", name)
	}
	return nil
}
