package v1

import (
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	// maxMessageLength bounds one chat turn. The engine itself handles
	// arbitrary text; the bound protects the transport layer.
	maxMessageLength = 4000
	maxUserKeyLength = 64
)

// validateMessage checks one user message. Empty messages are allowed —
// the extractor degrades them to neutral defaults — but they must at
// least be valid UTF-8 and bounded.
func validateMessage(message string) error {
	if len(message) > maxMessageLength {
		return errors.Errorf("message exceeds %d bytes", maxMessageLength)
	}
	if !utf8.ValidString(message) {
		return errors.New("message is not valid UTF-8")
	}
	return nil
}

// validateUserKey checks a user/pairing key: short, ASCII-safe, no path
// or header metacharacters. allowEmpty permits anonymous sessions.
func validateUserKey(key string, allowEmpty bool) error {
	if key == "" {
		if allowEmpty {
			return nil
		}
		return errors.New("name is required")
	}
	if len(key) > maxUserKeyLength {
		return errors.Errorf("key exceeds %d characters", maxUserKeyLength)
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return errors.Errorf("key contains invalid character %q", r)
		}
	}
	return nil
}
