package utils

import (
	"fmt"
	"strings"
	"unicode"
)

func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be within 1-65535: %d", port)
	}
	return nil
}

// ValidateNodeName checks the shape of a cluster node name. Membership in
// the configured node set is checked separately.
func ValidateNodeName(name string) error {
	if name == "" {
		return fmt.Errorf("node name must not be empty")
	}

	if len(name) > 63 {
		return fmt.Errorf("node name must not exceed 63 characters")
	}

	for _, char := range name {
		if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') || char == '-') {
			return fmt.Errorf("node name may only contain lowercase letters, digits and hyphens: %q", name)
		}
	}

	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return fmt.Errorf("node name must not start or end with a hyphen: %s", name)
	}

	return nil
}

func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username must not be empty")
	}
	if len(username) > 256 {
		return fmt.Errorf("username is too long")
	}
	for _, r := range username {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("username contains invalid characters")
		}
	}
	return nil
}

// ShellQuote wraps s in single quotes for a POSIX shell.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
