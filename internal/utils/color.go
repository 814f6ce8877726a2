package utils

import (
	"regexp"
	"strings"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsHexColor reports whether s is a "#RRGGBB" color. Case is ignored.
func IsHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// NormalizeHexColor lowercases a valid color and returns "" otherwise.
func NormalizeHexColor(s string) string {
	s = strings.TrimSpace(s)
	if !IsHexColor(s) {
		return ""
	}
	return strings.ToLower(s)
}
