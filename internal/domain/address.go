package domain

import (
	"errors"  // Error values
	"regexp"  // Regular expressions
	"strings" // String manipulation
)

// ErrInvalidAddress is returned when an identity is not a 20-byte hex address
var ErrInvalidAddress = errors.New("invalid address")

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`) // 0x followed by 40 hex digits

// NormalizeAddress validates an address and returns its lowercase form
func NormalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !addressPattern.MatchString(addr) {
		return "", ErrInvalidAddress
	}
	return strings.ToLower(addr), nil // Lowercase so identities compare by value
}
