// Package id generates the prefixed identifiers of modules and permission
// rows, e.g. "mod_4fQ9zK1mXb2L".
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// DefaultLength is the length of the random part of an identifier.
const DefaultLength = 12

const (
	PrefixModule     = "mod"
	PrefixPermission = "perm"
)

const base62 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var base62Len = big.NewInt(int64(len(base62)))

// Generate returns n random base62 characters; n <= 0 uses DefaultLength.
func Generate(n int) (string, error) {
	if n <= 0 {
		n = DefaultLength
	}
	var sb strings.Builder
	sb.Grow(n)
	for range n {
		idx, err := rand.Int(rand.Reader, base62Len)
		if err != nil {
			return "", fmt.Errorf("read random index: %w", err)
		}
		sb.WriteByte(base62[idx.Int64()])
	}
	return sb.String(), nil
}

// GenerateWithPrefix returns prefix + "_" + Generate(n).
func GenerateWithPrefix(prefix string, n int) (string, error) {
	suffix, err := Generate(n)
	if err != nil {
		return "", err
	}
	return prefix + "_" + suffix, nil
}

// ParsePrefixedID splits "mod_abc" into ("mod", "abc"). Only the first
// underscore separates the prefix.
func ParsePrefixedID(s string) (prefix, suffix string, err error) {
	prefix, suffix, ok := strings.Cut(s, "_")
	if !ok || suffix == "" {
		return "", "", fmt.Errorf("malformed identifier %q", s)
	}
	return prefix, suffix, nil
}

// ValidatePrefix fails unless s is a well-formed identifier carrying want.
func ValidatePrefix(s, want string) error {
	prefix, _, err := ParsePrefixedID(s)
	if err != nil {
		return err
	}
	if prefix != want {
		return fmt.Errorf("identifier %q: want prefix %q, got %q", s, want, prefix)
	}
	return nil
}

func NewModuleID() (string, error) {
	return GenerateWithPrefix(PrefixModule, DefaultLength)
}

func NewPermissionID() (string, error) {
	return GenerateWithPrefix(PrefixPermission, DefaultLength)
}
