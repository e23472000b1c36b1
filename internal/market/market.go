// Package market handles validation of pool and market identifiers at the
// service boundary. Identifiers are venue contract addresses: 0x-prefixed,
// 40 hex digits, compared case-insensitively.
package market

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// idRegex matches 0x-prefixed 40-hex-digit identifiers.
// Example: 0x47c031236e19d024b42f8AE6780E44A573170703
var idRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

var (
	// ErrInvalidID is returned for identifiers that are not 0x-prefixed
	// 40-hex-digit strings.
	ErrInvalidID = errors.New("market: invalid identifier format")
)

// ParseID validates an identifier and returns its canonical (lowercase)
// form. Pool and market identifiers share the same format.
func ParseID(id string) (string, error) {
	if !idRegex.MatchString(id) {
		return "", fmt.Errorf("%w: %q (expected 0x + 40 hex digits)", ErrInvalidID, id)
	}
	return strings.ToLower(id), nil
}

// Equal reports whether two identifiers refer to the same contract,
// ignoring case.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}
