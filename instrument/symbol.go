package instrument

import (
	"fmt"
	"strings"
)

// Symbol is a normalized 6-character instrument code: a 3-letter base
// concatenated with a 3-letter quote, e.g. "EURUSD" or "XAUUSD".
type Symbol string

// MalformedSymbolError reports input that does not normalize to a
// 6-character pair code.
type MalformedSymbolError struct {
	Input string
}

func (e *MalformedSymbolError) Error() string {
	return fmt.Sprintf("malformed instrument symbol %q", e.Input)
}

// Normalize strips any "/" separator and upper-cases the remainder.
// The result must be exactly 6 characters; anything else is rejected.
// Normalize is idempotent: feeding a Symbol back through it is a no-op.
func Normalize(pair string) (Symbol, error) {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(pair), "/", ""))
	if len(s) != 6 {
		return "", &MalformedSymbolError{Input: pair}
	}
	return Symbol(s), nil
}

// Base returns the first three characters of the symbol.
// No check that it is a real currency code; any 3+3 split is accepted.
func (s Symbol) Base() string {
	return string(s[:3])
}

// Quote returns the last three characters of the symbol.
func (s Symbol) Quote() string {
	return string(s[3:])
}
