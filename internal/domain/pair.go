// Package domain defines the core data structures of the DCA bot:
// trading pair, unit-tagged monetary values, purchase records and the
// accumulation ledger.
package domain

import (
	"fmt"
	"strings"
)

// Pair asset/fiat trading pair, e.g. ZEC_EUR.
type Pair struct {
	// From base asset symbol.
	From string
	// To quote (fiat) currency symbol.
	To string
}

// String returns the string representation.
func (p *Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Symbol returns the concatenated symbol representation used by exchanges.
func (p *Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.From, p.To)
}

// PairFromString parses a pair in FROM_TO form.
func PairFromString(s string) (Pair, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Pair{}, fmt.Errorf("invalid pair %q, expected format like ZEC_EUR", s)
	}
	return Pair{From: parts[0], To: parts[1]}, nil
}
