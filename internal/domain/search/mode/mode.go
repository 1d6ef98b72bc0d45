// Package mode holds the condition combinator flag passed as "m".
package mode

import "strings"

// Mode is the condition combinator requested by the caller.
type Mode string

// Mode constants.
const (
	// And requires every condition to match.
	And Mode = "and"
	Or  Mode = "or"
)

// Parse normalizes a raw "m" value. Blank input yields And.
func Parse(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return And, true
	}
	return m, m.IsValid()
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == And || m == Or
}
