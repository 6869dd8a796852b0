package domain

import (
	"errors"
	"fmt"
)

// Policy is the temporal eligibility rule for buy/sell timestamp pairs
// during cross-profit labeling.
//
// The zero value is PolicyLookahead, so an unset policy keeps the
// documented default behavior of only selling after buying.
type Policy int

const (
	// PolicyLookahead pairs each buy timestamp only with later sell timestamps.
	PolicyLookahead Policy = iota
	// PolicyLookbehind pairs each buy timestamp only with sell timestamps at
	// or before it. An optimistic diagnostic baseline, not a tradable strategy.
	PolicyLookbehind
	// PolicyFull keeps every pair and emits a future indicator as a feature
	// instead of filtering.
	PolicyFull
)

// ErrUnknownPolicy is returned for policy strings outside the alias sets.
var ErrUnknownPolicy = errors.New("unknown policy")

// ParsePolicy resolves a policy string including its historical aliases.
// Unrecognized input is a validation error rather than a silent fallback.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "lookahead", "la":
		return PolicyLookahead, nil
	case "lookbehind", "lb":
		return PolicyLookbehind, nil
	case "full", "lookaround", "lar":
		return PolicyFull, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

func (p Policy) String() string {
	switch p {
	case PolicyLookahead:
		return "lookahead"
	case PolicyLookbehind:
		return "lookbehind"
	case PolicyFull:
		return "full"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}
