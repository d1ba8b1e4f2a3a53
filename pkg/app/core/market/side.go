package market

import (
	"fmt"
	"strings"
)

type Side int8

const (
	Sell Side = iota + 1
	Buy
)

func (s Side) String() string {
	switch s {
	case Sell:
		return "sell"
	case Buy:
		return "buy"
	default:
		return "unknown"
	}
}

func (s Side) valid() bool { return s == Sell || s == Buy }

// ParseSide accepts "sell" or "buy" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sell":
		return Sell, nil
	case "buy":
		return Buy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}
