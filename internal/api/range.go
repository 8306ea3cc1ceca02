package api

import (
	"fmt"
	"strings"
)

// Range restricts the search window the service uses when gathering sources.
type Range string

const (
	RangeDay     Range = "d"
	RangeWeek    Range = "w"
	RangeMonth   Range = "m"
	RangeQuarter Range = "m3"
	RangeYear    Range = "y"
	RangeNone    Range = "None"
)

var knownRanges = []Range{RangeDay, RangeWeek, RangeMonth, RangeQuarter, RangeYear, RangeNone}

// String returns the wire value; the zero Range is sent as "None".
func (r Range) String() string {
	if r == "" {
		return string(RangeNone)
	}
	return string(r)
}

// ParseRange accepts the wire values (case-insensitive for "none") and the
// empty string, which maps to RangeNone.
func ParseRange(value string) (Range, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, string(RangeNone)) {
		return RangeNone, nil
	}
	for _, r := range knownRanges {
		if string(r) == value {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown range %q (want one of d, w, m, m3, y, None)", value)
}
