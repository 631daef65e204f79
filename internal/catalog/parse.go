package catalog

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// parsedAddress is the best-effort split of a free-text address.
type parsedAddress struct {
	Street string
	City   string
	State  string
	Zip    string
}

// parseAddress splits "street, city, STATE ZIP". Missing segments are empty;
// an empty street segment falls back to the raw text.
func parseAddress(raw string) parsedAddress {
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	addr := parsedAddress{Street: parts[0]}
	if addr.Street == "" {
		addr.Street = raw
	}
	if len(parts) > 1 {
		addr.City = parts[1]
	}
	if len(parts) > 2 {
		fields := strings.Fields(parts[len(parts)-1])
		if len(fields) > 0 {
			addr.State = fields[0]
		}
		if len(fields) > 1 {
			addr.Zip = fields[1]
		}
	}
	return addr
}

// parseInt reads the leading integer of s ("3 beds" -> 3, "2.5" -> 2).
// Values beyond the int range clamp to math.MaxInt or math.MinInt. ok is
// false when s has no numeric prefix.
func parseInt(s string) (int, bool) {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return n, true
}

// parseFloat reads the leading decimal of s ("2.5 baths" -> 2.5).
func parseFloat(s string) (float64, bool) {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
