package fees

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"preschoolfees/internal/logger"
)

// Snippet identifiers looked up in the content store
const (
	KeyMaximumIncome     = "maxtaxa"
	KeySubsidyForYounger = "bidrag-yngre-barn"
	KeySubsidyForOlder   = "bidrag-aeldre-barn"
)

// Fallbacks used when a snippet is missing or unreadable
const (
	FallbackMaximumIncome     = 43700
	FallbackSubsidyForYounger = 10700.42
	FallbackSubsidyForOlder   = 8047.83
)

// Lookup fetches a configuration value by key. ok is false when the value is
// absent or the underlying store is unavailable.
type Lookup interface {
	Lookup(key string) (value string, ok bool)
}

// LookupFunc adapts a plain function to Lookup
type LookupFunc func(key string) (string, bool)

func (f LookupFunc) Lookup(key string) (string, bool) { return f(key) }

// Static is a Lookup backed by a fixed map
type Static map[string]string

func (s Static) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

func (c *Calculator) lookupInt(key string, fallback int) int {
	v, ok := c.lookupNumber(key)
	if !ok {
		return fallback
	}
	return int(v)
}

func (c *Calculator) lookupFloat(key string, fallback float64) float64 {
	v, ok := c.lookupNumber(key)
	if !ok {
		return fallback
	}
	return v
}

// lookupNumber reads the leading number of a setting, so "45000.00" and
// "45000 kr" both read as 45000. A value without one is logged and treated
// as absent.
func (c *Calculator) lookupNumber(key string) (float64, bool) {
	raw, ok := c.lookup(key)
	if !ok {
		return 0, false
	}
	v, err := parseLeadingNumber(raw)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("unreadable setting, using built-in value")
		return 0, false
	}
	return v, true
}

var leadingNumber = regexp.MustCompile(`^[+-]?\d+(\.\d+)?`)

func parseLeadingNumber(raw string) (float64, error) {
	match := leadingNumber.FindString(strings.TrimSpace(raw))
	if match == "" {
		return 0, fmt.Errorf("no number in %q", raw)
	}
	return strconv.ParseFloat(match, 64)
}

func (c *Calculator) lookup(key string) (string, bool) {
	if c.settings == nil {
		return "", false
	}
	return c.settings.Lookup(key)
}
