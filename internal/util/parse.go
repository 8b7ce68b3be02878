package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Round2 rounds half away from zero to 2 decimal places, matching how ROI
// and profit figures are displayed in lead posts.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var moneyRegex = regexp.MustCompile(`[0-9]+(?:\.[0-9]{1,2})?`)

// ParseMoney extracts the first currency amount from s, tolerating a
// leading symbol and surrounding text. Returns nil when nothing parses.
func ParseMoney(s string) *float64 {
	m := moneyRegex.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Float64Ptr returns a pointer to v. Convenience for optional numeric fields.
func Float64Ptr(v float64) *float64 { return &v }

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Za-z0-9]`)

// StripNonAlphanumeric removes everything outside [A-Za-z0-9]. Used by the
// permissive ASIN-label rule, which must tolerate separators inside codes.
func StripNonAlphanumeric(s string) string {
	return nonAlphanumericRegex.ReplaceAllString(s, "")
}

// DedupeStrings returns a copy of in with duplicates removed, preserving
// first-seen order.
func DedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// SplitCSV splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
