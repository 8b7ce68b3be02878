package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/bgrierson/lead-filter-bot/internal/util"
)

// asinDenyList holds codes that pass the format check but show up in lead
// posts as placeholders or boilerplate, never as real products.
var asinDenyList = map[string]struct{}{
	"B0XXXXXXXX": {},
	"B012345678": {},
	"B000000000": {},
	"B0ASINHERE": {},
}

var (
	amazonURLRegex = regexp.MustCompile(`(?i)https?://(?:www\.)?amazon\.[^\s)>\]]+`)
	dpPathRegex    = regexp.MustCompile(`(?i)/dp/([A-Z0-9]{10})(?:[/?]|$)`)
	gpPathRegex    = regexp.MustCompile(`(?i)/gp/(?:product|aw/d)/([A-Z0-9]{10})(?:[/?]|$)`)

	labeledExactRegex = regexp.MustCompile(`(?i)\bASINs?\s*[:=]\s*([A-Z0-9]{10})\b`)
	labeledLooseRegex = regexp.MustCompile(`(?i)\bASINs?\s*[:=]\s*([A-Z0-9][A-Z0-9 .\-]{8,24})`)
	prefixTokenRegex  = regexp.MustCompile(`(?i)\b(B0[A-Z0-9]{8})\b`)
	bareTokenRegex    = regexp.MustCompile(`\b([A-Za-z0-9]{10})\b`)
)

// IsValidASIN reports whether s is a plausible product identifier: exactly
// 10 alphanumeric characters with at least one letter and one digit, and
// not a known false positive.
func IsValidASIN(s string) bool {
	if len(s) != 10 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) && r < 128:
			hasLetter = true
		case unicode.IsDigit(r) && r < 128:
			hasDigit = true
		default:
			return false
		}
	}
	if !hasLetter || !hasDigit {
		return false
	}
	_, denied := asinDenyList[strings.ToUpper(s)]
	return !denied
}

// ASINFromURL pulls a product identifier out of a recognized amazon URL
// path or an asin query parameter. Returns "" when none validates.
func ASINFromURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimRight(rawURL, ".,;"))
	if err != nil {
		return ""
	}

	for _, re := range []*regexp.Regexp{dpPathRegex, gpPathRegex} {
		if m := re.FindStringSubmatch(parsed.Path); m != nil {
			if cand := strings.ToUpper(m[1]); IsValidASIN(cand) {
				return cand
			}
		}
	}

	query := parsed.Query()
	for _, key := range []string{"asin", "ASIN"} {
		if cand := strings.ToUpper(strings.TrimSpace(query.Get(key))); IsValidASIN(cand) {
			return cand
		}
	}
	return ""
}

// resolveASINs runs the identifier cascade over the blob, most-trustworthy
// source first. Invalid candidates are skipped, not fatal; every validated
// hit is collected in cascade order with duplicates removed.
func resolveASINs(blob string) (asins, sourceURLs []string) {
	// 1. Identifiers embedded in amazon product URLs.
	for _, raw := range amazonURLRegex.FindAllString(blob, -1) {
		normalized, err := util.NormalizeAmazonURL(raw)
		if err != nil {
			normalized = raw
		}
		sourceURLs = append(sourceURLs, normalized)
		if a := ASINFromURL(raw); a != "" {
			asins = append(asins, a)
		}
	}

	// 2. Exact labeled form: "ASIN: B0XXXXXXXX".
	for _, m := range labeledExactRegex.FindAllStringSubmatch(blob, -1) {
		if cand := strings.ToUpper(m[1]); IsValidASIN(cand) {
			asins = append(asins, cand)
		}
	}

	// 3. Permissive labeled form: strip separators, require 10 chars after.
	for _, m := range labeledLooseRegex.FindAllStringSubmatch(blob, -1) {
		cand := strings.ToUpper(util.StripNonAlphanumeric(m[1]))
		if len(cand) == 10 && IsValidASIN(cand) {
			asins = append(asins, cand)
		}
	}

	// 4. Bare tokens with the common vendor prefix.
	for _, m := range prefixTokenRegex.FindAllStringSubmatch(blob, -1) {
		if cand := strings.ToUpper(m[1]); IsValidASIN(cand) {
			asins = append(asins, cand)
		}
	}

	// 5. Permissive scan of all 10-character alphanumeric tokens.
	for _, m := range bareTokenRegex.FindAllStringSubmatch(blob, -1) {
		if cand := strings.ToUpper(m[1]); IsValidASIN(cand) {
			asins = append(asins, cand)
		}
	}

	return util.DedupeStrings(asins), util.DedupeStrings(sourceURLs)
}
