package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// BlockScanScope controls how widely the block-token scan runs. The two
// upstream filter variants never agreed on one behavior, so both are kept.
type BlockScanScope int

const (
	// ScopeAlertsLine matches blocked tokens only on "Alerts:" lines.
	// Lower recall, far fewer false positives on unrelated prose.
	ScopeAlertsLine BlockScanScope = iota
	// ScopeFullText matches standalone blocked tokens anywhere in the blob.
	ScopeFullText
)

// ParseBlockScanScope maps a settings string to a scope, defaulting to the
// strict alerts-line behavior.
func ParseBlockScanScope(s string) BlockScanScope {
	if strings.EqualFold(strings.TrimSpace(s), "full-text") {
		return ScopeFullText
	}
	return ScopeAlertsLine
}

func (s BlockScanScope) String() string {
	if s == ScopeFullText {
		return "full-text"
	}
	return "alerts-line"
}

var alertLineRegex = regexp.MustCompile(`(?i)^\s*Alerts?\s*[:=]?\s*(.*)$`)

// ipAlertPhrases always block, regardless of scope. These are explicit
// warnings, never incidental prose.
var ipAlertPhrases = []string{"ip alert", "ip-alert", "ip violation"}

// fullTextPhrases block only under ScopeFullText: they show up in ordinary
// seller prose too often for the strict scope.
var fullTextPhrases = []string{"private label"}

// DefaultBlockedTokens are the standalone tokens that mark a lead as
// restricted: intellectual-property and private-label flags.
var DefaultBlockedTokens = []string{"ip", "pl"}

// blockTokenRegex builds a word-boundary alternation for the configured
// tokens, e.g. `\b(?:ip|pl)\b`.
func blockTokenRegex(tokens []string) *regexp.Regexp {
	if len(tokens) == 0 {
		tokens = DefaultBlockedTokens
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(t)))
	}
	return regexp.MustCompile(fmt.Sprintf(`(?i)\b(?:%s)\b`, strings.Join(quoted, "|")))
}

// hasBlockSignal reports whether the blob carries an IP/PL style warning.
// Alert-line tokens and the explicit ip-alert phrases always count; bare
// tokens and the softer phrases anywhere in the text count only under
// ScopeFullText.
func hasBlockSignal(blob string, tokens []string, scope BlockScanScope) bool {
	tokenRe := blockTokenRegex(tokens)

	for _, line := range strings.Split(blob, "\n") {
		m := alertLineRegex.FindStringSubmatch(line)
		if m != nil && tokenRe.MatchString(m[1]) {
			return true
		}
	}

	lower := strings.ToLower(blob)
	for _, phrase := range ipAlertPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	if scope != ScopeFullText {
		return false
	}
	for _, phrase := range fullTextPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return tokenRe.MatchString(blob)
}
