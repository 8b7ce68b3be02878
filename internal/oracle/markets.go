package oracle

import (
	"strconv"
	"strings"
)

// Market identifies one amazon storefront the price API can be queried
// against. Numeric ids follow the upstream API's domain-id convention.
type Market struct {
	Code string
	ID   int
	Host string
}

var knownMarkets = []Market{
	{"US", 1, "www.amazon.com"},
	{"UK", 2, "www.amazon.co.uk"},
	{"DE", 3, "www.amazon.de"},
	{"FR", 4, "www.amazon.fr"},
	{"JP", 5, "www.amazon.co.jp"},
	{"CA", 6, "www.amazon.ca"},
	{"IT", 8, "www.amazon.it"},
	{"ES", 9, "www.amazon.es"},
	{"IN", 10, "www.amazon.in"},
	{"MX", 11, "www.amazon.com.mx"},
}

// marketPriority is the fixed fallback order after the preferred market,
// reflecting where reseller leads most often have usable price data.
var marketPriority = []string{"US", "UK", "DE", "FR", "IT", "ES", "CA", "JP", "IN", "MX"}

// MarketFor resolves a market code ("UK") or numeric id ("2") to a known
// market. The second return is false for anything unrecognized.
func MarketFor(s string) (Market, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Market{}, false
	}
	if id, err := strconv.Atoi(s); err == nil {
		for _, m := range knownMarkets {
			if m.ID == id {
				return m, true
			}
		}
		return Market{}, false
	}
	for _, m := range knownMarkets {
		if strings.EqualFold(m.Code, s) {
			return m, true
		}
	}
	return Market{}, false
}

// marketOrder builds the ordered attempt list: the preferred market first
// when it resolves, then the remaining known markets in priority order.
func marketOrder(preferred string) []Market {
	var order []Market
	seen := make(map[string]bool)

	if m, ok := MarketFor(preferred); ok {
		order = append(order, m)
		seen[m.Code] = true
	}
	for _, code := range marketPriority {
		if seen[code] {
			continue
		}
		if m, ok := MarketFor(code); ok {
			order = append(order, m)
			seen[code] = true
		}
	}
	return order
}

// Markets returns all known markets in priority order. Used by the command
// surface to build per-region product links.
func Markets() []Market {
	out := make([]Market, 0, len(marketPriority))
	for _, code := range marketPriority {
		if m, ok := MarketFor(code); ok {
			out = append(out, m)
		}
	}
	return out
}
