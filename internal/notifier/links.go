package notifier

import (
	"fmt"
	"net/url"

	"github.com/bgrierson/lead-filter-bot/internal/oracle"
)

const sasLookupBase = "https://sas.selleramp.com/sas/lookup"

// BuildSASURL builds a SellerAmp lookup link prefilled with whatever cost,
// sale, and source-URL data the lead carried.
func BuildSASURL(asin string, cost, sale *float64, sourceURL string) string {
	params := url.Values{}
	params.Set("asin", asin)
	if cost != nil {
		params.Set("sas_cost_price", fmt.Sprintf("%.2f", *cost))
	}
	if sale != nil {
		params.Set("sas_sale_price", fmt.Sprintf("%.2f", *sale))
	}
	if sourceURL != "" {
		params.Set("source_url", sourceURL)
	}
	return sasLookupBase + "?" + params.Encode()
}

// MarketProductURL builds the canonical product link for a market code,
// optionally tagged. Unknown codes fall back to the first known market.
func MarketProductURL(marketCode, asin, affiliateTag string) string {
	market, ok := oracle.MarketFor(marketCode)
	if !ok {
		market = oracle.Markets()[0]
	}
	productURL := "https://" + market.Host + "/dp/" + asin
	return withAffiliateTag(productURL, affiliateTag)
}

// MarketLinks builds per-region product links for every known market.
func MarketLinks(asin, affiliateTag string) []string {
	markets := oracle.Markets()
	lines := make([]string, 0, len(markets))
	for _, m := range markets {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Code, withAffiliateTag("https://"+m.Host+"/dp/"+asin, affiliateTag)))
	}
	return lines
}

// withAffiliateTag sets the affiliate tag query parameter, replacing any
// tag already present.
func withAffiliateTag(rawURL, tag string) string {
	if tag == "" {
		return rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	query.Set("tag", tag)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
