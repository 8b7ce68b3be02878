package oracle

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fetchPageTitle scrapes the product title off the public product page as
// a last-resort metadata source when every market came back empty. Best
// effort only; any failure returns "".
func (c *Client) fetchPageTitle(ctx context.Context, asin, preferredMarket string) string {
	market, ok := MarketFor(preferredMarket)
	if !ok {
		market = knownMarkets[0]
	}

	pageURL := "https://" + market.Host + "/dp/" + asin
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; lead-filter-bot)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("Page-title fetch failed", "asin", asin, "error", err)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	title := strings.TrimSpace(doc.Find("#productTitle").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return title
}
