package util

import (
	"net/url"
	"strings"
)

// IsAmazonHost reports whether host is an amazon storefront domain.
func IsAmazonHost(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	return host == "amazon.com" || strings.HasPrefix(host, "amazon.")
}

// NormalizeAmazonURL canonicalizes an amazon product URL: forces HTTPS,
// drops the "/ref=" path suffix and tracking query parameters. Non-amazon
// URLs are returned unchanged.
func NormalizeAmazonURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, err
	}
	if !IsAmazonHost(parsed.Hostname()) {
		return rawURL, nil
	}

	parsed.Scheme = "https"
	if i := strings.Index(parsed.Path, "/ref="); i > 0 {
		parsed.Path = parsed.Path[:i]
		parsed.RawPath = ""
	}
	if len(parsed.Path) > 1 && strings.HasSuffix(parsed.Path, "/") {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
		parsed.RawPath = ""
	}

	query := parsed.Query()
	trackingParams := []string{
		"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
		"ref", "ref_", "psc", "th", "linkCode", "linkId", "pd_rd_r", "pd_rd_w", "pd_rd_wg",
	}
	for _, param := range trackingParams {
		query.Del(param)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
