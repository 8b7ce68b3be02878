package oracle

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// quotePayload is the normalized product record pulled out of one API
// response, whatever shape it arrived in.
type quotePayload struct {
	price *float64
	brand string
	title string
}

// priceFieldNames are tried in order against the product object. The
// upstream exposes the figure under different names depending on endpoint
// version and product category; this is a stable contract to tolerate, not
// a bug to fix.
var priceFieldNames = []string{"price", "buyBoxPrice", "currentPrice", "salePrice", "amount", "listPrice"}

// decodeQuote normalizes the heterogeneous response shapes the price API
// produces: a bare product object, {"product": {...}}, {"products": [...]},
// or a bare one-element array.
func decodeQuote(data []byte) (quotePayload, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return quotePayload{}, fmt.Errorf("empty response body")
	}

	if strings.HasPrefix(trimmed, "[") {
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return quotePayload{}, fmt.Errorf("decode response array: %w", err)
		}
		if len(list) == 0 {
			return quotePayload{}, fmt.Errorf("empty result list")
		}
		return decodeProduct(list[0])
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return quotePayload{}, fmt.Errorf("decode response object: %w", err)
	}

	if raw, ok := envelope["product"]; ok {
		return decodeProduct(raw)
	}
	if raw, ok := envelope["products"]; ok {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return quotePayload{}, fmt.Errorf("empty or invalid products list")
		}
		return decodeProduct(list[0])
	}
	// Bare product object at the root.
	return decodeProduct(data)
}

func decodeProduct(raw json.RawMessage) (quotePayload, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return quotePayload{}, fmt.Errorf("decode product: %w", err)
	}

	var q quotePayload
	for _, name := range priceFieldNames {
		if v := numberField(obj, name); v != nil && *v > 0 {
			q.price = v
			break
		}
	}
	if q.price == nil {
		q.price = historyFallback(obj)
	}
	q.brand = stringField(obj, "brand")
	q.title = stringField(obj, "title")
	return q, nil
}

// historyFallback digs the most recent positive entry out of a historical
// price series ("history" or "priceHistory"), newest last.
func historyFallback(obj map[string]json.RawMessage) *float64 {
	for _, name := range []string{"history", "priceHistory"} {
		raw, ok := obj[name]
		if !ok {
			continue
		}
		var series []json.Number
		if err := json.Unmarshal(raw, &series); err != nil {
			continue
		}
		for i := len(series) - 1; i >= 0; i-- {
			if v, err := series[i].Float64(); err == nil && v > 0 {
				return &v
			}
		}
	}
	return nil
}

// numberField reads obj[name] as a float, accepting both JSON numbers and
// numeric strings.
func numberField(obj map[string]json.RawMessage, name string) *float64 {
	raw, ok := obj[name]
	if !ok {
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if v, err := num.Float64(); err == nil {
			return &v
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &v
		}
	}
	return nil
}

func stringField(obj map[string]json.RawMessage, name string) string {
	raw, ok := obj[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
