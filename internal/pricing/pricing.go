// Package pricing derives profit and ROI figures from (cost, sale) pairs.
package pricing

import "github.com/bgrierson/lead-filter-bot/internal/util"

// ComputeProfitROI returns profit and ROI for a cost/sale pair, both
// rounded to 2 decimals. Profit is undefined when either input is missing;
// ROI is additionally undefined when cost is not positive.
func ComputeProfitROI(cost, sale *float64) (profit, roi *float64) {
	if cost == nil || sale == nil {
		return nil, nil
	}
	p := util.Round2(*sale - *cost)
	profit = &p
	if *cost > 0 {
		r := util.Round2(p / *cost * 100)
		roi = &r
	}
	return profit, roi
}

// ResolveROI picks the ROI figure for a lead: an explicit "ROI: NN%" value
// always beats one derived from the price pair.
func ResolveROI(explicit, derived *float64) *float64 {
	if explicit != nil {
		return explicit
	}
	return derived
}
