package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bgrierson/lead-filter-bot/internal/models"
)

var (
	roiRegex = regexp.MustCompile(`(?i)(?:ROI|R\.?O\.?I\.?|Return\s+on\s+Investment|Est(?:imated)?\s*ROI)\s*[:=]?\s*([0-9]+(?:\.[0-9]+)?)\s*%`)

	costRegex = regexp.MustCompile(`(?i)\b(?:Buy|Cost)\s*[:=]\s*[£$€]?\s*([0-9]+(?:\.[0-9]{1,2})?)`)
	saleRegex = regexp.MustCompile(`(?i)\b(?:Sell|Sale|SP|Price)\s*[:=]\s*[£$€]?\s*([0-9]+(?:\.[0-9]{1,2})?)`)
	wasRegex  = regexp.MustCompile(`(?i)\bWas\s*[:=]\s*[£$€]?\s*([0-9]+(?:\.[0-9]{1,2})?)`)
	nowRegex  = regexp.MustCompile(`(?i)\bNow\s*[:=]\s*[£$€]?\s*([0-9]+(?:\.[0-9]{1,2})?)`)

	eligibilityRegex = regexp.MustCompile(`(?i)\b(?:Elig(?:ibility|ible)?)\s*[:=]?\s*(Yes|No|Unknown)\b`)
)

func firstNumber(re *regexp.Regexp, blob string) *float64 {
	m := re.FindStringSubmatch(blob)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

// extractCostSale pulls the (cost, sale) pair from labeled values. The
// primary Buy/Cost and Sell/Sale/SP/Price labels win; only when neither is
// present does the Was/Now pair substitute, with Now mapped to cost and
// Was to sale.
func extractCostSale(blob string) (cost, sale *float64) {
	cost = firstNumber(costRegex, blob)
	sale = firstNumber(saleRegex, blob)
	if cost != nil || sale != nil {
		return cost, sale
	}
	now := firstNumber(nowRegex, blob)
	was := firstNumber(wasRegex, blob)
	if now != nil || was != nil {
		return now, was
	}
	return nil, nil
}

// extractExplicitROI matches an explicit "ROI: NN%" figure.
func extractExplicitROI(blob string) *float64 {
	return firstNumber(roiRegex, blob)
}

func extractEligibility(blob string) models.Eligibility {
	m := eligibilityRegex.FindStringSubmatch(blob)
	if m == nil {
		return models.EligibilityUnknown
	}
	switch {
	case strings.EqualFold(m[1], "Yes"):
		return models.EligibilityYes
	case strings.EqualFold(m[1], "No"):
		return models.EligibilityNo
	default:
		return models.EligibilityUnknown
	}
}
