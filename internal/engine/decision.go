package engine

import (
	"fmt"

	"github.com/bgrierson/lead-filter-bot/internal/models"
)

// Evaluate runs the ordered rule cascade and short-circuits on the first
// failing rule, so a blocked lead always reports the block reason even
// when its ROI would also fail. The profit rule only participates when the
// guild has a non-negative minimum profit configured.
func Evaluate(attrs models.ExtractedAttributes, profit, roi *float64, settings models.GuildSettings) models.Verdict {
	if attrs.HasBlockSignal {
		return models.Verdict{Reason: "Blocked (IP/PL/IP Alert)"}
	}

	if attrs.Eligibility == models.EligibilityNo {
		return models.Verdict{Reason: "Eligibility = No"}
	}
	if attrs.Eligibility == models.EligibilityUnknown && !settings.AllowMissingEligibility {
		return models.Verdict{Reason: "Eligibility not found"}
	}

	if settings.ProfitRuleEnabled() {
		if profit == nil {
			return models.Verdict{Reason: "Profit missing"}
		}
		if *profit < settings.MinProfit {
			return models.Verdict{Reason: fmt.Sprintf("Profit %.2f < min %.2f", *profit, settings.MinProfit)}
		}
	}

	if roi == nil {
		return models.Verdict{Reason: "ROI missing"}
	}
	if *roi < settings.MinROI {
		return models.Verdict{Reason: fmt.Sprintf("ROI %.2f%% < %.2f%%", *roi, settings.MinROI)}
	}

	return models.Verdict{Approved: true, Reason: "Pass"}
}
