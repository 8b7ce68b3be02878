// Package extract runs the pattern battery that pulls structured deal
// attributes out of a flattened message blob. Every extractor is optional:
// an unparsable candidate is skipped and the next rule runs, never an error.
package extract

import "github.com/bgrierson/lead-filter-bot/internal/models"

// Options tunes the variant-dependent extraction behavior.
type Options struct {
	BlockedTokens []string
	BlockScope    BlockScanScope
}

// Attributes applies the full battery over blob.
func Attributes(blob string, opts Options) models.ExtractedAttributes {
	asins, sourceURLs := resolveASINs(blob)
	cost, sale := extractCostSale(blob)

	return models.ExtractedAttributes{
		ASINs:          asins,
		SourceURLs:     sourceURLs,
		Cost:           cost,
		SalePrice:      sale,
		ROIPercent:     extractExplicitROI(blob),
		Eligibility:    extractEligibility(blob),
		HasBlockSignal: hasBlockSignal(blob, opts.BlockedTokens, opts.BlockScope),
	}
}

// Merge fills fields still missing in dst from src. Fields already present
// in dst are never overwritten; this is the contract the OCR fallback
// relies on (text-derived data beats image-derived data).
func Merge(dst *models.ExtractedAttributes, src models.ExtractedAttributes) {
	if len(dst.ASINs) == 0 {
		dst.ASINs = src.ASINs
	}
	if len(dst.SourceURLs) == 0 {
		dst.SourceURLs = src.SourceURLs
	}
	if dst.Cost == nil {
		dst.Cost = src.Cost
	}
	if dst.SalePrice == nil {
		dst.SalePrice = src.SalePrice
	}
	if dst.ROIPercent == nil {
		dst.ROIPercent = src.ROIPercent
	}
	if dst.Eligibility == models.EligibilityUnknown {
		dst.Eligibility = src.Eligibility
	}
	if src.HasBlockSignal {
		dst.HasBlockSignal = true
	}
}
