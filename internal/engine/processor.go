// Package engine orchestrates the lead pipeline: normalize, extract, OCR
// fallback, price-oracle fallback, decision, dedup, dispatch. No step may
// abort processing of a message; every upstream failure degrades to
// missing data.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bgrierson/lead-filter-bot/internal/extract"
	"github.com/bgrierson/lead-filter-bot/internal/models"
	"github.com/bgrierson/lead-filter-bot/internal/normalize"
	"github.com/bgrierson/lead-filter-bot/internal/pricing"
)

// maxOCRImages caps how many attachments are submitted per message.
const maxOCRImages = 3

// Options carries the process-wide defaults the pipeline falls back to
// when a guild has no stored settings.
type Options struct {
	DefaultMinROI    float64
	DefaultMinProfit float64 // negative disables the profit rule
	BlockedTokens    []string
	DefaultScope     string
	PreferredMarket  string
}

// LeadProcessor wires the pipeline's collaborators. All dependencies are
// injected; oracle and ocr may be nil (disabled).
type LeadProcessor struct {
	store    SettingsStore
	oracle   PriceOracle
	ocr      TextExtractor
	dedup    Deduper
	notifier Notifier
	opts     Options

	mu       sync.Mutex
	lastDiag map[string]Result // per channel, for the diagnostics command
}

func New(store SettingsStore, oracle PriceOracle, ocr TextExtractor, dedup Deduper, notifier Notifier, opts Options) *LeadProcessor {
	return &LeadProcessor{
		store:    store,
		oracle:   oracle,
		ocr:      ocr,
		dedup:    dedup,
		notifier: notifier,
		opts:     opts,
		lastDiag: make(map[string]Result),
	}
}

// Result captures what one message produced at each pipeline stage.
type Result struct {
	Blob       string
	Attributes models.ExtractedAttributes
	Profit     *float64
	ROIPercent *float64
	Verdict    models.Verdict
	FreshASINs []string
	Notified   bool
	Diagnostic string
}

// Process runs one inbound message through the full pipeline. It never
// returns an error: the worst case is "no identifier found, message
// ignored", recorded in the result's diagnostic.
func (p *LeadProcessor) Process(ctx context.Context, msg models.InboundMessage) Result {
	settings := p.settingsFor(ctx, msg.GuildID)

	var diag strings.Builder
	res := Result{Blob: normalize.Flatten(msg)}

	extractOpts := extract.Options{
		BlockedTokens: p.opts.BlockedTokens,
		BlockScope:    extract.ParseBlockScanScope(settings.BlockScanScope),
	}
	res.Attributes = extract.Attributes(res.Blob, extractOpts)

	// OCR fallback: only for fields the text pass left empty.
	if p.ocr != nil && res.Attributes.MissingCoreField() {
		if ocrText := p.runOCR(ctx, msg, &diag); ocrText != "" {
			ocrAttrs := extract.Attributes(normalize.Clean(ocrText), extractOpts)
			extract.Merge(&res.Attributes, ocrAttrs)
		}
	}

	// Price-oracle fallback: sale price absent or non-positive.
	saleMissing := res.Attributes.SalePrice == nil || *res.Attributes.SalePrice <= 0
	if p.oracle != nil && saleMissing && res.Attributes.PrimaryASIN() != "" {
		quote := p.oracle.Lookup(ctx, res.Attributes.PrimaryASIN(), p.opts.PreferredMarket)
		if quote.Diagnostic != "" {
			diag.WriteString("oracle: " + quote.Diagnostic)
		}
		if quote.Usable() {
			res.Attributes.SalePrice = quote.Price
		}
	}

	res.Profit, res.ROIPercent = p.resolveFigures(res.Attributes)
	res.Verdict = Evaluate(res.Attributes, res.Profit, res.ROIPercent, settings)
	diag.WriteString("decision: " + res.Verdict.Reason + "; ")

	if res.Verdict.Approved {
		res = p.dispatch(ctx, msg, settings, res, &diag)
	}

	res.Diagnostic = diag.String()
	p.recordDiag(msg.ChannelID, res)
	return res
}

func (p *LeadProcessor) dispatch(ctx context.Context, msg models.InboundMessage, settings models.GuildSettings, res Result, diag *strings.Builder) Result {
	window := time.Duration(settings.DedupeHours * float64(time.Hour))
	res.FreshASINs = p.dedup.Filter(msg.GuildID, res.Attributes.ASINs, window)

	if len(res.Attributes.ASINs) > 0 && len(res.FreshASINs) == 0 {
		diag.WriteString("dedupe: all identifiers suppressed; ")
		p.notifier.LogEvent(ctx, settings.LogChannelID, fmt.Sprintf(
			"🟨 Dedupe skip in <#%s> — ASINs within %.1fh: %s",
			msg.ChannelID, settings.DedupeHours, strings.Join(res.Attributes.ASINs, ", ")))
		return res
	}

	relayDest, err := p.store.GetLink(ctx, msg.ChannelID)
	if err != nil {
		slog.Warn("Relay-link lookup failed", "channel", msg.ChannelID, "error", err)
		relayDest = ""
	}

	sourceURL := ""
	if len(res.Attributes.SourceURLs) > 0 {
		sourceURL = res.Attributes.SourceURLs[0]
	}

	lead := models.ApprovedLead{
		GuildID:        msg.GuildID,
		ChannelID:      msg.ChannelID,
		ChannelName:    msg.ChannelName,
		MessageJumpURL: msg.JumpURL,
		ASINs:          res.FreshASINs,
		Cost:           res.Attributes.Cost,
		SalePrice:      res.Attributes.SalePrice,
		ROIPercent:     res.ROIPercent,
		Profit:         res.Profit,
		SourceURL:      sourceURL,
		DMEnabled:      settings.DMEnabled,
		LogChannelID:   settings.LogChannelID,
		RelayChannelID: relayDest,
	}

	if err := p.notifier.NotifyApproved(ctx, lead); err != nil {
		slog.Warn("Approved-lead delivery failed", "channel", msg.ChannelID, "error", err)
		diag.WriteString("delivery: failed; ")
		return res
	}
	res.Notified = true
	return res
}

// resolveFigures derives profit/ROI from the extracted pair, letting an
// explicit ROI pattern win over the derived figure.
func (p *LeadProcessor) resolveFigures(attrs models.ExtractedAttributes) (profit, roi *float64) {
	profit, derived := pricing.ComputeProfitROI(attrs.Cost, attrs.SalePrice)
	return profit, pricing.ResolveROI(attrs.ROIPercent, derived)
}

// runOCR submits up to maxOCRImages image attachments concurrently and
// concatenates whatever text came back. Failures degrade to "".
func (p *LeadProcessor) runOCR(ctx context.Context, msg models.InboundMessage, diag *strings.Builder) string {
	var images []models.Attachment
	for _, att := range msg.Attachments {
		if strings.HasPrefix(att.ContentType, "image") {
			images = append(images, att)
			if len(images) == maxOCRImages {
				break
			}
		}
	}
	if len(images) == 0 {
		return ""
	}

	texts := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			text, err := p.ocr.ExtractText(gctx, img.URL)
			if err != nil {
				slog.Warn("OCR failed", "image", img.URL, "error", err)
				return nil // soft failure, image contributes nothing
			}
			texts[i] = text
			return nil
		})
	}
	_ = g.Wait()

	var nonEmpty []string
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	if len(nonEmpty) > 0 {
		diag.WriteString(fmt.Sprintf("ocr: %d/%d images yielded text; ", len(nonEmpty), len(images)))
	}
	return strings.Join(nonEmpty, "\n")
}

// settingsFor loads guild settings, falling back to defaults on storage
// failure or for unconfigured guilds. A storage outage must never block
// message processing.
func (p *LeadProcessor) settingsFor(ctx context.Context, guildID string) models.GuildSettings {
	stored, err := p.store.GetSettings(ctx, guildID)
	if err != nil {
		slog.Warn("Settings read failed, using defaults", "guild", guildID, "error", err)
		return p.defaultSettings()
	}
	if stored == nil {
		return p.defaultSettings()
	}
	return *stored
}

func (p *LeadProcessor) defaultSettings() models.GuildSettings {
	settings := models.DefaultSettings(p.opts.DefaultMinROI)
	settings.MinProfit = p.opts.DefaultMinProfit
	if p.opts.DefaultScope != "" {
		settings.BlockScanScope = p.opts.DefaultScope
	}
	return settings
}

func (p *LeadProcessor) recordDiag(channelID string, res Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastDiag[channelID] = res
}

// LastResult returns the most recent pipeline result for a channel, for
// the diagnostics command.
func (p *LeadProcessor) LastResult(channelID string) (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	res, ok := p.lastDiag[channelID]
	return res, ok
}
