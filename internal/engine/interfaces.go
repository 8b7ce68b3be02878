package engine

import (
	"context"
	"time"

	"github.com/bgrierson/lead-filter-bot/internal/models"
)

// SettingsStore abstracts the per-guild configuration and relay-link
// storage.
type SettingsStore interface {
	GetSettings(ctx context.Context, guildID string) (*models.GuildSettings, error)
	GetLink(ctx context.Context, sourceChannelID string) (string, error)
}

// PriceOracle resolves a sale price externally. Exhaustion is expressed in
// the quote, never as an error.
type PriceOracle interface {
	Lookup(ctx context.Context, asin, preferredMarket string) models.PriceQuote
}

// TextExtractor is the OCR service used for image-only leads.
type TextExtractor interface {
	ExtractText(ctx context.Context, imageURL string) (string, error)
}

// Deduper suppresses repeat notifications per (guild, identifier).
type Deduper interface {
	Filter(guildID string, asins []string, window time.Duration) []string
}

// Notifier delivers approvals and log notices.
type Notifier interface {
	NotifyApproved(ctx context.Context, lead models.ApprovedLead) error
	LogEvent(ctx context.Context, logChannelID, text string)
}
