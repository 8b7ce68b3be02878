package models

import "errors"

// ErrDeliveryFailed is returned when a notification could not be delivered
// to its primary sink.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// Eligibility is the tri-state result of parsing an "Eligibility:" label.
// Absence of the label is Unknown, which is distinct from an explicit No.
type Eligibility int

const (
	EligibilityUnknown Eligibility = iota
	EligibilityYes
	EligibilityNo
)

func (e Eligibility) String() string {
	switch e {
	case EligibilityYes:
		return "Yes"
	case EligibilityNo:
		return "No"
	default:
		return "Unknown"
	}
}

// InboundMessage is one message delivered by the chat platform, reduced to
// the fields the pipeline cares about.
type InboundMessage struct {
	GuildID     string
	ChannelID   string
	ChannelName string
	MessageID   string
	AuthorID    string
	Content     string
	Embeds      []Embed
	Attachments []Attachment
	JumpURL     string
}

// Embed mirrors the embed blocks a chat message may carry.
type Embed struct {
	Title        string
	AuthorName   string
	Description  string
	URL          string
	Fields       []EmbedField
	FooterText   string
	ImageURL     string
	ThumbnailURL string
}

type EmbedField struct {
	Name  string
	Value string
}

// Attachment is a file attached to a message. Image attachments feed the
// OCR fallback.
type Attachment struct {
	URL         string
	Filename    string
	ContentType string
}

// ExtractedAttributes holds whatever the pattern battery could pull out of
// a message. Every field is optional; absence is a first-class state.
type ExtractedAttributes struct {
	ASINs          []string // cascade order, first entry is the most trustworthy hit
	Cost           *float64
	SalePrice      *float64
	ROIPercent     *float64 // explicit "ROI: NN%" only, never derived
	Eligibility    Eligibility
	HasBlockSignal bool
	SourceURLs     []string // amazon product URLs seen in the text
}

// PrimaryASIN returns the first (most trustworthy) identifier, or "".
func (a ExtractedAttributes) PrimaryASIN() string {
	if len(a.ASINs) == 0 {
		return ""
	}
	return a.ASINs[0]
}

// MissingCoreField reports whether any field the OCR fallback could still
// supply is absent.
func (a ExtractedAttributes) MissingCoreField() bool {
	return len(a.ASINs) == 0 || a.Cost == nil || a.SalePrice == nil || a.ROIPercent == nil
}

// PriceQuote is the normalized result of a price-oracle lookup. Diagnostic
// accumulates one note per market attempted and is informational only.
type PriceQuote struct {
	Price        *float64
	Brand        string
	Title        string
	SourceMarket string
	Diagnostic   string
}

// Usable reports whether the quote carries a positive price.
func (q PriceQuote) Usable() bool {
	return q.Price != nil && *q.Price > 0
}

// Verdict is the output of the decision cascade. Reason is display-only.
type Verdict struct {
	Approved bool
	Reason   string
}

// GuildSettings is the per-server configuration the pipeline reads. It is
// owned by the settings store and mutated only through the command surface.
type GuildSettings struct {
	MinROI                  float64 `firestore:"minROI" validate:"gte=0,lte=1000"`
	MinProfit               float64 `firestore:"minProfit" validate:"gte=-1,lte=100000"` // negative disables the profit rule
	DMEnabled               bool    `firestore:"dmEnabled"`
	AllowMissingEligibility bool    `firestore:"allowMissingEligibility"`
	DedupeHours             float64 `firestore:"dedupeHours" validate:"gte=0,lte=168"`
	LogChannelID            string  `firestore:"logChannelID,omitempty"`
	BlockScanScope          string  `firestore:"blockScanScope,omitempty" validate:"omitempty,oneof=alerts-line full-text"`
}

// ProfitRuleEnabled reports whether the minimum-profit rule participates in
// the decision cascade.
func (s GuildSettings) ProfitRuleEnabled() bool {
	return s.MinProfit >= 0
}

// DefaultSettings returns the settings used for a guild with no stored
// configuration, seeded with the process-wide minimum ROI.
func DefaultSettings(minROI float64) GuildSettings {
	return GuildSettings{
		MinROI:         minROI,
		MinProfit:      -1,
		DMEnabled:      true,
		DedupeHours:    6,
		BlockScanScope: "alerts-line",
	}
}
