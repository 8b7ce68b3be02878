package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/bgrierson/lead-filter-bot/internal/models"
)

const (
	relayEmbedColor   = 0x00AAFF
	maxMessageRunes   = 1900
	maxEmbedFieldSize = 1024
)

// Dispatcher delivers approved-lead notifications.
type Dispatcher struct {
	messenger         Messenger
	forwardUserID     string
	fallbackToChannel bool
	affiliateTag      string
	preferredMarket   string
}

type DispatcherConfig struct {
	ForwardUserID     string
	FallbackToChannel bool
	AffiliateTag      string
	PreferredMarket   string
}

func NewDispatcher(m Messenger, cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		messenger:         m,
		forwardUserID:     cfg.ForwardUserID,
		fallbackToChannel: cfg.FallbackToChannel,
		affiliateTag:      cfg.AffiliateTag,
		preferredMarket:   cfg.PreferredMarket,
	}
}

// NotifyApproved formats and delivers the approval. Primary delivery is a
// DM to the configured recipient; on DM failure the originating channel is
// used instead when the fallback flag is on. The relay copy and the log
// notice are independent and best-effort.
func (d *Dispatcher) NotifyApproved(ctx context.Context, lead models.ApprovedLead) error {
	summary := d.formatSummary(lead)
	delivered := false

	if lead.DMEnabled && d.forwardUserID != "" {
		if err := d.messenger.SendDM(d.forwardUserID, "**Approved Lead**\n"+summary); err != nil {
			slog.Warn("DM delivery failed", "user", d.forwardUserID, "error", err)
			if d.fallbackToChannel {
				delivered = d.sendToChannel(lead.ChannelID, "Approved lead →\n"+summary)
			}
		} else {
			delivered = true
		}
	} else {
		delivered = d.sendToChannel(lead.ChannelID, "Approved lead →\n"+summary)
	}

	d.relay(lead, summary)
	d.logApproval(lead)

	if !delivered {
		return models.ErrDeliveryFailed
	}
	return nil
}

// LogEvent posts a short notice to a guild's log channel. Failures are
// logged and swallowed.
func (d *Dispatcher) LogEvent(_ context.Context, logChannelID, text string) {
	if logChannelID == "" {
		return
	}
	if err := d.messenger.SendChannel(logChannelID, truncate(text, maxMessageRunes)); err != nil {
		slog.Warn("Log-channel send failed", "channel", logChannelID, "error", err)
	}
}

func (d *Dispatcher) sendToChannel(channelID, content string) bool {
	if err := d.messenger.SendChannel(channelID, truncate(content, maxMessageRunes)); err != nil {
		slog.Warn("Channel delivery failed", "channel", channelID, "error", err)
		return false
	}
	return true
}

func (d *Dispatcher) relay(lead models.ApprovedLead, summary string) {
	if lead.RelayChannelID == "" {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Approved Lead (Relayed)",
		Description: fmt.Sprintf("From <#%s>", lead.ChannelID),
		Color:       relayEmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Summary", Value: truncate(summary, maxEmbedFieldSize)},
			{Name: "Jump to Source", Value: lead.MessageJumpURL},
		},
	}
	if err := d.messenger.SendChannelEmbed(lead.RelayChannelID, embed); err != nil {
		slog.Warn("Relay failed", "dest", lead.RelayChannelID, "error", err)
	}
}

func (d *Dispatcher) logApproval(lead models.ApprovedLead) {
	if lead.LogChannelID == "" {
		return
	}
	roi := "n/a"
	if lead.ROIPercent != nil {
		roi = fmt.Sprintf("%.2f%%", *lead.ROIPercent)
	}
	d.LogEvent(context.Background(), lead.LogChannelID,
		fmt.Sprintf("✅ Approved in <#%s> (ROI %s). %s", lead.ChannelID, roi, lead.MessageJumpURL))
}

func (d *Dispatcher) formatSummary(lead models.ApprovedLead) string {
	var sb strings.Builder

	var figures []string
	if lead.ROIPercent != nil {
		figures = append(figures, fmt.Sprintf("ROI: %.2f%%", *lead.ROIPercent))
	}
	if lead.Profit != nil {
		figures = append(figures, fmt.Sprintf("Profit: %.2f", *lead.Profit))
	}
	figures = append(figures, fmt.Sprintf("Channel: #%s", lead.ChannelName))
	sb.WriteString(strings.Join(figures, " | "))

	for _, asin := range lead.ASINs {
		sb.WriteString("\n- **" + asin + "**")
		sb.WriteString("\n  Amazon: " + MarketProductURL(d.preferredMarket, asin, d.affiliateTag))
		sb.WriteString("\n  SAS: " + BuildSASURL(asin, lead.Cost, lead.SalePrice, lead.SourceURL))
	}
	if lead.MessageJumpURL != "" {
		sb.WriteString("\nJump: " + lead.MessageJumpURL)
	}
	return sb.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
