package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/bgrierson/lead-filter-bot/internal/extract"
	"github.com/bgrierson/lead-filter-bot/internal/models"
	"github.com/bgrierson/lead-filter-bot/internal/notifier"
)

const commandTimeout = 10 * time.Second

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	data := i.ApplicationCommandData()
	opts := optionMap(data.Options)

	var reply string
	switch data.Name {
	case "settings":
		reply = b.handleSettings(ctx, i)
	case "set_min_roi":
		reply = b.updateSettings(ctx, i, func(s *models.GuildSettings) string {
			s.MinROI = opts.number("value")
			return fmt.Sprintf("Set minimum ROI for this server to %.1f%%.", s.MinROI)
		})
	case "set_min_profit":
		reply = b.updateSettings(ctx, i, func(s *models.GuildSettings) string {
			s.MinProfit = opts.number("value")
			if !s.ProfitRuleEnabled() {
				return "Profit rule disabled for this server."
			}
			return fmt.Sprintf("Set minimum profit for this server to %.2f.", s.MinProfit)
		})
	case "toggle_dm":
		reply = b.updateSettings(ctx, i, func(s *models.GuildSettings) string {
			s.DMEnabled = opts.boolean("enabled")
			return fmt.Sprintf("DM notifications set to: %t", s.DMEnabled)
		})
	case "toggle_allow_missing_eligibility":
		reply = b.updateSettings(ctx, i, func(s *models.GuildSettings) string {
			s.AllowMissingEligibility = opts.boolean("enabled")
			return fmt.Sprintf("Allow missing eligibility set to: %t", s.AllowMissingEligibility)
		})
	case "set_dedupe_hours":
		reply = b.updateSettings(ctx, i, func(s *models.GuildSettings) string {
			s.DedupeHours = opts.number("hours")
			return fmt.Sprintf("Dedupe window set to %.1f hours.", s.DedupeHours)
		})
	case "set_log_channel":
		reply = b.updateSettings(ctx, i, func(s *models.GuildSettings) string {
			s.LogChannelID = opts.channelID("channel")
			return fmt.Sprintf("Log channel set to <#%s>.", s.LogChannelID)
		})
	case "set_block_scope":
		reply = b.updateSettings(ctx, i, func(s *models.GuildSettings) string {
			s.BlockScanScope = opts.str("scope")
			return fmt.Sprintf("Block-signal scan scope set to %s.", s.BlockScanScope)
		})
	case "link_channels":
		reply = b.handleLinkChannels(ctx, i, opts)
	case "link_clear":
		reply = b.handleLinkClear(ctx, i, opts)
	case "watch_add":
		ch := opts.channelID("channel")
		if ch == "" {
			ch = i.ChannelID
		}
		b.watch.Add(ch)
		reply = fmt.Sprintf("Now watching <#%s>.", ch)
	case "watch_remove":
		b.watch.Remove(opts.channelID("channel"))
		reply = fmt.Sprintf("Stopped watching <#%s>.", opts.channelID("channel"))
	case "watch_list":
		reply = b.handleWatchList()
	case "asin_links":
		reply = handleASINLinks(opts)
	case "sas_link":
		reply = handleSASLink(opts)
	case "test_dm":
		reply = b.handleTestDM(i)
	case "diag_last":
		reply = b.handleDiagLast(i)
	case "status":
		reply = b.handleStatus(ctx, i)
	case "ping":
		reply = fmt.Sprintf("Pong! %d ms", s.HeartbeatLatency().Milliseconds())
	default:
		return
	}

	respondEphemeral(s, i, reply)
}

func (b *Bot) handleSettings(ctx context.Context, i *discordgo.InteractionCreate) string {
	settings := b.currentSettings(ctx, i.GuildID)
	link, _ := b.store.GetLink(ctx, i.ChannelID)

	profit := "disabled"
	if settings.ProfitRuleEnabled() {
		profit = fmt.Sprintf("%.2f", settings.MinProfit)
	}
	logChannel := "None"
	if settings.LogChannelID != "" {
		logChannel = "<#" + settings.LogChannelID + ">"
	}
	relay := "None"
	if link != "" {
		relay = "<#" + link + ">"
	}

	return fmt.Sprintf(
		"Min ROI: %.1f%%\nMin profit: %s\nDM enabled: %t\nAllow missing eligibility: %t\n"+
			"Dedupe hours: %.1f\nBlock scan scope: %s\nLog channel: %s\nRelay link (this channel): %s",
		settings.MinROI, profit, settings.DMEnabled, settings.AllowMissingEligibility,
		settings.DedupeHours, settings.BlockScanScope, logChannel, relay)
}

// updateSettings loads, mutates, validates, and persists one guild's
// settings. Validation failures and storage errors surface in the reply.
func (b *Bot) updateSettings(ctx context.Context, i *discordgo.InteractionCreate, mutate func(*models.GuildSettings) string) string {
	settings := b.currentSettings(ctx, i.GuildID)
	reply := mutate(&settings)

	if err := b.validate.ValidateStruct(settings); err != nil {
		return fmt.Sprintf("Rejected: %v", err)
	}
	if err := b.store.SetSettings(ctx, i.GuildID, settings); err != nil {
		slog.Error("Settings write failed", "guild", i.GuildID, "error", err)
		return "Saving settings failed; the change applies until restart only."
	}
	return reply
}

func (b *Bot) handleLinkChannels(ctx context.Context, i *discordgo.InteractionCreate, opts options) string {
	source := opts.channelID("source")
	if source == "" {
		source = i.ChannelID
	}
	dest := opts.channelID("destination")
	if err := b.store.SetLink(ctx, source, dest); err != nil {
		slog.Error("Link write failed", "source", source, "error", err)
		return "Saving relay link failed."
	}
	return fmt.Sprintf("Linked <#%s> → <#%s> for approved-lead relay.", source, dest)
}

func (b *Bot) handleLinkClear(ctx context.Context, i *discordgo.InteractionCreate, opts options) string {
	ch := opts.channelID("channel")
	if ch == "" {
		ch = i.ChannelID
	}
	if err := b.store.ClearLink(ctx, ch); err != nil {
		return "Clearing relay link failed."
	}
	return fmt.Sprintf("Cleared relay link for <#%s>.", ch)
}

func (b *Bot) handleWatchList() string {
	watched := b.watch.List()
	if len(watched) == 0 {
		return "No channel filter set; watching every channel."
	}
	mentions := make([]string, len(watched))
	for idx, id := range watched {
		mentions[idx] = "<#" + id + ">"
	}
	return "Watching: " + strings.Join(mentions, ", ")
}

func handleASINLinks(opts options) string {
	asin := strings.ToUpper(strings.TrimSpace(opts.str("asin")))
	if !extract.IsValidASIN(asin) {
		return "Please provide a valid 10-character ASIN."
	}
	return strings.Join(notifier.MarketLinks(asin, opts.str("tag")), "\n")
}

func handleSASLink(opts options) string {
	asin := strings.ToUpper(strings.TrimSpace(opts.str("asin")))
	if !extract.IsValidASIN(asin) {
		return "Please provide a valid 10-character ASIN."
	}
	return "**SAS:** " + notifier.BuildSASURL(asin, nil, nil, "")
}

func (b *Bot) handleTestDM(i *discordgo.InteractionCreate) string {
	userID := interactionUserID(i)
	if userID == "" {
		return "Could not resolve your user id."
	}
	if err := b.messenger.SendDM(userID, "✅ DM test: lead delivery to you works!"); err != nil {
		slog.Warn("Test DM failed", "user", userID, "error", err)
		return "I couldn't DM you. Enable 'Allow DMs from server members' and try again."
	}
	return "Sent you a DM. Check your inbox!"
}

// interactionUserID resolves the invoking user for both guild and DM
// interactions.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (b *Bot) handleDiagLast(i *discordgo.InteractionCreate) string {
	res, ok := b.processor.LastResult(i.ChannelID)
	if !ok {
		return "No message has been processed in this channel yet."
	}

	lines := []string{
		"**Diagnostics**",
		fmt.Sprintf("Eligibility: %s", res.Attributes.Eligibility),
		fmt.Sprintf("ROI: %s", formatOptional(res.ROIPercent, "%.2f%%")),
		fmt.Sprintf("Profit: %s", formatOptional(res.Profit, "%.2f")),
		fmt.Sprintf("Block signal: %t", res.Attributes.HasBlockSignal),
		fmt.Sprintf("Verdict: %t (%s)", res.Verdict.Approved, res.Verdict.Reason),
		fmt.Sprintf("ASINs: %s", formatList(res.Attributes.ASINs)),
		fmt.Sprintf("Notified: %t", res.Notified),
	}
	if res.Diagnostic != "" {
		lines = append(lines, "Trace: "+res.Diagnostic)
	}

	out := strings.Join(lines, "\n")
	if len(out) > 1900 {
		out = out[:1900] + "\n...(truncated)"
	}
	return out
}

func (b *Bot) handleStatus(ctx context.Context, i *discordgo.InteractionCreate) string {
	settings := b.currentSettings(ctx, i.GuildID)
	links, err := b.store.ListLinks(ctx)
	if err != nil {
		links = nil
	}

	watching := "all channels"
	if watched := b.watch.List(); len(watched) > 0 {
		watching = fmt.Sprintf("%d channels", len(watched))
	}

	lines := []string{
		"**Lead Filter Bot**",
		"Watching: " + watching,
		fmt.Sprintf("Guild min ROI: %.1f%% | DM: %t | Allow missing eligibility: %t | Dedupe: %.1fh",
			settings.MinROI, settings.DMEnabled, settings.AllowMissingEligibility, settings.DedupeHours),
		fmt.Sprintf("Relay links mapped: %d", len(links)),
	}
	count := 0
	for src, dst := range links {
		lines = append(lines, fmt.Sprintf("• <#%s> → <#%s>", src, dst))
		if count++; count >= 5 {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Warn("Interaction response failed", "error", err)
	}
}

// options wraps the flat option list for keyed access.
type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(list []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(list))
	for _, opt := range list {
		m[opt.Name] = opt
	}
	return m
}

func (o options) number(name string) float64 {
	if opt, ok := o[name]; ok {
		return opt.FloatValue()
	}
	return 0
}

func (o options) boolean(name string) bool {
	if opt, ok := o[name]; ok {
		return opt.BoolValue()
	}
	return false
}

func (o options) str(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o options) channelID(name string) string {
	if opt, ok := o[name]; ok {
		if v, ok := opt.Value.(string); ok {
			return v
		}
	}
	return ""
}
