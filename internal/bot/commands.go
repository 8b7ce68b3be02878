package bot

import (
	"github.com/bwmarrin/discordgo"
)

// commandDefinitions declares the application-command surface. Handlers
// live in handlers.go, keyed by command name.
func commandDefinitions() []*discordgo.ApplicationCommand {
	channelOption := func(name, desc string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Name:        name,
			Description: desc,
			Type:        discordgo.ApplicationCommandOptionChannel,
			Required:    required,
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "settings",
			Description: "Show current filter & relay settings",
		},
		{
			Name:        "set_min_roi",
			Description: "Set the minimum ROI percentage for this server",
			Options: []*discordgo.ApplicationCommandOption{{
				Name:        "value",
				Description: "Minimum ROI percentage (e.g. 20 for 20%)",
				Type:        discordgo.ApplicationCommandOptionNumber,
				Required:    true,
			}},
		},
		{
			Name:        "set_min_profit",
			Description: "Set the minimum profit for this server (-1 disables the profit rule)",
			Options: []*discordgo.ApplicationCommandOption{{
				Name:        "value",
				Description: "Minimum profit in currency units, or -1 to disable",
				Type:        discordgo.ApplicationCommandOptionNumber,
				Required:    true,
			}},
		},
		{
			Name:        "toggle_dm",
			Description: "Turn DM notifications on or off for this server",
			Options: []*discordgo.ApplicationCommandOption{{
				Name:        "enabled",
				Description: "True to DM the configured recipient; false for channel-only",
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Required:    true,
			}},
		},
		{
			Name:        "toggle_allow_missing_eligibility",
			Description: "Allow leads to pass when no Eligibility label is present",
			Options: []*discordgo.ApplicationCommandOption{{
				Name:        "enabled",
				Description: "true or false",
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Required:    true,
			}},
		},
		{
			Name:        "set_dedupe_hours",
			Description: "Skip re-sending the same ASIN within N hours",
			Options: []*discordgo.ApplicationCommandOption{{
				Name:        "hours",
				Description: "Dedupe window in hours (0 disables)",
				Type:        discordgo.ApplicationCommandOptionNumber,
				Required:    true,
			}},
		},
		{
			Name:        "set_log_channel",
			Description: "Set a log channel for approvals and dedupe notices",
			Options:     []*discordgo.ApplicationCommandOption{channelOption("channel", "Log channel", true)},
		},
		{
			Name:        "set_block_scope",
			Description: "Choose how widely IP/PL tokens are scanned",
			Options: []*discordgo.ApplicationCommandOption{{
				Name:        "scope",
				Description: "alerts-line (strict) or full-text (lenient)",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Alerts line only (strict)", Value: "alerts-line"},
					{Name: "Whole message (lenient)", Value: "full-text"},
				},
			}},
		},
		{
			Name:        "link_channels",
			Description: "Relay approved leads from this channel to a destination channel",
			Options: []*discordgo.ApplicationCommandOption{
				channelOption("destination", "Destination channel", true),
				channelOption("source", "Source channel (defaults to current)", false),
			},
		},
		{
			Name:        "link_clear",
			Description: "Clear the relay link for this channel",
			Options:     []*discordgo.ApplicationCommandOption{channelOption("channel", "Channel (defaults to current)", false)},
		},
		{
			Name:        "watch_add",
			Description: "Add a channel to the watch list (current if omitted)",
			Options:     []*discordgo.ApplicationCommandOption{channelOption("channel", "Channel to watch", false)},
		},
		{
			Name:        "watch_remove",
			Description: "Remove a channel from the watch list",
			Options:     []*discordgo.ApplicationCommandOption{channelOption("channel", "Channel to stop watching", true)},
		},
		{
			Name:        "watch_list",
			Description: "List watched channels",
		},
		{
			Name:        "asin_links",
			Description: "Build product links for every marketplace region",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "asin",
					Description: "10-character ASIN",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
				{
					Name:        "tag",
					Description: "Optional affiliate tag (e.g. mytag-20)",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    false,
				},
			},
		},
		{
			Name:        "sas_link",
			Description: "Build a SellerAmp lookup link for an ASIN",
			Options: []*discordgo.ApplicationCommandOption{{
				Name:        "asin",
				Description: "10-character ASIN",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    true,
			}},
		},
		{
			Name:        "test_dm",
			Description: "Send me a test DM to verify DM delivery",
		},
		{
			Name:        "diag_last",
			Description: "Show pipeline diagnostics for the last message processed in this channel",
		},
		{
			Name:        "status",
			Description: "Bot status & configuration overview",
		},
		{
			Name:        "ping",
			Description: "Latency check",
		},
	}
}

func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID
	for _, def := range commandDefinitions() {
		if _, err := b.session.ApplicationCommandCreate(appID, "", def); err != nil {
			return err
		}
	}
	return nil
}
