// Package bot wires the Discord gateway to the lead pipeline: message
// events feed the processor, slash commands mutate settings through the
// store.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/bgrierson/lead-filter-bot/internal/engine"
	"github.com/bgrierson/lead-filter-bot/internal/models"
	"github.com/bgrierson/lead-filter-bot/internal/notifier"
	"github.com/bgrierson/lead-filter-bot/internal/validator"
)

// processTimeout bounds one message's trip through the pipeline, covering
// OCR and the multi-market price lookups.
const processTimeout = 2 * time.Minute

// Store is the full settings/link surface the command handlers need; it is
// a superset of what the engine reads.
type Store interface {
	engine.SettingsStore
	SetSettings(ctx context.Context, guildID string, settings models.GuildSettings) error
	SetLink(ctx context.Context, sourceChannelID, destChannelID string) error
	ClearLink(ctx context.Context, sourceChannelID string) error
	ListLinks(ctx context.Context) (map[string]string, error)
}

type Bot struct {
	session   *discordgo.Session
	processor *engine.LeadProcessor
	store     Store
	watch     *WatchList
	messenger notifier.Messenger
	validate  *validator.Validator

	defaultMinROI    float64
	defaultMinProfit float64
	affiliateTag     string
}

type Deps struct {
	Processor        *engine.LeadProcessor
	Store            Store
	Watch            *WatchList
	Messenger        notifier.Messenger
	DefaultMinROI    float64
	DefaultMinProfit float64
	AffiliateTag     string
}

// NewSession creates a gateway session with the intents the pipeline
// needs. The session stays closed until Bot.Start.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
	return session, nil
}

// New attaches the bot's handlers to an existing session.
func New(session *discordgo.Session, deps Deps) *Bot {
	b := &Bot{
		session:          session,
		processor:        deps.Processor,
		store:            deps.Store,
		watch:            deps.Watch,
		messenger:        deps.Messenger,
		validate:         validator.New(),
		defaultMinROI:    deps.DefaultMinROI,
		defaultMinProfit: deps.DefaultMinProfit,
		affiliateTag:     deps.AffiliateTag,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)
	return b
}

// Start opens the gateway connection and registers the slash commands.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	if err := b.registerCommands(); err != nil {
		slog.Error("Command registration failed", "error", err)
	}
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("Logged in", "user", r.User.Username, "id", r.User.ID, "guilds", len(r.Guilds))
	if watched := b.watch.List(); len(watched) > 0 {
		slog.Info("Watching channels", "channels", watched)
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		return // DMs carry no leads
	}
	if !b.watch.Contains(m.ChannelID) {
		return
	}

	msg := inboundFromDiscord(s, m)
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	res := b.processor.Process(ctx, msg)
	slog.Debug("Processed message",
		"channel", m.ChannelID,
		"approved", res.Verdict.Approved,
		"reason", res.Verdict.Reason,
		"asins", len(res.Attributes.ASINs))
}

// inboundFromDiscord reduces a gateway message to the pipeline's shape.
func inboundFromDiscord(s *discordgo.Session, m *discordgo.MessageCreate) models.InboundMessage {
	msg := models.InboundMessage{
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		ChannelName: m.ChannelID,
		MessageID:   m.ID,
		AuthorID:    m.Author.ID,
		Content:     m.Content,
		JumpURL:     fmt.Sprintf("https://discord.com/channels/%s/%s/%s", m.GuildID, m.ChannelID, m.ID),
	}
	if ch, err := s.State.Channel(m.ChannelID); err == nil && ch.Name != "" {
		msg.ChannelName = ch.Name
	}

	for _, e := range m.Embeds {
		embed := models.Embed{
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
		}
		if e.Author != nil {
			embed.AuthorName = e.Author.Name
		}
		if e.Footer != nil {
			embed.FooterText = e.Footer.Text
		}
		if e.Image != nil {
			embed.ImageURL = e.Image.URL
		}
		if e.Thumbnail != nil {
			embed.ThumbnailURL = e.Thumbnail.URL
		}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, models.EmbedField{Name: f.Name, Value: f.Value})
		}
		msg.Embeds = append(msg.Embeds, embed)
	}

	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, models.Attachment{
			URL:         a.URL,
			Filename:    a.Filename,
			ContentType: a.ContentType,
		})
	}
	return msg
}

// currentSettings loads a guild's settings for mutation, starting from the
// process defaults when nothing is stored yet.
func (b *Bot) currentSettings(ctx context.Context, guildID string) models.GuildSettings {
	stored, err := b.store.GetSettings(ctx, guildID)
	if err != nil || stored == nil {
		settings := models.DefaultSettings(b.defaultMinROI)
		settings.MinProfit = b.defaultMinProfit
		return settings
	}
	return *stored
}
