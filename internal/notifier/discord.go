// Package notifier formats approved-lead summaries and delivers them to
// the configured sinks: direct message first, originating channel on DM
// failure, plus best-effort relay and log-channel copies.
package notifier

import (
	"github.com/bwmarrin/discordgo"
)

// Messenger is the thin slice of the chat platform the dispatcher needs.
// *discordgo.Session satisfies it through DiscordMessenger; tests use a
// mock.
type Messenger interface {
	SendDM(userID, content string) error
	SendChannel(channelID, content string) error
	SendChannelEmbed(channelID string, embed *discordgo.MessageEmbed) error
}

// DiscordMessenger adapts a discordgo session to the Messenger interface.
type DiscordMessenger struct {
	session *discordgo.Session
}

func NewDiscordMessenger(session *discordgo.Session) *DiscordMessenger {
	return &DiscordMessenger{session: session}
}

func (m *DiscordMessenger) SendDM(userID, content string) error {
	channel, err := m.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = m.session.ChannelMessageSend(channel.ID, content)
	return err
}

func (m *DiscordMessenger) SendChannel(channelID, content string) error {
	_, err := m.session.ChannelMessageSend(channelID, content)
	return err
}

func (m *DiscordMessenger) SendChannelEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	_, err := m.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}
