package bot

import (
	"reflect"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestWatchListEmptyWatchesEverything(t *testing.T) {
	w := NewWatchList(nil)

	if !w.Contains("any-channel") {
		t.Error("empty watch list should match every channel")
	}
}

func TestWatchListSeeded(t *testing.T) {
	w := NewWatchList([]string{"c1", "c2"})

	if !w.Contains("c1") || !w.Contains("c2") {
		t.Error("seeded channels should match")
	}
	if w.Contains("c3") {
		t.Error("unlisted channel should not match on a non-empty list")
	}
}

func TestWatchListMutation(t *testing.T) {
	w := NewWatchList([]string{"c1"})

	w.Add("c2")
	if !w.Contains("c2") {
		t.Error("added channel should match")
	}

	w.Remove("c1")
	if w.Contains("c1") {
		t.Error("removed channel should not match")
	}

	if got, want := w.List(), []string{"c2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	// Removing the last entry flips the list back to watch-everything.
	w.Remove("c2")
	if !w.Contains("anything") {
		t.Error("emptied watch list should match every channel again")
	}
}

func TestInboundFromDiscord(t *testing.T) {
	session, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Author:    &discordgo.User{ID: "author-1"},
		Content:   "Buy: £10",
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Lead",
			Description: "Sell: £20",
			Author:      &discordgo.MessageEmbedAuthor{Name: "dealbot"},
			Footer:      &discordgo.MessageEmbedFooter{Text: "footer"},
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Eligibility", Value: "Yes"},
			},
		}},
		Attachments: []*discordgo.MessageAttachment{{
			URL:         "https://cdn.example.com/a.png",
			Filename:    "a.png",
			ContentType: "image/png",
		}},
	}}

	got := inboundFromDiscord(session, m)

	if got.GuildID != "g1" || got.ChannelID != "c1" || got.MessageID != "m1" {
		t.Errorf("ids = (%q, %q, %q)", got.GuildID, got.ChannelID, got.MessageID)
	}
	if got.AuthorID != "author-1" {
		t.Errorf("AuthorID = %q", got.AuthorID)
	}
	if got.JumpURL != "https://discord.com/channels/g1/c1/m1" {
		t.Errorf("JumpURL = %q", got.JumpURL)
	}
	// No state cached for the channel, so the id doubles as the name.
	if got.ChannelName != "c1" {
		t.Errorf("ChannelName = %q, want the channel id fallback", got.ChannelName)
	}

	if len(got.Embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(got.Embeds))
	}
	e := got.Embeds[0]
	if e.Title != "Lead" || e.Description != "Sell: £20" || e.AuthorName != "dealbot" || e.FooterText != "footer" {
		t.Errorf("embed = %+v", e)
	}
	if len(e.Fields) != 1 || e.Fields[0].Name != "Eligibility" || e.Fields[0].Value != "Yes" {
		t.Errorf("embed fields = %v", e.Fields)
	}

	if len(got.Attachments) != 1 || got.Attachments[0].ContentType != "image/png" {
		t.Errorf("attachments = %v", got.Attachments)
	}
}
