package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/bgrierson/lead-filter-bot/internal/models"
)

type sentMessage struct {
	dest    string
	content string
}

type mockMessenger struct {
	dmErr      error
	channelErr error

	dms      []sentMessage
	channels []sentMessage
	embeds   []sentMessage
}

func (m *mockMessenger) SendDM(userID, content string) error {
	if m.dmErr != nil {
		return m.dmErr
	}
	m.dms = append(m.dms, sentMessage{userID, content})
	return nil
}

func (m *mockMessenger) SendChannel(channelID, content string) error {
	if m.channelErr != nil {
		return m.channelErr
	}
	m.channels = append(m.channels, sentMessage{channelID, content})
	return nil
}

func (m *mockMessenger) SendChannelEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	m.embeds = append(m.embeds, sentMessage{channelID, embed.Title})
	return nil
}

func approvedLead() models.ApprovedLead {
	return models.ApprovedLead{
		GuildID:        "g1",
		ChannelID:      "c1",
		ChannelName:    "uk-deals",
		MessageJumpURL: "https://discord.com/channels/g1/c1/m1",
		ASINs:          []string{"B0C1D2E3F4"},
		Cost:           fp(10),
		SalePrice:      fp(20),
		ROIPercent:     fp(100),
		Profit:         fp(10),
		DMEnabled:      true,
	}
}

func TestNotifyApprovedDM(t *testing.T) {
	m := &mockMessenger{}
	d := NewDispatcher(m, DispatcherConfig{ForwardUserID: "u1", FallbackToChannel: true, PreferredMarket: "UK"})

	if err := d.NotifyApproved(context.Background(), approvedLead()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.dms) != 1 {
		t.Fatalf("dms = %d, want 1", len(m.dms))
	}
	dm := m.dms[0]
	if dm.dest != "u1" {
		t.Errorf("dm dest = %q, want u1", dm.dest)
	}
	if !strings.HasPrefix(dm.content, "**Approved Lead**") {
		t.Errorf("dm content %q missing the header", dm.content)
	}
	for _, want := range []string{"ROI: 100.00%", "Profit: 10.00", "B0C1D2E3F4", "amazon.co.uk", "sas.selleramp.com", "Jump:"} {
		if !strings.Contains(dm.content, want) {
			t.Errorf("dm content missing %q:\n%s", want, dm.content)
		}
	}
	if len(m.channels) != 0 {
		t.Errorf("channel sends = %d, want 0", len(m.channels))
	}
}

func TestNotifyApprovedDMFailureFallsBack(t *testing.T) {
	m := &mockMessenger{dmErr: errors.New("cannot DM user")}
	d := NewDispatcher(m, DispatcherConfig{ForwardUserID: "u1", FallbackToChannel: true})

	if err := d.NotifyApproved(context.Background(), approvedLead()); err != nil {
		t.Fatalf("fallback delivery should succeed, got: %v", err)
	}

	if len(m.channels) != 1 {
		t.Fatalf("channel sends = %d, want 1", len(m.channels))
	}
	sent := m.channels[0]
	if sent.dest != "c1" {
		t.Errorf("fallback dest = %q, want the originating channel", sent.dest)
	}
	if !strings.HasPrefix(sent.content, "Approved lead →") {
		t.Errorf("fallback content %q missing the header", sent.content)
	}
}

func TestNotifyApprovedDMFailureNoFallback(t *testing.T) {
	m := &mockMessenger{dmErr: errors.New("cannot DM user")}
	d := NewDispatcher(m, DispatcherConfig{ForwardUserID: "u1", FallbackToChannel: false})

	err := d.NotifyApproved(context.Background(), approvedLead())
	if !errors.Is(err, models.ErrDeliveryFailed) {
		t.Errorf("error = %v, want ErrDeliveryFailed", err)
	}
	if len(m.channels) != 0 {
		t.Errorf("channel sends = %d, want 0", len(m.channels))
	}
}

func TestNotifyApprovedChannelWhenDMDisabled(t *testing.T) {
	m := &mockMessenger{}
	d := NewDispatcher(m, DispatcherConfig{ForwardUserID: "u1"})

	lead := approvedLead()
	lead.DMEnabled = false

	if err := d.NotifyApproved(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.dms) != 0 {
		t.Errorf("dms = %d, want 0", len(m.dms))
	}
	if len(m.channels) != 1 {
		t.Errorf("channel sends = %d, want 1", len(m.channels))
	}
}

func TestNotifyApprovedRelayAndLogAreBestEffort(t *testing.T) {
	m := &mockMessenger{}
	d := NewDispatcher(m, DispatcherConfig{ForwardUserID: "u1"})

	lead := approvedLead()
	lead.RelayChannelID = "relay-1"
	lead.LogChannelID = "log-1"

	if err := d.NotifyApproved(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.embeds) != 1 || m.embeds[0].dest != "relay-1" {
		t.Errorf("embeds = %v, want one relay to relay-1", m.embeds)
	}

	var logged bool
	for _, sent := range m.channels {
		if sent.dest == "log-1" && strings.Contains(sent.content, "✅ Approved in <#c1>") {
			logged = true
		}
	}
	if !logged {
		t.Errorf("channel sends %v missing the log notice", m.channels)
	}
}

func TestLogEvent(t *testing.T) {
	m := &mockMessenger{}
	d := NewDispatcher(m, DispatcherConfig{})

	d.LogEvent(context.Background(), "", "ignored without a channel")
	if len(m.channels) != 0 {
		t.Fatalf("channel sends = %d, want 0 for an empty channel id", len(m.channels))
	}

	d.LogEvent(context.Background(), "log-1", "notice")
	if len(m.channels) != 1 || m.channels[0].content != "notice" {
		t.Errorf("channel sends = %v, want the notice in log-1", m.channels)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	long := strings.Repeat("x", 2500)
	if got := truncate(long, maxMessageRunes); len([]rune(got)) != maxMessageRunes {
		t.Errorf("truncate len = %d, want %d", len([]rune(got)), maxMessageRunes)
	}
}
