package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/bgrierson/lead-filter-bot/internal/dedup"
	"github.com/bgrierson/lead-filter-bot/internal/models"
)

type mockStore struct {
	settings    *models.GuildSettings
	settingsErr error
	link        string
	linkErr     error
}

func (m *mockStore) GetSettings(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	return m.settings, m.settingsErr
}

func (m *mockStore) GetLink(ctx context.Context, sourceChannelID string) (string, error) {
	return m.link, m.linkErr
}

type mockOracle struct {
	quote       models.PriceQuote
	lookupASINs []string
}

func (m *mockOracle) Lookup(ctx context.Context, asin, preferredMarket string) models.PriceQuote {
	m.lookupASINs = append(m.lookupASINs, asin)
	return m.quote
}

type mockOCR struct {
	mu    sync.Mutex
	text  string
	err   error
	calls []string
}

func (m *mockOCR) ExtractText(ctx context.Context, imageURL string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, imageURL)
	m.mu.Unlock()
	return m.text, m.err
}

type mockNotifier struct {
	leads     []models.ApprovedLead
	notifyErr error
	logs      []string
}

func (m *mockNotifier) NotifyApproved(ctx context.Context, lead models.ApprovedLead) error {
	if m.notifyErr != nil {
		return m.notifyErr
	}
	m.leads = append(m.leads, lead)
	return nil
}

func (m *mockNotifier) LogEvent(ctx context.Context, logChannelID, text string) {
	m.logs = append(m.logs, text)
}

func settingsWith(minROI, minProfit float64) *models.GuildSettings {
	s := models.DefaultSettings(minROI)
	s.MinProfit = minProfit
	return &s
}

func newTestProcessor(store *mockStore, oracle PriceOracle, ocr TextExtractor, notifier *mockNotifier) *LeadProcessor {
	return New(store, oracle, ocr, dedup.NewTracker(), notifier, Options{
		DefaultMinROI:    20,
		DefaultMinProfit: -1,
	})
}

func msgWithContent(content string) models.InboundMessage {
	return models.InboundMessage{
		GuildID:   "g1",
		ChannelID: "c1",
		MessageID: "m1",
		Content:   content,
		JumpURL:   "https://discord.com/channels/g1/c1/m1",
	}
}

func TestProcessApprovedLead(t *testing.T) {
	store := &mockStore{settings: settingsWith(20, 5), link: "relay-chan"}
	notifier := &mockNotifier{}
	p := newTestProcessor(store, nil, nil, notifier)

	res := p.Process(context.Background(), msgWithContent(
		"ASIN: B0C1D2E3F4\nBuy: £10\nSell: £20\nEligibility: Yes"))

	if !res.Verdict.Approved {
		t.Fatalf("verdict = %+v, want approved", res.Verdict)
	}
	if res.Profit == nil || *res.Profit != 10 {
		t.Errorf("profit = %v, want 10", res.Profit)
	}
	if res.ROIPercent == nil || *res.ROIPercent != 100 {
		t.Errorf("roi = %v, want 100", res.ROIPercent)
	}
	if !res.Notified {
		t.Error("result not marked notified")
	}
	if len(notifier.leads) != 1 {
		t.Fatalf("delivered leads = %d, want 1", len(notifier.leads))
	}

	lead := notifier.leads[0]
	if len(lead.ASINs) != 1 || lead.ASINs[0] != "B0C1D2E3F4" {
		t.Errorf("lead ASINs = %v, want [B0C1D2E3F4]", lead.ASINs)
	}
	if lead.RelayChannelID != "relay-chan" {
		t.Errorf("relay channel = %q, want relay-chan", lead.RelayChannelID)
	}
	if lead.MessageJumpURL == "" {
		t.Error("lead missing jump URL")
	}
}

func TestProcessBlockedLead(t *testing.T) {
	store := &mockStore{settings: settingsWith(20, 5)}
	notifier := &mockNotifier{}
	p := newTestProcessor(store, nil, nil, notifier)

	res := p.Process(context.Background(), msgWithContent(
		"ASIN: B0C1D2E3F4\nBuy: £10\nSell: £20\nEligibility: Yes\nAlerts: IP"))

	if res.Verdict.Approved {
		t.Fatal("blocked lead must not approve")
	}
	if res.Verdict.Reason != "Blocked (IP/PL/IP Alert)" {
		t.Errorf("reason = %q, want the block reason", res.Verdict.Reason)
	}
	if len(notifier.leads) != 0 {
		t.Errorf("delivered leads = %d, want 0", len(notifier.leads))
	}
}

func TestProcessOracleFillsMissingSale(t *testing.T) {
	store := &mockStore{settings: settingsWith(20, -1)}
	oracle := &mockOracle{quote: models.PriceQuote{
		Price:        fp(20),
		SourceMarket: "UK",
		Diagnostic:   "UK: price 20.00; ",
	}}
	notifier := &mockNotifier{}
	p := newTestProcessor(store, oracle, nil, notifier)

	res := p.Process(context.Background(), msgWithContent(
		"ASIN: B0C1D2E3F4\nBuy: £10\nEligibility: Yes"))

	if len(oracle.lookupASINs) != 1 || oracle.lookupASINs[0] != "B0C1D2E3F4" {
		t.Fatalf("oracle lookups = %v, want [B0C1D2E3F4]", oracle.lookupASINs)
	}
	if !res.Verdict.Approved {
		t.Fatalf("verdict = %+v, want approved after oracle fill", res.Verdict)
	}
	if res.ROIPercent == nil || *res.ROIPercent != 100 {
		t.Errorf("roi = %v, want 100", res.ROIPercent)
	}
	if !strings.Contains(res.Diagnostic, "UK: price 20.00") {
		t.Errorf("diagnostic %q missing the oracle note", res.Diagnostic)
	}
}

func TestProcessOracleExhaustionDegrades(t *testing.T) {
	store := &mockStore{settings: settingsWith(20, -1)}
	oracle := &mockOracle{quote: models.PriceQuote{Diagnostic: "US: no price; "}}
	notifier := &mockNotifier{}
	p := newTestProcessor(store, oracle, nil, notifier)

	res := p.Process(context.Background(), msgWithContent(
		"ASIN: B0C1D2E3F4\nBuy: £10\nEligibility: Yes"))

	if res.Verdict.Approved {
		t.Fatal("lead without a sale price must not approve")
	}
	if res.Verdict.Reason != "ROI missing" {
		t.Errorf("reason = %q, want ROI missing", res.Verdict.Reason)
	}
	if len(notifier.leads) != 0 {
		t.Errorf("delivered leads = %d, want 0", len(notifier.leads))
	}
}

func TestProcessOCRFallbackMergesMissingOnly(t *testing.T) {
	store := &mockStore{settings: settingsWith(20, -1)}
	ocr := &mockOCR{text: "ASIN: B0C1D2E3F4\nBuy: £99\nSell: £20\nEligibility: Yes"}
	notifier := &mockNotifier{}
	p := newTestProcessor(store, nil, ocr, notifier)

	msg := msgWithContent("Buy: £10")
	msg.Attachments = []models.Attachment{
		{URL: "https://cdn.example.com/a.png", ContentType: "image/png"},
	}

	res := p.Process(context.Background(), msg)

	if len(ocr.calls) != 1 {
		t.Fatalf("OCR calls = %d, want 1", len(ocr.calls))
	}
	// Text-derived cost must survive; OCR only fills the gaps.
	if res.Attributes.Cost == nil || *res.Attributes.Cost != 10 {
		t.Errorf("cost = %v, want 10 from the message text", res.Attributes.Cost)
	}
	if res.Attributes.SalePrice == nil || *res.Attributes.SalePrice != 20 {
		t.Errorf("sale = %v, want 20 from OCR", res.Attributes.SalePrice)
	}
	if res.Attributes.PrimaryASIN() != "B0C1D2E3F4" {
		t.Errorf("asin = %q, want B0C1D2E3F4 from OCR", res.Attributes.PrimaryASIN())
	}
	if !res.Verdict.Approved {
		t.Errorf("verdict = %+v, want approved", res.Verdict)
	}
}

func TestProcessOCRCapsImages(t *testing.T) {
	store := &mockStore{settings: settingsWith(20, -1)}
	ocr := &mockOCR{}
	notifier := &mockNotifier{}
	p := newTestProcessor(store, nil, ocr, notifier)

	msg := msgWithContent("anything here?")
	for _, u := range []string{"a", "b", "c", "d", "e"} {
		msg.Attachments = append(msg.Attachments, models.Attachment{
			URL: "https://cdn.example.com/" + u + ".png", ContentType: "image/png",
		})
	}
	msg.Attachments = append(msg.Attachments, models.Attachment{
		URL: "https://cdn.example.com/doc.pdf", ContentType: "application/pdf",
	})

	p.Process(context.Background(), msg)

	if len(ocr.calls) != 3 {
		t.Errorf("OCR calls = %d, want 3 (capped, images only)", len(ocr.calls))
	}
}

func TestProcessDedupeSuppression(t *testing.T) {
	store := &mockStore{settings: settingsWith(20, -1)}
	notifier := &mockNotifier{}
	p := newTestProcessor(store, nil, nil, notifier)

	msg := msgWithContent("ASIN: B0C1D2E3F4\nBuy: £10\nSell: £20\nEligibility: Yes")

	first := p.Process(context.Background(), msg)
	if !first.Notified {
		t.Fatal("first sighting should notify")
	}

	second := p.Process(context.Background(), msg)
	if second.Notified {
		t.Error("repeat sighting inside the window should be suppressed")
	}
	if len(notifier.leads) != 1 {
		t.Errorf("delivered leads = %d, want 1", len(notifier.leads))
	}

	var sawSkip bool
	for _, line := range notifier.logs {
		if strings.Contains(line, "Dedupe skip") {
			sawSkip = true
		}
	}
	if !sawSkip {
		t.Errorf("logs %v missing the dedupe-skip notice", notifier.logs)
	}
}

func TestProcessSettingsOutageUsesDefaults(t *testing.T) {
	store := &mockStore{settingsErr: errors.New("backend down")}
	notifier := &mockNotifier{}
	p := newTestProcessor(store, nil, nil, notifier)

	// Defaults reject on missing eligibility; the pipeline must still run.
	res := p.Process(context.Background(), msgWithContent(
		"ASIN: B0C1D2E3F4\nBuy: £10\nSell: £20"))

	if res.Verdict.Approved {
		t.Error("defaults require explicit eligibility")
	}
	if res.Verdict.Reason != "Eligibility not found" {
		t.Errorf("reason = %q, want Eligibility not found", res.Verdict.Reason)
	}
}

func TestProcessDeliveryFailureRecorded(t *testing.T) {
	store := &mockStore{settings: settingsWith(20, -1)}
	notifier := &mockNotifier{notifyErr: models.ErrDeliveryFailed}
	p := newTestProcessor(store, nil, nil, notifier)

	res := p.Process(context.Background(), msgWithContent(
		"ASIN: B0C1D2E3F4\nBuy: £10\nSell: £20\nEligibility: Yes"))

	if !res.Verdict.Approved {
		t.Fatalf("verdict = %+v, want approved", res.Verdict)
	}
	if res.Notified {
		t.Error("failed delivery must not mark the result notified")
	}
	if !strings.Contains(res.Diagnostic, "delivery: failed") {
		t.Errorf("diagnostic %q missing the delivery failure", res.Diagnostic)
	}
}

func TestProcessRecordsLastResult(t *testing.T) {
	store := &mockStore{settings: settingsWith(20, -1)}
	notifier := &mockNotifier{}
	p := newTestProcessor(store, nil, nil, notifier)

	if _, ok := p.LastResult("c1"); ok {
		t.Fatal("no result should exist before processing")
	}

	p.Process(context.Background(), msgWithContent("nothing useful"))

	res, ok := p.LastResult("c1")
	if !ok {
		t.Fatal("expected a recorded result for the channel")
	}
	if !strings.Contains(res.Diagnostic, "decision:") {
		t.Errorf("diagnostic %q missing the decision note", res.Diagnostic)
	}
}
