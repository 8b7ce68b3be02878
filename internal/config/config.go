package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bgrierson/lead-filter-bot/internal/util"
	"github.com/bgrierson/lead-filter-bot/internal/validator"
)

type Config struct {
	DiscordToken  string `validate:"required"`
	ForwardUserID string

	MinROI          float64 `validate:"gte=0,lte=1000"`
	MinProfit       float64 // negative disables the profit rule
	BlockedTokens   []string
	BlockScanScope  string `validate:"oneof=alerts-line full-text"`
	WatchChannelIDs []string

	FallbackToChannelOnDMFail bool
	AffiliateTag              string

	OCRProvider    string
	OCRSpaceAPIKey string
	OCRLang        string
	GeminiAPIKey   string
	GeminiModelID  string

	PriceAPIBaseURL     string
	PriceAPIKey         string
	PreferredMarket     string
	PriceRequestsPerMin int
	PriceTimeout        time.Duration
	PageTitleFallback   bool

	ProjectID string // Firestore; empty selects the in-memory store
	Port      string
}

// Load reads configuration from the environment, after a best-effort .env
// load. Missing optional services degrade with a warning; malformed values
// are startup errors.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using process environment")
	}

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN environment variable is required but not set")
	}

	forwardUserID := os.Getenv("FORWARD_USER_ID")
	if forwardUserID == "" {
		slog.Warn("FORWARD_USER_ID not set, approved leads will be posted to the source channel only")
	}

	minROI, err := floatEnv("MIN_ROI", 20)
	if err != nil {
		return nil, err
	}
	minProfit, err := floatEnv("MIN_PROFIT", -1)
	if err != nil {
		return nil, err
	}

	blockedTokens := util.SplitCSV(os.Getenv("BLOCK_ALERT_KEYWORDS"))
	if len(blockedTokens) == 0 {
		blockedTokens = []string{"IP", "PL"}
	}

	scope := strings.TrimSpace(os.Getenv("BLOCK_SCAN_SCOPE"))
	if scope == "" {
		scope = "alerts-line"
	}

	priceRPM, err := intEnv("PRICE_API_REQUESTS_PER_MIN", 20)
	if err != nil {
		return nil, err
	}
	priceTimeout, err := durationEnv("PRICE_API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		slog.Info("Defaulting to port", "port", port)
	}

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		slog.Warn("GOOGLE_CLOUD_PROJECT not set, settings will not survive restarts")
	}

	geminiModel := os.Getenv("GEMINI_MODEL")

	cfg := &Config{
		DiscordToken:              token,
		ForwardUserID:             forwardUserID,
		MinROI:                    minROI,
		MinProfit:                 minProfit,
		BlockedTokens:             blockedTokens,
		BlockScanScope:            scope,
		WatchChannelIDs:           util.SplitCSV(os.Getenv("WATCH_CHANNEL_IDS")),
		FallbackToChannelOnDMFail: boolEnv("FALLBACK_TO_CHANNEL_ON_DM_FAIL", true),
		AffiliateTag:              os.Getenv("AFFILIATE_TAG"),
		OCRProvider:               strings.ToLower(strings.TrimSpace(os.Getenv("OCR_PROVIDER"))),
		OCRSpaceAPIKey:            strings.TrimSpace(os.Getenv("OCRSPACE_API_KEY")),
		OCRLang:                   os.Getenv("OCR_LANG"),
		GeminiAPIKey:              os.Getenv("GEMINI_API_KEY"),
		GeminiModelID:             geminiModel,
		PriceAPIBaseURL:           os.Getenv("PRICE_API_BASE_URL"),
		PriceAPIKey:               os.Getenv("PRICE_API_KEY"),
		PreferredMarket:           os.Getenv("PREFERRED_MARKET"),
		PriceRequestsPerMin:       priceRPM,
		PriceTimeout:              priceTimeout,
		PageTitleFallback:         boolEnv("PRICE_PAGE_TITLE_FALLBACK", false),
		ProjectID:                 projectID,
		Port:                      port,
	}

	if err := validator.New().ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return parsed, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return parsed, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return parsed, nil
}

func boolEnv(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
