package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bgrierson/lead-filter-bot/internal/bot"
	"github.com/bgrierson/lead-filter-bot/internal/config"
	"github.com/bgrierson/lead-filter-bot/internal/dedup"
	"github.com/bgrierson/lead-filter-bot/internal/engine"
	"github.com/bgrierson/lead-filter-bot/internal/notifier"
	"github.com/bgrierson/lead-filter-bot/internal/ocr"
	"github.com/bgrierson/lead-filter-bot/internal/oracle"
	"github.com/bgrierson/lead-filter-bot/internal/storage"
)

func main() {
	slog.Info("Starting lead filter bot...")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		slog.Error("Critical error initializing settings store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		slog.Error("Critical error creating Discord session", "error", err)
		os.Exit(1)
	}

	messenger := notifier.NewDiscordMessenger(session)
	dispatcher := notifier.NewDispatcher(messenger, notifier.DispatcherConfig{
		ForwardUserID:     cfg.ForwardUserID,
		FallbackToChannel: cfg.FallbackToChannelOnDMFail,
		AffiliateTag:      cfg.AffiliateTag,
		PreferredMarket:   cfg.PreferredMarket,
	})

	var priceOracle engine.PriceOracle
	if c := oracle.New(oracle.Config{
		BaseURL:           cfg.PriceAPIBaseURL,
		APIKey:            cfg.PriceAPIKey,
		Timeout:           cfg.PriceTimeout,
		RequestsPerMin:    cfg.PriceRequestsPerMin,
		PageTitleFallback: cfg.PageTitleFallback,
	}); c != nil {
		priceOracle = c
	} else {
		slog.Warn("No price API key configured, remote price lookup disabled")
	}

	var textExtractor engine.TextExtractor
	if t := ocr.FromConfig(ctx, ocr.Config{
		Provider:       cfg.OCRProvider,
		OCRSpaceAPIKey: cfg.OCRSpaceAPIKey,
		OCRSpaceLang:   cfg.OCRLang,
		GeminiAPIKey:   cfg.GeminiAPIKey,
		GeminiModelID:  cfg.GeminiModelID,
	}); t != nil {
		textExtractor = t
	}

	processor := engine.New(store, priceOracle, textExtractor, dedup.NewTracker(), dispatcher, engine.Options{
		DefaultMinROI:    cfg.MinROI,
		DefaultMinProfit: cfg.MinProfit,
		BlockedTokens:    cfg.BlockedTokens,
		DefaultScope:     cfg.BlockScanScope,
		PreferredMarket:  cfg.PreferredMarket,
	})

	b := bot.New(session, bot.Deps{
		Processor:        processor,
		Store:            store,
		Watch:            bot.NewWatchList(cfg.WatchChannelIDs),
		Messenger:        messenger,
		DefaultMinROI:    cfg.MinROI,
		DefaultMinProfit: cfg.MinProfit,
		AffiliateTag:     cfg.AffiliateTag,
	})

	if err := b.Start(); err != nil {
		slog.Error("Critical error opening Discord connection", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status":"ok"}`)
	})
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Health endpoint listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Health server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	slog.Info("Received signal, shutting down gracefully...", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	if err := b.Stop(); err != nil {
		slog.Error("Discord session close error", "error", err)
	}
	slog.Info("Bot stopped.")
}

// buildStore picks Firestore when a project is configured, otherwise the
// in-memory fallback so the bot still runs without persistence.
func buildStore(ctx context.Context, cfg *config.Config) (bot.Store, func(), error) {
	if cfg.ProjectID == "" {
		slog.Info("Using in-memory settings store")
		return storage.NewMemory(), func() {}, nil
	}
	fs, err := storage.NewFirestore(ctx, cfg.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() {
		if err := fs.Close(); err != nil {
			slog.Warn("Firestore close failed", "error", err)
		}
	}, nil
}
