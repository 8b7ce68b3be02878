// Package ocr provides image-to-text adapters used when a lead post
// carries its data only in screenshots.
package ocr

import (
	"context"
	"log/slog"
)

// TextExtractor converts an image URL to plain text. Implementations
// return "" (not an error) when the image simply has no text.
type TextExtractor interface {
	ExtractText(ctx context.Context, imageURL string) (string, error)
	Name() string
}

// Config selects and configures the provider.
type Config struct {
	Provider        string // "ocrspace", "gemini", or "" (disabled)
	OCRSpaceAPIKey  string
	OCRSpaceLang    string
	GeminiAPIKey    string
	GeminiModelID   string
}

// FromConfig builds the configured extractor, or nil when OCR is disabled
// or misconfigured. A nil extractor disables the OCR fallback entirely.
func FromConfig(ctx context.Context, cfg Config) TextExtractor {
	switch cfg.Provider {
	case "ocrspace":
		if cfg.OCRSpaceAPIKey == "" {
			slog.Warn("OCR provider ocrspace selected but no API key set, OCR disabled")
			return nil
		}
		return NewOCRSpace(cfg.OCRSpaceAPIKey, cfg.OCRSpaceLang)
	case "gemini":
		client, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			slog.Warn("Gemini OCR unavailable, OCR disabled", "error", err)
			return nil
		}
		return client
	case "":
		return nil
	default:
		slog.Warn("Unknown OCR provider, OCR disabled", "provider", cfg.Provider)
		return nil
	}
}
