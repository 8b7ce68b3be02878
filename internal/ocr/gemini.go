package ocr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini extracts text by sending the image to a Gemini vision model with
// a transcription prompt.
type Gemini struct {
	model  *genai.GenerativeModel
	client *http.Client
}

func NewGemini(ctx context.Context, apiKey, modelID string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("no gemini api key")
	}
	if modelID == "" {
		modelID = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelID)
	model.SetTemperature(0) // transcription, not generation

	return &Gemini{
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) ExtractText(ctx context.Context, imageURL string) (string, error) {
	data, format, err := g.fetchImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	resp, err := g.model.GenerateContent(ctx,
		genai.ImageData(format, data),
		genai.Text("Transcribe every piece of text visible in this image, preserving line breaks. Output only the transcription."),
	)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

func (g *Gemini) fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch image status: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, "", err
	}

	format := "jpeg"
	switch {
	case strings.Contains(resp.Header.Get("Content-Type"), "png"):
		format = "png"
	case strings.Contains(resp.Header.Get("Content-Type"), "webp"):
		format = "webp"
	}
	return data, format, nil
}
