package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const ocrSpaceEndpoint = "https://api.ocr.space/parse/imageurl"

// OCRSpace extracts text through the ocr.space hosted API.
type OCRSpace struct {
	apiKey   string
	language string
	endpoint string
	client   *http.Client
}

func NewOCRSpace(apiKey, language string) *OCRSpace {
	if language == "" {
		language = "eng"
	}
	return &OCRSpace{
		apiKey:   apiKey,
		language: language,
		endpoint: ocrSpaceEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (o *OCRSpace) Name() string { return "ocrspace" }

type ocrSpaceResponse struct {
	IsErroredOnProcessing bool `json:"IsErroredOnProcessing"`
	ParsedResults         []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
}

// ExtractText submits the image URL for parsing. An errored-processing
// response is treated as "no text", not a failure.
func (o *OCRSpace) ExtractText(ctx context.Context, imageURL string) (string, error) {
	form := url.Values{}
	form.Set("apikey", o.apiKey)
	form.Set("url", imageURL)
	form.Set("OCREngine", "2")
	form.Set("isOverlayRequired", "false")
	form.Set("language", o.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocrspace request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocrspace status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed ocrSpaceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("ocrspace decode: %w", err)
	}
	if parsed.IsErroredOnProcessing || len(parsed.ParsedResults) == 0 {
		return "", nil
	}
	return parsed.ParsedResults[0].ParsedText, nil
}
