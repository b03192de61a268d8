package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNotConfigured reports that no vision API credentials were provided.
var ErrNotConfigured = errors.New("vision client is not configured")

// LabelDetector runs label detection on an image reachable by URL.
type LabelDetector interface {
	DetectLabels(ctx context.Context, imageURL string) ([]Label, error)
}

// GoogleClient calls the Google Cloud Vision images:annotate REST endpoint
// with an API key.
type GoogleClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewGoogleClient(endpoint, apiKey string) *GoogleClient {
	return &GoogleClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Source struct {
		ImageURI string `json:"imageUri"`
	} `json:"source"`
}

type annotateFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type annotateResponse struct {
	Responses []struct {
		LabelAnnotations []Label `json:"labelAnnotations"`
		Error            *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

func (c *GoogleClient) DetectLabels(ctx context.Context, imageURL string) ([]Label, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	var entry annotateEntry
	entry.Image.Source.ImageURI = imageURL
	entry.Features = []annotateFeature{{Type: "LABEL_DETECTION", MaxResults: 10}}
	reqBody := annotateRequest{Requests: []annotateEntry{entry}}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode annotate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build annotate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call vision api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision api returned status %d", resp.StatusCode)
	}

	var out annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode annotate response: %w", err)
	}
	if len(out.Responses) == 0 {
		return nil, nil
	}
	if apiErr := out.Responses[0].Error; apiErr != nil {
		return nil, fmt.Errorf("vision api: %s", apiErr.Message)
	}
	return out.Responses[0].LabelAnnotations, nil
}
