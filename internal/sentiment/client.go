// Package sentiment calls the review-analysis side service and maps its
// answer onto the portal's three labels. The service is best-effort: when
// it is down or slow, callers fall back to a rating-derived label so review
// submission never blocks on it.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

const (
	LabelPositive = "POSITIVE"
	LabelNeutral  = "NEUTRAL"
	LabelNegative = "NEGATIVE"
)

// Client talks to the sentiment HTTP endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given base URL. An empty URL yields a
// disabled client whose Analyze always fails, which pushes every caller
// onto the rating fallback.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Stars uint8   `json:"stars"`
}

// Analyze sends the review text for classification.
func (c *Client) Analyze(ctx context.Context, text string) (*model.Sentiment, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("sentiment: service not configured")
	}
	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("sentiment: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sentiment: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sentiment: call service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sentiment: service returned %d", resp.StatusCode)
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("sentiment: decode response: %w", err)
	}
	label := strings.ToUpper(strings.TrimSpace(out.Label))
	switch label {
	case LabelPositive, LabelNeutral, LabelNegative:
	default:
		return nil, fmt.Errorf("sentiment: unknown label %q", out.Label)
	}
	return &model.Sentiment{Label: label, Score: out.Score, Stars: out.Stars}, nil
}

// FromRating derives a label from the reviewer's own star rating. Used
// whenever the analysis service cannot be reached.
func FromRating(rating uint8) *model.Sentiment {
	label := LabelNeutral
	switch {
	case rating >= 4:
		label = LabelPositive
	case rating <= 2:
		label = LabelNegative
	}
	return &model.Sentiment{Label: label, Score: 0, Stars: rating}
}
