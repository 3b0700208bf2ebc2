package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// analyzeRequest is the wire request both endpoints accept.
type analyzeRequest struct {
	Text string `json:"text"`
}

// SummaryClient calls the collaborator's summary endpoint and returns a single
// toxicity confidence. Outbound calls are capped by a client-side limiter so a
// burst of messages cannot hammer the collaborator.
type SummaryClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewSummaryClient constructs the basic client. rps bounds outbound request
// rate; timeout bounds each call.
func NewSummaryClient(baseURL string, timeout time.Duration, rps float64) *SummaryClient {
	return &SummaryClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}
}

var _ Analyzer = (*SummaryClient)(nil)

func (c *SummaryClient) Analyze(ctx context.Context, text string) (Summary, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Summary{}, err
	}
	var out struct {
		Toxicity float64 `json:"toxicity"`
	}
	if err := c.post(ctx, c.baseURL+"/v1/analyze", text, &out); err != nil {
		return Summary{}, err
	}
	return Summary{Toxicity: out.Toxicity}, nil
}

func (c *SummaryClient) post(ctx context.Context, url, text string, out any) error {
	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analyzer: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// StructuredClient calls the collaborator's structured endpoint for
// per-category scores. Its Analyze folds the scores back into a summary so it
// satisfies the basic capability too.
type StructuredClient struct {
	summary *SummaryClient
}

// NewStructuredClient constructs the structured client.
func NewStructuredClient(baseURL string, timeout time.Duration, rps float64) *StructuredClient {
	return &StructuredClient{summary: NewSummaryClient(baseURL, timeout, rps)}
}

var _ StructuredAnalyzer = (*StructuredClient)(nil)

func (c *StructuredClient) AnalyzeStructured(ctx context.Context, text string) (CategoryScores, error) {
	if err := c.summary.limiter.Wait(ctx); err != nil {
		return CategoryScores{}, err
	}
	var scores CategoryScores
	if err := c.summary.post(ctx, c.summary.baseURL+"/v1/analyze/structured", text, &scores); err != nil {
		return CategoryScores{}, err
	}
	return scores, nil
}

func (c *StructuredClient) Analyze(ctx context.Context, text string) (Summary, error) {
	scores, err := c.AnalyzeStructured(ctx, text)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Toxicity: scores.Max()}, nil
}
