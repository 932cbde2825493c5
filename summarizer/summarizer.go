package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	requestTimeout = 5 * time.Second
	probeTimeout   = time.Second

	// Article text beyond this many bytes is cut before prompting.
	maxPromptContent = 8000

	maxTokens   = 500
	temperature = 0.3
)

// Summary holds the analysis of one article.
type Summary struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Sentiment float64  `json:"sentiment"`
	Keywords  []string `json:"keywords"`
	Model     string   `json:"model"`
}

// Summarizer produces a Summary for article content. Summarize never
// fails: when the language model is unreachable or misbehaves it falls
// back to an extractive summary.
type Summarizer interface {
	Summarize(ctx context.Context, title, content string) *Summary
}

type llmSummarizer struct {
	client    *http.Client
	baseURL   string
	model     string
	available bool
}

// NewSummarizer creates a Summarizer backed by a local completion
// endpoint. The endpoint is probed once at startup; if nothing is
// listening, every summary is extractive.
func NewSummarizer(host string, port int, model string) Summarizer {
	addr := fmt.Sprintf("%s:%d", host, port)
	available := false
	conn, err := net.DialTimeout("tcp", addr, probeTimeout)
	if err != nil {
		slog.Warn("language model unreachable, using extractive summaries", "addr", addr, "error", err)
	} else {
		conn.Close()
		available = true
	}

	return &llmSummarizer{
		client:    &http.Client{Timeout: requestTimeout},
		baseURL:   "http://" + addr,
		model:     model,
		available: available,
	}
}

// newSummarizerWithURL creates a Summarizer with a custom base URL for testing.
func newSummarizerWithURL(model string, client *http.Client, url string) Summarizer {
	return &llmSummarizer{
		client:    client,
		baseURL:   url,
		model:     model,
		available: true,
	}
}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

func (l *llmSummarizer) Summarize(ctx context.Context, title, content string) *Summary {
	if strings.TrimSpace(content) == "" {
		return emptySummary(title)
	}
	if !l.available {
		return Extractive(title, content)
	}

	summary, err := l.complete(ctx, title, content)
	if err != nil {
		slog.Warn("completion failed, using extractive summary", "error", err)
		return Extractive(title, content)
	}
	return summary
}

func (l *llmSummarizer) complete(ctx context.Context, title, content string) (*Summary, error) {
	if len(content) > maxPromptContent {
		content = content[:maxPromptContent]
	}

	reqBody := completionRequest{
		Model:       l.model,
		Prompt:      buildPrompt(title, content),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/v1/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling completion API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var compResp completionResponse
	if err := json.Unmarshal(respBody, &compResp); err != nil {
		return nil, fmt.Errorf("parsing completion response: %w", err)
	}
	if len(compResp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	return l.parseSummary(compResp.Choices[0].Text, title)
}

// parseSummary reads the JSON object out of the completion text. Models
// often wrap the object in prose, so parsing starts at the first brace
// and ignores anything after the object.
func (l *llmSummarizer) parseSummary(text, title string) (*Summary, error) {
	idx := strings.Index(text, "{")
	if idx == -1 {
		return nil, fmt.Errorf("no JSON object in completion: %q", text)
	}

	var payload struct {
		Title     string   `json:"title"`
		Summary   string   `json:"summary"`
		Sentiment float64  `json:"sentiment"`
		Keywords  []string `json:"keywords"`
	}
	dec := json.NewDecoder(strings.NewReader(text[idx:]))
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing summary JSON: %w", err)
	}

	if payload.Title == "" {
		payload.Title = title
	}
	if payload.Keywords == nil {
		payload.Keywords = []string{}
	}

	return &Summary{
		Title:     payload.Title,
		Summary:   payload.Summary,
		Sentiment: clamp(payload.Sentiment, -1, 1),
		Keywords:  payload.Keywords,
		Model:     l.model,
	}, nil
}

func buildPrompt(title, content string) string {
	return fmt.Sprintf(`You are a financial news analyst. Read the article and respond with a single JSON object, no markdown, with these fields:
"title": a headline of at most 10 words
"summary": 2-3 sentences covering the key facts
"sentiment": a number from -1.0 (very negative) to 1.0 (very positive)
"keywords": 3-5 lowercase topic keywords

Title: %s

Article: %s`, title, content)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
