package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/providers"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/observability"
	"github.com/sitebrief/toolboxtalk/backend/pkg/config"
	"github.com/sitebrief/toolboxtalk/backend/pkg/markdown"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client calls the OpenAI chat completions API. It implements both the hazard
// classifier and the summary generator providers.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// NewClientWithOptions overrides the base URL and HTTP client (used for tests).
func NewClientWithOptions(cfg *config.OpenAIConfig, baseURL string, httpClient *http.Client) (*Client, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		client.baseURL = baseURL
	}
	if httpClient != nil {
		client.httpClient = httpClient
	}
	return client, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AnalyzeHazards classifies a job description into the fixed hazard flag set.
// Callers are expected to substitute the deterministic fallback on error.
func (c *Client) AnalyzeHazards(ctx context.Context, input providers.HazardAnalysisInput) (*entities.HazardAnalysis, error) {
	if input.JobDescription == "" {
		return nil, errors.New("job description is required")
	}

	text, err := c.chatComplete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: hazardSystemPrompt},
			{Role: "user", Content: buildHazardUserPrompt(input)},
		},
		Temperature:    0.3,
		ResponseFormat: map[string]any{"type": "json_object"},
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Hazards            map[string]bool `json:"hazards"`
		AdditionalComments string          `json:"additional_comments"`
	}
	if err := json.Unmarshal([]byte(markdown.CleanFences(text)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse hazard analysis response: %w", err)
	}

	return &entities.HazardAnalysis{
		Hazards:            entities.HazardFlagsFromMap(parsed.Hazards),
		AdditionalComments: parsed.AdditionalComments,
	}, nil
}

// GenerateSafetySummary writes the HTML safety briefing for a meeting.
// Callers substitute the fixed fallback text on error.
func (c *Client) GenerateSafetySummary(ctx context.Context, meeting *entities.Meeting, standards *entities.SafetySearchResult) (string, error) {
	if meeting == nil {
		return "", errors.New("meeting is required")
	}

	text, err := c.chatComplete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: summarySystemPrompt},
			{Role: "user", Content: buildSummaryUserPrompt(meeting, standards)},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", err
	}

	return markdown.CleanFences(text), nil
}

func (c *Client) chatComplete(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordAIRequestMetric(ctx, "openai", c.model, 0, time.Since(start), err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("openai request failed with status %d", resp.StatusCode)
		observability.RecordAIRequestMetric(ctx, "openai", c.model, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	var envelope chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		observability.RecordAIRequestMetric(ctx, "openai", c.model, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		err := errors.New("openai response missing message content")
		observability.RecordAIRequestMetric(ctx, "openai", c.model, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	observability.RecordAIRequestMetric(ctx, "openai", c.model, resp.StatusCode, time.Since(start), nil)
	return envelope.Choices[0].Message.Content, nil
}
