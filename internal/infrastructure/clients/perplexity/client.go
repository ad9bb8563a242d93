package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/observability"
	"github.com/sitebrief/toolboxtalk/backend/pkg/config"
	apperrors "github.com/sitebrief/toolboxtalk/backend/pkg/errors"
	"github.com/sitebrief/toolboxtalk/backend/pkg/markdown"
)

const (
	defaultBaseURL = "https://api.perplexity.ai"
	maxQueryRunes  = 500
)

// Client calls the Perplexity web-search-augmented chat API to retrieve
// regulatory safety-standard text. Calls run through a circuit breaker; the
// provider is slow under load and the orchestrator has its own fallback.
type Client struct {
	apiKey       string
	model        string
	searchDomain string
	baseURL      string
	httpClient   *http.Client
	breaker      *gobreaker.CircuitBreaker
}

// NewClient creates a new Perplexity client.
func NewClient(cfg *config.PerplexityConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("perplexity api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "sonar"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "perplexity",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		apiKey:       cfg.APIKey,
		model:        model,
		searchDomain: cfg.SearchDomain,
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: timeout},
		breaker:      breaker,
	}, nil
}

// NewClientWithOptions overrides the base URL and HTTP client (used for tests).
func NewClientWithOptions(cfg *config.PerplexityConfig, baseURL string, httpClient *http.Client) (*Client, error) {
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

type searchRequest struct {
	Model              string           `json:"model"`
	Messages           []chatMessage    `json:"messages"`
	ReturnImages       bool             `json:"return_images"`
	SearchDomainFilter []string         `json:"search_domain_filter,omitempty"`
	WebSearchOptions   webSearchOptions `json:"web_search_options"`
}

type webSearchOptions struct {
	SearchContextSize string `json:"search_context_size"`
}

type searchResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
	Usage     struct {
		CitationTokens   int `json:"citation_tokens"`
		NumSearchQueries int `json:"num_search_queries"`
	} `json:"usage"`
}

// SearchSafetyStandards retrieves regulatory text for the query. The returned
// Result is fence-stripped but not guaranteed to parse as JSON.
func (c *Client) SearchSafetyStandards(ctx context.Context, query string) (*entities.SafetySearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, apperrors.NewValidationError("search query is required")
	}
	if len([]rune(trimmed)) > maxQueryRunes {
		return nil, apperrors.NewValidationError(fmt.Sprintf("search query exceeds %d characters", maxQueryRunes))
	}

	payload := searchRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt()},
			{Role: "user", Content: "Search for Alberta Safety Standards related to: " + trimmed},
		},
		ReturnImages:       false,
		SearchDomainFilter: []string{c.searchDomain},
		WebSearchOptions:   webSearchOptions{SearchContextSize: "medium"},
	}

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doSearch(ctx, payload)
	})
	if err != nil {
		return nil, apperrors.NewExternalError("safety search failed", err)
	}
	parsed := raw.(*searchResponse)

	result := &entities.SafetySearchResult{
		Result:  markdown.CleanFences(parsed.Choices[0].Message.Content),
		Sources: make([]entities.SafetySource, 0, len(parsed.Citations)),
		Metadata: entities.SafetyMetadata{
			Usage: &entities.SafetyUsage{
				CitationTokens:   parsed.Usage.CitationTokens,
				NumSearchQueries: parsed.Usage.NumSearchQueries,
			},
			Timestamp: time.Now().UTC(),
		},
	}
	for i, url := range parsed.Citations {
		result.Sources = append(result.Sources, entities.SafetySource{
			SourceType: "url",
			ID:         fmt.Sprintf("source-%d", i+1),
			URL:        url,
		})
	}

	return result, nil
}

func (c *Client) doSearch(ctx context.Context, payload searchRequest) (*searchResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordAIRequestMetric(ctx, "perplexity", c.model, 0, time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("perplexity request failed with status %d", resp.StatusCode)
		observability.RecordAIRequestMetric(ctx, "perplexity", c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		observability.RecordAIRequestMetric(ctx, "perplexity", c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		err := errors.New("perplexity response missing message content")
		observability.RecordAIRequestMetric(ctx, "perplexity", c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	observability.RecordAIRequestMetric(ctx, "perplexity", c.model, resp.StatusCode, time.Since(start), nil)
	return &parsed, nil
}

func (c *Client) systemPrompt() string {
	return fmt.Sprintf(`You are an expert at finding construction safety documents related to the Alberta, Canada - Occupational Health and Safety (OHS) regulations.

Your task:

- Based on the users query, find the most relevant safety documents in Alberta, Canada.
- Do not include any documents that are not related to Alberta, Canada.
- Please search in this domain: %s
- Click into the documents (if needed) and extract the most relevant paragraph that addresses the query.
- Return a response in strict JSON format only — no extra text, no markdown, no commentary.
- Ensure all JSON strings are properly escaped, with no unescaped quotes or invalid characters.
- Double-check your JSON response is valid before returning it.

Each object in the JSON array should include:

title: The name of the document
summary: A short summary of what the document covers
paragraph: A single relevant paragraph that answers the query`, c.searchDomain)
}
