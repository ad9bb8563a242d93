package entities

import "time"

// SafetySource is one citation returned by the safety-standards search.
type SafetySource struct {
	SourceType string `json:"sourceType"`
	ID         string `json:"id"`
	URL        string `json:"url"`
}

// SafetyUsage carries provider-reported usage counters for a search call.
type SafetyUsage struct {
	CitationTokens   int `json:"citationTokens"`
	NumSearchQueries int `json:"numSearchQueries"`
}

// SafetyMetadata is the opaque provider metadata captured with a standards
// result, stamped with the capture time.
type SafetyMetadata struct {
	Usage     *SafetyUsage `json:"usage,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// SafetySearchResult is the outcome of a safety-standards retrieval. Result is
// intended to parse as a JSON array of documents but that is not guaranteed;
// consumers must fall back to rendering it as raw text.
type SafetySearchResult struct {
	Result   string         `json:"result"`
	Sources  []SafetySource `json:"sources"`
	Metadata SafetyMetadata `json:"metadata"`

	// Fallback marks results substituted for a failed or timed-out
	// retrieval; FallbackReason says which.
	Fallback       bool   `json:"-"`
	FallbackReason string `json:"-"`
}

// HazardAnalysis is the classifier output for a job description.
type HazardAnalysis struct {
	Hazards            HazardFlags `json:"hazards"`
	AdditionalComments string      `json:"additional_comments"`

	// Fallback marks the deterministic all-false result substituted when
	// the model call fails or returns malformed JSON.
	Fallback       bool   `json:"-"`
	FallbackReason string `json:"-"`
}
