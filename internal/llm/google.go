package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultGoogleURL = "https://generativelanguage.googleapis.com/v1beta"

// GoogleClient implements Transport for Google Gemini
type GoogleClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewGoogleClient creates a new Google Gemini client. An empty baseURL selects
// the public API.
func NewGoogleClient(baseURL string, httpClient *http.Client) *GoogleClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &GoogleClient{
		httpClient: httpClient,
		baseURL:    normalizeBaseURL(baseURL, defaultGoogleURL),
	}
}

// Google API request/response types
type googleRequest struct {
	Contents          []googleContent        `json:"contents"`
	SystemInstruction *googleContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  googleGenerationConfig `json:"generationConfig"`
}

type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text    string `json:"text"`
	Thought bool   `json:"thought,omitempty"`
}

type googleGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type googleResponse struct {
	Candidates    []googleCandidate `json:"candidates"`
	UsageMetadata googleUsage       `json:"usageMetadata"`
	ModelVersion  string            `json:"modelVersion"`
}

type googleCandidate struct {
	Content      googleContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type googleUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Complete sends a request to Google Gemini
func (c *GoogleClient) Complete(ctx context.Context, apiKey string, r *Request) (*Response, error) {
	reqBody := googleRequest{
		Contents: []googleContent{{Role: "user", Parts: []googlePart{{Text: r.Prompt}}}},
		GenerationConfig: googleGenerationConfig{
			Temperature:     r.Temperature,
			MaxOutputTokens: r.MaxTokens,
		},
	}
	if r.System != "" {
		reqBody.SystemInstruction = &googleContent{Parts: []googlePart{{Text: r.System}}}
	}
	if r.JSONOutput {
		reqBody.GenerationConfig.ResponseMimeType = "application/json"
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(r.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	body, err := doRequest(c.httpClient, req)
	if err != nil {
		return nil, err
	}

	var googleResp googleResponse
	if err := json.Unmarshal(body, &googleResp); err != nil {
		return nil, Wrap(KindMalformedResponse, err, "failed to parse response")
	}

	if len(googleResp.Candidates) == 0 {
		return nil, Errorf(KindMalformedResponse, "no response candidates")
	}

	candidate := googleResp.Candidates[0]
	var content, thoughts strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.Thought {
			thoughts.WriteString(part.Text)
			continue
		}
		content.WriteString(part.Text)
	}

	model := googleResp.ModelVersion
	if model == "" {
		model = r.Model
	}

	return &Response{
		Content:      content.String(),
		Reasoning:    thoughts.String(),
		FinishReason: candidate.FinishReason,
		InputTokens:  googleResp.UsageMetadata.PromptTokenCount,
		OutputTokens: googleResp.UsageMetadata.CandidatesTokenCount,
		Model:        model,
	}, nil
}

// Probe lists one model to confirm the key is accepted.
func (c *GoogleClient) Probe(ctx context.Context, apiKey string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models?pageSize=1", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", apiKey)

	_, err = doRequest(c.httpClient, req)
	return err
}

// Provider returns the provider name
func (c *GoogleClient) Provider() Provider {
	return ProviderGoogle
}
