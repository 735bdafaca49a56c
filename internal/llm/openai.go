package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIURL = "https://api.openai.com/v1"

// OpenAIClient implements Transport for OpenAI using the official SDK.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client. An empty baseURL selects the
// public API. SDK retries are disabled; callers decide whether to re-invoke.
func NewOpenAIClient(baseURL string, httpClient *http.Client) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithBaseURL(normalizeBaseURL(baseURL, defaultOpenAIURL) + "/"),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &OpenAIClient{client: openai.NewClient(opts...)}
}

// Complete sends a chat completion request to OpenAI
func (c *OpenAIClient) Complete(ctx context.Context, apiKey string, r *Request) (*Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if r.System != "" {
		messages = append(messages, openai.SystemMessage(r.System))
	}
	messages = append(messages, openai.UserMessage(r.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:               openai.F(openai.ChatModel(r.Model)),
		Messages:            openai.F(messages),
		Temperature:         openai.F(r.Temperature),
		MaxCompletionTokens: openai.F(int64(r.MaxTokens)),
	}
	if r.JSONOutput {
		params.ResponseFormat = openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ResponseFormatJSONObjectParam{
				Type: openai.F(openai.ResponseFormatJSONObjectTypeJSONObject),
			},
		)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, openAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, Errorf(KindMalformedResponse, "no response choices")
	}

	choice := resp.Choices[0]
	return &Response{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		Model:        resp.Model,
	}, nil
}

// Probe lists models, the cheapest authenticated OpenAI call.
func (c *OpenAIClient) Probe(ctx context.Context, apiKey string) error {
	if _, err := c.client.Models.List(ctx, option.WithAPIKey(apiKey)); err != nil {
		return openAIError(err)
	}
	return nil
}

// Provider returns the provider name
func (c *OpenAIClient) Provider() Provider {
	return ProviderOpenAI
}

// openAIError converts SDK API errors into *StatusError so classification
// does not depend on the SDK. Transport errors pass through wrapped.
func openAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Error()}
	}
	return fmt.Errorf("request failed: %w", err)
}
