package sentiment

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kamilpajak/sentimeter/internal/llm"
)

const systemPrompt = `You are a careful sentiment analysis assistant. Classify the sentiment of the user's text into exactly one of: Positive, Negative, Neutral, Mixed.

Use Mixed only when the text clearly carries both positive and negative sentiment. Use Neutral for factual or emotionally flat text.

Return strict JSON only (no markdown, no commentary).`

// Limits bound the input accepted for one analysis.
type Limits struct {
	MinChars int
	MaxWords int
	MaxChars int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MinChars: 10,
		MaxWords: 2000,
		MaxChars: 20000,
	}
}

// AnalysisRequest is the fully prepared input for one analysis call.
type AnalysisRequest struct {
	Text       string
	WordCount  int
	Descriptor llm.ModelDescriptor
	LLM        *llm.Request
}

// BuildRequest validates text against limits and produces the provider
// request for desc. No remote call is made.
func BuildRequest(text string, desc llm.ModelDescriptor, limits Limits) (*AnalysisRequest, error) {
	text = strings.TrimSpace(text)
	chars := utf8.RuneCountInString(text)
	if text == "" || chars < limits.MinChars {
		return nil, llm.Errorf(llm.KindInvalidInput, "input has %d characters, need %d", chars, limits.MinChars)
	}

	words := len(strings.Fields(text))
	if limits.MaxWords > 0 && words > limits.MaxWords {
		return nil, llm.Errorf(llm.KindInputTooLarge, "input has %d words, limit %d", words, limits.MaxWords)
	}
	if limits.MaxChars > 0 && chars > limits.MaxChars {
		return nil, llm.Errorf(llm.KindInputTooLarge, "input has %d characters, limit %d", chars, limits.MaxChars)
	}

	return &AnalysisRequest{
		Text:       text,
		WordCount:  words,
		Descriptor: desc,
		LLM: &llm.Request{
			Model:       desc.ID,
			System:      systemPrompt,
			Prompt:      BuildPrompt(text, desc.SupportsReasoning),
			Temperature: desc.Temperature,
			MaxTokens:   desc.MaxTokens,
			JSONOutput:  true,
		},
	}, nil
}

// BuildPrompt creates the user prompt embedding the response schema.
func BuildPrompt(text string, withReasoning bool) string {
	var sb strings.Builder

	sb.WriteString("Analyze the sentiment of the following text and return JSON with keys exactly as in this schema: ")
	sb.WriteString(responseSchemaHint(withReasoning))
	sb.WriteString("\n\n")
	if withReasoning {
		sb.WriteString("List the reasoning steps you followed, in order, before settling on the label.\n\n")
	}
	fmt.Fprintf(&sb, "Text: %s", text)

	return sb.String()
}

func responseSchemaHint(withReasoning bool) string {
	// Marshalled as a struct so key order is stable.
	hint := struct {
		Sentiment   string `json:"sentiment"`
		Confidence  string `json:"confidence"`
		Explanation string `json:"explanation"`
		KeyPhrases  string `json:"key_phrases"`
		Reasoning   string `json:"reasoning,omitempty"`
	}{
		Sentiment:   "Positive|Negative|Neutral|Mixed",
		Confidence:  "number between 0 and 1",
		Explanation: "short explanation (1-3 sentences)",
		KeyPhrases:  "array of 3-8 short phrases from the input that justify the sentiment",
	}
	if withReasoning {
		hint.Reasoning = "array of short reasoning steps, in order"
	}
	b, _ := json.Marshal(hint)
	return string(b)
}
