package sentiment

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilpajak/sentimeter/internal/llm"
	"github.com/kamilpajak/sentimeter/pkg/models"
)

func mustDescribe(t *testing.T, id string) llm.ModelDescriptor {
	t.Helper()
	d, err := llm.Describe(id)
	require.NoError(t, err)
	return d
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON",
			input:    `{"sentiment": "Positive"}`,
			expected: `{"sentiment": "Positive"}`,
		},
		{
			name:     "JSON in markdown code block",
			input:    "Here is the analysis:\n```json\n{\"sentiment\": \"Positive\"}\n```\nDone.",
			expected: `{"sentiment": "Positive"}`,
		},
		{
			name:     "JSON in plain code block",
			input:    "Analysis:\n```\n{\"sentiment\": \"Positive\"}\n```",
			expected: `{"sentiment": "Positive"}`,
		},
		{
			name:     "JSON with surrounding text",
			input:    "The result is {\"sentiment\": \"Positive\"} as shown.",
			expected: `{"sentiment": "Positive"}`,
		},
		{
			name:     "nested JSON",
			input:    `{"outer": {"inner": "value"}}`,
			expected: `{"outer": {"inner": "value"}}`,
		},
		{
			name:     "no JSON",
			input:    "No JSON here",
			expected: "",
		},
		{
			name:     "broken JSON",
			input:    `{"sentiment": "Positive",`,
			expected: "",
		},
		{
			name:     "array is not an object",
			input:    `["Positive"]`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSON(tt.input))
		})
	}
}

func TestParse_Valid(t *testing.T) {
	desc := mustDescribe(t, "gpt-4o")
	result, err := Parse(reply(`{
		"sentiment": "Positive",
		"confidence": 0.92,
		"explanation": "  The customer praises the support team. ",
		"key_phrases": ["impressed", "resolved my issue", "patient"]
	}`), desc)
	require.NoError(t, err)

	assert.Equal(t, models.LabelPositive, result.Sentiment)
	assert.InDelta(t, 0.92, result.Confidence, 1e-9)
	assert.Equal(t, "The customer praises the support team.", result.Explanation)
	assert.Equal(t, []string{"impressed", "resolved my issue", "patient"}, result.KeyPhrases)
	assert.Nil(t, result.Reasoning)
	assert.Equal(t, "gpt-4o", result.Model)
	assert.Equal(t, "openai", result.Provider)
	assert.Equal(t, 120, result.InputTokens)
	assert.Equal(t, 40, result.OutputTokens)
}

func TestParse_ConfidenceNormalization(t *testing.T) {
	desc := mustDescribe(t, "gpt-4o")
	tests := []struct {
		raw  string
		want float64
	}{
		{`0`, 0},
		{`0.87`, 0.87},
		{`1`, 1},
		{`1.0`, 1},
		{`87`, 0.87},
		{`100`, 1},
		{`"0.4"`, 0.4},
		{`"75%"`, 0.75},
		{`" 60 % "`, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			content := fmt.Sprintf(`{"sentiment":"Neutral","confidence":%s,"explanation":"Flat tone."}`, tt.raw)
			result, err := Parse(reply(content), desc)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, result.Confidence, 1e-9)
			assert.GreaterOrEqual(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 1.0)
		})
	}
}

func TestParse_ConfidenceRejected(t *testing.T) {
	desc := mustDescribe(t, "gpt-4o")
	for _, raw := range []string{`-0.1`, `150`, `100.5`, `"high"`, `""`, `null`, `true`, `[0.5]`} {
		t.Run(raw, func(t *testing.T) {
			content := fmt.Sprintf(`{"sentiment":"Neutral","confidence":%s,"explanation":"Flat tone."}`, raw)
			_, err := Parse(reply(content), desc)
			assert.ErrorIs(t, err, llm.ErrMalformedResponse)
		})
	}
}

func TestParse_LabelCaseInsensitive(t *testing.T) {
	desc := mustDescribe(t, "gpt-4o")
	for _, raw := range []string{"positive", "POSITIVE", "Positive", " pOsItIvE "} {
		t.Run(raw, func(t *testing.T) {
			content := fmt.Sprintf(`{"sentiment":%q,"confidence":0.5,"explanation":"Good."}`, raw)
			result, err := Parse(reply(content), desc)
			require.NoError(t, err)
			assert.Equal(t, models.LabelPositive, result.Sentiment)
		})
	}
}

func TestParse_UnknownLabel(t *testing.T) {
	_, err := Parse(reply(`{"sentiment":"Happy","confidence":0.5,"explanation":"Good."}`), mustDescribe(t, "gpt-4o"))
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
}

func TestParse_MissingOrEmptyFields(t *testing.T) {
	desc := mustDescribe(t, "gpt-4o")
	tests := map[string]string{
		"missing explanation": `{"sentiment":"Positive","confidence":0.9}`,
		"empty explanation":   `{"sentiment":"Positive","confidence":0.9,"explanation":"   "}`,
		"missing sentiment":   `{"confidence":0.9,"explanation":"Good."}`,
		"missing confidence":  `{"sentiment":"Positive","explanation":"Good."}`,
		"label not a string":  `{"sentiment":1,"confidence":0.9,"explanation":"Good."}`,
		"not JSON":            `I think it is positive.`,
		"empty":               ``,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(reply(content), desc)
			require.Error(t, err)
			assert.ErrorIs(t, err, llm.ErrMalformedResponse)
			assert.Equal(t, llm.KindMalformedResponse.Message(), err.Error())
		})
	}
}

func TestParse_NilReply(t *testing.T) {
	_, err := Parse(nil, mustDescribe(t, "gpt-4o"))
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
}

func TestParse_KeyPhrasesCapped(t *testing.T) {
	phrases := make([]string, 20)
	for i := range phrases {
		phrases[i] = fmt.Sprintf("phrase %d", i)
	}
	raw, err := json.Marshal(map[string]any{
		"sentiment": "Negative", "confidence": 0.8, "explanation": "Complaints.", "key_phrases": phrases,
	})
	require.NoError(t, err)

	result, err := Parse(reply(string(raw)), mustDescribe(t, "gpt-4o"))
	require.NoError(t, err)
	assert.Len(t, result.KeyPhrases, MaxKeyPhrases)
	assert.Equal(t, phrases[:MaxKeyPhrases], result.KeyPhrases)
}

func TestParse_KeyPhrasesCleanup(t *testing.T) {
	desc := mustDescribe(t, "gpt-4o")

	result, err := Parse(reply(`{"sentiment":"Mixed","confidence":0.6,"explanation":"Both.",
		"key_phrases":["  excellent ", "", "   ", 42, {"x":1}, "confusing"]}`), desc)
	require.NoError(t, err)
	assert.Equal(t, []string{"excellent", "42", "confusing"}, result.KeyPhrases)

	result, err = Parse(reply(`{"sentiment":"Mixed","confidence":0.6,"explanation":"Both.","key_phrases":"excellent"}`), desc)
	require.NoError(t, err)
	assert.NotNil(t, result.KeyPhrases)
	assert.Empty(t, result.KeyPhrases)

	result, err = Parse(reply(`{"sentiment":"Mixed","confidence":0.6,"explanation":"Both."}`), desc)
	require.NoError(t, err)
	assert.Empty(t, result.KeyPhrases)
}

func TestParse_ReasoningOnlyForReasoningModels(t *testing.T) {
	content := `{"sentiment":"Mixed","confidence":0.7,"explanation":"Both.","reasoning":["praise first","then complaint"]}`

	result, err := Parse(reply(content), mustDescribe(t, "gpt-4o"))
	require.NoError(t, err)
	assert.Nil(t, result.Reasoning)
	assert.False(t, result.HasReasoning())

	result, err = Parse(reply(content), mustDescribe(t, "gpt-5"))
	require.NoError(t, err)
	assert.Equal(t, []string{"praise first", "then complaint"}, result.Reasoning)
}

func TestParse_ReasoningSources(t *testing.T) {
	desc := mustDescribe(t, "gemini-2.5-pro")
	base := `{"sentiment":"Neutral","confidence":0.5,"explanation":"Facts."%s}`

	t.Run("string field split into lines", func(t *testing.T) {
		result, err := Parse(reply(fmt.Sprintf(base, `,"reasoning":"look at tone\n\nno emotion"`)), desc)
		require.NoError(t, err)
		assert.Equal(t, []string{"look at tone", "no emotion"}, result.Reasoning)
	})

	t.Run("native reasoning fallback", func(t *testing.T) {
		r := reply(fmt.Sprintf(base, ""))
		r.Reasoning = "Scheduling language.\nNo evaluative words."
		result, err := Parse(r, desc)
		require.NoError(t, err)
		assert.Equal(t, []string{"Scheduling language.", "No evaluative words."}, result.Reasoning)
	})

	t.Run("absent trace is not an error", func(t *testing.T) {
		result, err := Parse(reply(fmt.Sprintf(base, "")), desc)
		require.NoError(t, err)
		assert.Empty(t, result.Reasoning)
	})

	t.Run("native reasoning ignored for plain models", func(t *testing.T) {
		r := reply(fmt.Sprintf(base, ""))
		r.Reasoning = "hidden"
		result, err := Parse(r, mustDescribe(t, "gemini-2.5-flash"))
		require.NoError(t, err)
		assert.Nil(t, result.Reasoning)
	})
}

func TestParse_FencedReply(t *testing.T) {
	content := "Sure! Here you go:\n```json\n" + `{"sentiment":"negative","confidence":"90%","explanation":"Late delivery."}` + "\n```"
	result, err := Parse(reply(content), mustDescribe(t, "claude-haiku-4-5"))
	require.NoError(t, err)
	assert.Equal(t, models.LabelNegative, result.Sentiment)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)
	assert.Equal(t, "anthropic", result.Provider)
	assert.False(t, strings.Contains(result.Explanation, "```"))
}
