package sentiment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilpajak/sentimeter/internal/llm"
)

func TestBuildRequest_CopiesDescriptor(t *testing.T) {
	for _, desc := range llm.Models() {
		t.Run(desc.ID, func(t *testing.T) {
			req, err := BuildRequest("  The service was fine overall.  ", desc, DefaultLimits())
			require.NoError(t, err)

			assert.Equal(t, "The service was fine overall.", req.Text)
			assert.Equal(t, 5, req.WordCount)
			assert.Equal(t, desc.ID, req.LLM.Model)
			assert.Equal(t, desc.Temperature, req.LLM.Temperature)
			assert.Equal(t, desc.MaxTokens, req.LLM.MaxTokens)
			assert.True(t, req.LLM.JSONOutput)
			assert.Contains(t, req.LLM.System, "Positive, Negative, Neutral, Mixed")
			assert.Contains(t, req.LLM.Prompt, "Text: The service was fine overall.")
			assert.Equal(t, desc.SupportsReasoning, strings.Contains(req.LLM.Prompt, `"reasoning"`))
		})
	}
}

func TestBuildRequest_Deterministic(t *testing.T) {
	desc, err := llm.Describe("gpt-4o-mini")
	require.NoError(t, err)

	a, err := BuildRequest("Same text every time.", desc, DefaultLimits())
	require.NoError(t, err)
	b, err := BuildRequest("Same text every time.", desc, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, a.LLM, b.LLM)
}

func TestBuildRequest_TooManyWords(t *testing.T) {
	desc, err := llm.Describe("gpt-4o")
	require.NoError(t, err)

	text := strings.TrimSpace(strings.Repeat("word ", 2500))
	_, err = BuildRequest(text, desc, DefaultLimits())
	assert.ErrorIs(t, err, llm.ErrInputTooLarge)

	text = strings.TrimSpace(strings.Repeat("word ", 2000))
	_, err = BuildRequest(text, desc, DefaultLimits())
	assert.NoError(t, err)
}

func TestBuildRequest_TooManyChars(t *testing.T) {
	desc, err := llm.Describe("gpt-4o")
	require.NoError(t, err)

	_, err = BuildRequest(strings.Repeat("x", 20001), desc, DefaultLimits())
	assert.ErrorIs(t, err, llm.ErrInputTooLarge)
}

func TestBuildRequest_TooShort(t *testing.T) {
	desc, err := llm.Describe("gpt-4o")
	require.NoError(t, err)

	for _, text := range []string{"", "    ", "ok", "123456789"} {
		_, err := BuildRequest(text, desc, DefaultLimits())
		assert.ErrorIs(t, err, llm.ErrInvalidInput, "text %q", text)
	}
}

func TestBuildPrompt_SchemaKeys(t *testing.T) {
	prompt := BuildPrompt("hello there friend", false)
	for _, key := range []string{`"sentiment"`, `"confidence"`, `"explanation"`, `"key_phrases"`} {
		assert.Contains(t, prompt, key)
	}
	assert.NotContains(t, prompt, `"reasoning"`)
	assert.True(t, strings.HasSuffix(prompt, "Text: hello there friend"))
}
