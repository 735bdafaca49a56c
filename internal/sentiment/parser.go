package sentiment

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kamilpajak/sentimeter/internal/llm"
	"github.com/kamilpajak/sentimeter/pkg/models"
)

// MaxKeyPhrases caps the number of key phrases kept from a reply.
const MaxKeyPhrases = 12

const replySchemaURL = "mem://sentimeter/reply.json"

const replySchemaDoc = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["sentiment", "confidence", "explanation"],
  "properties": {
    "sentiment": {"type": "string"},
    "confidence": {"type": ["number", "string"]},
    "explanation": {"type": "string"}
  }
}`

var replySchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(replySchemaURL, strings.NewReader(replySchemaDoc)); err != nil {
		panic(err)
	}
	return c.MustCompile(replySchemaURL)
}

// Parse validates a raw model reply and builds the result. Every violation is
// reported as MalformedResponse.
func Parse(reply *llm.Response, desc llm.ModelDescriptor) (*models.AnalysisResult, error) {
	if reply == nil {
		return nil, llm.Errorf(llm.KindMalformedResponse, "empty reply")
	}

	raw := extractJSON(reply.Content)
	if raw == "" {
		return nil, llm.Errorf(llm.KindMalformedResponse, "reply contains no JSON object")
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, llm.Wrap(llm.KindMalformedResponse, err, "failed to parse reply JSON")
	}
	if err := replySchema.Validate(doc); err != nil {
		return nil, llm.Wrap(llm.KindMalformedResponse, err, "reply violates schema")
	}
	// The schema guarantees an object with the required fields.
	fields := doc.(map[string]any)

	label, ok := models.ParseLabel(fields["sentiment"].(string))
	if !ok {
		return nil, llm.Errorf(llm.KindMalformedResponse, "unexpected sentiment label %q", fields["sentiment"])
	}

	confidence, err := normalizeConfidence(fields["confidence"])
	if err != nil {
		return nil, err
	}

	explanation := strings.TrimSpace(fields["explanation"].(string))
	if explanation == "" {
		return nil, llm.Errorf(llm.KindMalformedResponse, "empty explanation")
	}

	result := &models.AnalysisResult{
		Sentiment:    label,
		Confidence:   confidence,
		Explanation:  explanation,
		KeyPhrases:   keyPhrases(fields["key_phrases"]),
		InputTokens:  reply.InputTokens,
		OutputTokens: reply.OutputTokens,
		Provider:     string(desc.Provider),
		Model:        desc.ID,
	}
	if desc.SupportsReasoning {
		result.Reasoning = reasoningSteps(fields["reasoning"], reply.Reasoning)
	}
	return result, nil
}

// normalizeConfidence accepts a probability in [0,1] or a percentage in
// (1,100]. Anything else is rejected rather than clamped.
func normalizeConfidence(v any) (float64, error) {
	var f float64
	switch c := v.(type) {
	case json.Number:
		parsed, err := c.Float64()
		if err != nil {
			return 0, llm.Wrap(llm.KindMalformedResponse, err, "confidence is not a number")
		}
		f = parsed
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(c), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, llm.Errorf(llm.KindMalformedResponse, "confidence %q is not numeric", c)
		}
		f = parsed
	default:
		return 0, llm.Errorf(llm.KindMalformedResponse, "confidence has type %T", v)
	}

	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0, llm.Errorf(llm.KindMalformedResponse, "confidence %v is not finite", f)
	case f < 0:
		return 0, llm.Errorf(llm.KindMalformedResponse, "confidence %v is negative", f)
	case f <= 1:
		return f, nil
	case f <= 100:
		return f / 100, nil
	default:
		return 0, llm.Errorf(llm.KindMalformedResponse, "confidence %v out of range", f)
	}
}

// keyPhrases never fails: a missing or mistyped field yields an empty list.
func keyPhrases(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch p := item.(type) {
		case string:
			s = p
		case json.Number:
			s = p.String()
		default:
			continue
		}
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == MaxKeyPhrases {
			break
		}
	}
	return out
}

func reasoningSteps(field any, native string) []string {
	switch r := field.(type) {
	case []any:
		var steps []string
		for _, item := range r {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					steps = append(steps, s)
				}
			}
		}
		if len(steps) > 0 {
			return steps
		}
	case string:
		if steps := splitLines(r); len(steps) > 0 {
			return steps
		}
	}
	return splitLines(native)
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// extractJSON returns the first JSON object in s: the whole string, the body
// of a fenced code block, or the outermost {...} span.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if json.Valid([]byte(s)) && strings.HasPrefix(s, "{") {
		return s
	}

	if start := strings.Index(s, "```"); start >= 0 {
		body := s[start+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		}
		if end := strings.Index(body, "```"); end >= 0 {
			candidate := strings.TrimSpace(body[:end])
			if strings.HasPrefix(candidate, "{") && json.Valid([]byte(candidate)) {
				return candidate
			}
		}
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return ""
	}
	return candidate
}
