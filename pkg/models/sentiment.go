package models

import "strings"

// Label is the overall sentiment of a text
type Label string

const (
	LabelPositive Label = "Positive"
	LabelNegative Label = "Negative"
	LabelNeutral  Label = "Neutral"
	LabelMixed    Label = "Mixed"
)

// Labels lists every valid label in display order.
var Labels = []Label{LabelPositive, LabelNegative, LabelNeutral, LabelMixed}

// ParseLabel matches s case-insensitively against the known labels and
// returns the canonical form.
func ParseLabel(s string) (Label, bool) {
	s = strings.TrimSpace(s)
	for _, l := range Labels {
		if strings.EqualFold(s, string(l)) {
			return l, true
		}
	}
	return "", false
}

// AnalysisResult is a validated sentiment verdict for one text
type AnalysisResult struct {
	Sentiment   Label    `json:"sentiment"`
	Confidence  float64  `json:"confidence"`
	Explanation string   `json:"explanation"`
	KeyPhrases  []string `json:"key_phrases"`
	Reasoning   []string `json:"reasoning,omitempty"`

	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
}

// ConfidencePercent returns the confidence as a whole percentage.
func (r *AnalysisResult) ConfidencePercent() int {
	return int(r.Confidence*100 + 0.5)
}

// HasReasoning reports whether the model produced a reasoning trace.
func (r *AnalysisResult) HasReasoning() bool {
	return len(r.Reasoning) > 0
}
