package sentiment

import "github.com/kamilpajak/sentimeter/pkg/models"

// Example is a curated sample text for one label.
type Example struct {
	Label models.Label `json:"label"`
	Text  string       `json:"text"`
}

var examples = []Example{
	{models.LabelPositive, "I'm genuinely impressed by how quickly the team resolved my issue. The support agent was patient, clear, and followed up to ensure everything worked."},
	{models.LabelNegative, "I'm frustrated because the delivery was two days late and the package arrived damaged. Customer support kept me waiting and didn't provide a clear resolution."},
	{models.LabelNeutral, "The meeting is scheduled for 3 PM tomorrow. Please share the updated agenda and the final slide deck when you can."},
	{models.LabelMixed, "The product quality is excellent and the design looks premium, but the setup process was confusing and the instructions were missing key steps."},
}

// Examples returns one sample text per label.
func Examples() []Example {
	out := make([]Example, len(examples))
	copy(out, examples)
	return out
}

// ExampleFor returns the sample for a label name, matched case-insensitively.
func ExampleFor(name string) (Example, bool) {
	label, ok := models.ParseLabel(name)
	if !ok {
		return Example{}, false
	}
	for _, e := range examples {
		if e.Label == label {
			return e, true
		}
	}
	return Example{}, false
}
