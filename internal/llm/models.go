package llm

// CostTier is a coarse price bracket shown next to a model.
type CostTier string

const (
	TierEconomy  CostTier = "economy"
	TierStandard CostTier = "standard"
	TierPremium  CostTier = "premium"
)

// DefaultModel is used when the caller does not pick one.
const DefaultModel = "gpt-4o"

// ModelDescriptor describes how to talk to one model.
type ModelDescriptor struct {
	ID                string   `json:"id"`
	Label             string   `json:"label"`
	Provider          Provider `json:"provider"`
	SupportsReasoning bool     `json:"supports_reasoning"`
	Temperature       float64  `json:"temperature"`
	MaxTokens         int      `json:"max_tokens"`
	CostTier          CostTier `json:"cost_tier"`
}

const (
	standardMaxTokens  = 800
	reasoningMaxTokens = 4096
)

// Reasoning models only accept the provider default temperature of 1 and
// spend part of their budget on hidden reasoning tokens.
var modelTable = []ModelDescriptor{
	{ID: "gpt-5", Label: "GPT-5", Provider: ProviderOpenAI, SupportsReasoning: true, Temperature: 1, MaxTokens: reasoningMaxTokens, CostTier: TierPremium},
	{ID: "gpt-5-mini", Label: "GPT-5 mini", Provider: ProviderOpenAI, SupportsReasoning: true, Temperature: 1, MaxTokens: reasoningMaxTokens, CostTier: TierStandard},
	{ID: "gpt-4.1", Label: "GPT-4.1", Provider: ProviderOpenAI, Temperature: 0, MaxTokens: standardMaxTokens, CostTier: TierPremium},
	{ID: "gpt-4.1-mini", Label: "GPT-4.1 mini", Provider: ProviderOpenAI, Temperature: 0, MaxTokens: standardMaxTokens, CostTier: TierEconomy},
	{ID: "gpt-4o", Label: "GPT-4o", Provider: ProviderOpenAI, Temperature: 0, MaxTokens: standardMaxTokens, CostTier: TierStandard},
	{ID: "gpt-4o-mini", Label: "GPT-4o mini", Provider: ProviderOpenAI, Temperature: 0, MaxTokens: standardMaxTokens, CostTier: TierEconomy},
	{ID: "claude-sonnet-4-5", Label: "Claude Sonnet 4.5", Provider: ProviderAnthropic, Temperature: 0, MaxTokens: standardMaxTokens, CostTier: TierPremium},
	{ID: "claude-haiku-4-5", Label: "Claude Haiku 4.5", Provider: ProviderAnthropic, Temperature: 0, MaxTokens: standardMaxTokens, CostTier: TierEconomy},
	{ID: "gemini-2.5-pro", Label: "Gemini 2.5 Pro", Provider: ProviderGoogle, SupportsReasoning: true, Temperature: 1, MaxTokens: reasoningMaxTokens, CostTier: TierPremium},
	{ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash", Provider: ProviderGoogle, Temperature: 0, MaxTokens: standardMaxTokens, CostTier: TierEconomy},
}

var modelIndex = func() map[string]ModelDescriptor {
	m := make(map[string]ModelDescriptor, len(modelTable))
	for _, d := range modelTable {
		m[d.ID] = d
	}
	return m
}()

// Describe returns the descriptor for id. Unknown IDs are never defaulted.
func Describe(id string) (ModelDescriptor, error) {
	d, ok := modelIndex[id]
	if !ok {
		return ModelDescriptor{}, Errorf(KindModelUnavailable, "unknown model %q", id)
	}
	return d, nil
}

// Models returns the supported models in display order.
func Models() []ModelDescriptor {
	out := make([]ModelDescriptor, len(modelTable))
	copy(out, modelTable)
	return out
}

// ModelsFor returns the supported models of one provider.
func ModelsFor(p Provider) []ModelDescriptor {
	var out []ModelDescriptor
	for _, d := range modelTable {
		if d.Provider == p {
			out = append(out, d)
		}
	}
	return out
}
