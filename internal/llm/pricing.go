package llm

import "strings"

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of a request with the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1e6
}

// LookupCost returns the price of a model, or nil when unknown. Dated
// snapshots ("claude-haiku-4-5-20251001") and OpenRouter vendor prefixes
// ("openai/gpt-4o-mini") resolve to their family entry.
func LookupCost(model string) *ModelCost {
	if i := strings.LastIndexByte(model, '/'); i >= 0 {
		model = model[i+1:]
	}
	var (
		best    ModelCost
		bestLen int
	)
	for _, p := range modelPrices {
		if strings.HasPrefix(model, p.prefix) && len(p.prefix) > bestLen {
			best, bestLen = p.cost, len(p.prefix)
		}
	}
	if bestLen == 0 {
		return nil
	}
	return &best
}

// modelPrices lists list prices for the model families the providers
// default to or alias. Longest prefix wins.
var modelPrices = []struct {
	prefix string
	cost   ModelCost
}{
	{"claude-3-haiku", ModelCost{0.25, 1.25}},
	{"claude-3-5-haiku", ModelCost{0.8, 4}},
	{"claude-3-5-sonnet", ModelCost{3, 15}},
	{"claude-3-7-sonnet", ModelCost{3, 15}},
	{"claude-haiku-4-5", ModelCost{1, 5}},
	{"claude-sonnet-4", ModelCost{3, 15}},
	{"claude-opus-4", ModelCost{15, 75}},
	{"claude-opus-4-5", ModelCost{5, 25}},

	{"gpt-4o", ModelCost{2.5, 10}},
	{"gpt-4o-mini", ModelCost{0.15, 0.6}},
	{"gpt-4.1", ModelCost{2, 8}},
	{"gpt-4.1-mini", ModelCost{0.4, 1.6}},
	{"gpt-4.1-nano", ModelCost{0.1, 0.4}},
	{"gpt-5", ModelCost{1.25, 10}},
	{"gpt-5-mini", ModelCost{0.25, 2}},
	{"gpt-5-nano", ModelCost{0.05, 0.4}},
	{"o3-mini", ModelCost{1.1, 4.4}},
	{"o4-mini", ModelCost{1.1, 4.4}},

	{"gemini-1.5-flash", ModelCost{0.075, 0.3}},
	{"gemini-1.5-pro", ModelCost{1.25, 5}},
	{"gemini-2.0-flash", ModelCost{0.1, 0.4}},
	{"gemini-2.0-flash-lite", ModelCost{0.075, 0.3}},
	{"gemini-2.5-flash", ModelCost{0.3, 2.5}},
	{"gemini-2.5-flash-lite", ModelCost{0.1, 0.4}},
	{"gemini-2.5-pro", ModelCost{1.25, 10}},
}
