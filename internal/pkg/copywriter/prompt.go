package copywriter

import (
	"fmt"
	"strings"
)

const (
	// VariationsPerCall is the number of variations the model is asked for.
	VariationsPerCall = 5
	// MaxPromptContextRunes bounds how much page text reaches the prompt.
	MaxPromptContextRunes = 1000
)

// Request carries the product inputs for one generation.
type Request struct {
	ProductName string
	ValueProps  []string
	BrandVoice  string
	// Context is page text; empty when the fetch produced nothing.
	Context string
}

func buildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert ad copywriter. Generate %d different ad copy variations for the following product.\n\n", VariationsPerCall)
	fmt.Fprintf(&b, "Product: %s\n", req.ProductName)
	fmt.Fprintf(&b, "Value Propositions: %s\n", strings.Join(req.ValueProps, ", "))
	fmt.Fprintf(&b, "Brand Voice: %s\n", req.BrandVoice)

	if ctx := firstRunes(req.Context, MaxPromptContextRunes); ctx != "" {
		fmt.Fprintf(&b, "\nWebsite Content Context:\n%s\n", ctx)
	}

	fmt.Fprintf(&b, `
Generate %d ad copy variations with different strategies. Each variation should include:
- headline: 30-90 characters, attention-grabbing
- body: 90-180 characters, compelling message
- cta: 15-30 characters, clear call-to-action
- strategy: Brief description of the approach used

Return ONLY valid JSON in this exact format:
{
  "variations": [
    {
      "headline": "...",
      "body": "...",
      "cta": "...",
      "strategy": "..."
    }
  ]
}
`, VariationsPerCall)

	return b.String()
}

func firstRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
