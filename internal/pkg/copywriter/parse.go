package copywriter

import (
	"encoding/json"
	"errors"
	"strings"
)

// FallbackStrategy labels the single variation returned when the model output
// could not be used.
const FallbackStrategy = "Fallback generic copy"

var errNoVariations = errors.New("no usable variations in model output")

// Variation is one piece of ad copy.
type Variation struct {
	Headline string `json:"headline"`
	Body     string `json:"body"`
	CTA      string `json:"cta"`
	Strategy string `json:"strategy"`
}

func (v Variation) complete() bool {
	return strings.TrimSpace(v.Headline) != "" &&
		strings.TrimSpace(v.Body) != "" &&
		strings.TrimSpace(v.CTA) != "" &&
		strings.TrimSpace(v.Strategy) != ""
}

// Fallback is the generic variation used when parsing yields nothing.
func Fallback(productName string) Variation {
	return Variation{
		Headline: "Discover " + productName,
		Body:     "Transform your experience with our innovative solution. Get started today.",
		CTA:      "Learn More",
		Strategy: FallbackStrategy,
	}
}

// parseVariations extracts the variations list from model text. Markdown code
// fences around the JSON are tolerated, as is prose before or after the
// object. Entries missing a field are dropped.
func parseVariations(text string) ([]Variation, error) {
	payload := stripFences(text)

	var out struct {
		Variations []Variation `json:"variations"`
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		start := strings.Index(payload, "{")
		end := strings.LastIndex(payload, "}")
		if start < 0 || end <= start {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload[start:end+1]), &out); err != nil {
			return nil, err
		}
	}

	usable := make([]Variation, 0, len(out.Variations))
	for _, v := range out.Variations {
		if v.complete() {
			usable = append(usable, v)
		}
	}
	if len(usable) == 0 {
		return nil, errNoVariations
	}
	return usable, nil
}

func stripFences(text string) string {
	t := strings.TrimSpace(text)
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```JSON")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}
