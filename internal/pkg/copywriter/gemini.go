package copywriter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiTimeout = 60 * time.Second
)

// ErrNoCandidates is returned when the model answers without any text.
var ErrNoCandidates = errors.New("model returned no candidates")

// GenerationConfig mirrors the sampling parameters sent with every call.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultGenerationConfig holds the sampling parameters used in production.
var DefaultGenerationConfig = GenerationConfig{
	Temperature:     0.8,
	TopP:            0.95,
	TopK:            40,
	MaxOutputTokens: 2048,
}

// GeminiClient talks to the Generative Language REST API.
type GeminiClient struct {
	APIKey     string
	Model      string
	BaseURL    string
	Config     GenerationConfig
	HTTPClient *http.Client
}

func NewGeminiClient(apiKey, model, baseURL string, timeout time.Duration) *GeminiClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultGeminiBaseURL
	}
	if timeout <= 0 {
		timeout = defaultGeminiTimeout
	}
	return &GeminiClient{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Config:  DefaultGenerationConfig,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ModelName returns the identifier stored with each usage record.
func (c *GeminiClient) ModelName() string {
	return c.Model
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// Generate asks the model for variations. Transport and API errors are
// returned; unusable model text yields the single fallback variation.
func (c *GeminiClient) Generate(ctx context.Context, req Request) ([]Variation, error) {
	text, err := c.complete(ctx, buildPrompt(req))
	if err != nil {
		return nil, err
	}

	variations, err := parseVariations(text)
	if err != nil {
		fiberlog.Warnf("[Copywriter] Failed to parse model response, using fallback: %v", err)
		return []Variation{Fallback(req.ProductName)}, nil
	}
	return variations, nil
}

func (c *GeminiClient) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: c.Config,
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, url.PathEscape(c.Model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked prompt: %s", out.PromptFeedback.BlockReason)
	}

	var b strings.Builder
	for _, cand := range out.Candidates {
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	if b.Len() == 0 {
		return "", ErrNoCandidates
	}
	return b.String(), nil
}
