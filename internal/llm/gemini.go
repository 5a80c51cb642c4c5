package llm

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// geminiClient implements LLMClient using the Gemini generateContent REST API.
type geminiClient struct {
	cfg      LLMConfig
	http     *http.Client
	observer Observer
}

// NewGeminiClient creates an LLMClient for the Gemini API.
func NewGeminiClient(cfg LLMConfig, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &geminiClient{
		cfg:      cfg,
		http:     newHTTPClient(),
		observer: observer,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func (c *geminiClient) Model() string { return c.cfg.Model }

func (c *geminiClient) headers() map[string]string {
	return map[string]string{"x-goog-api-key": c.cfg.APIKey}
}

func (c *geminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	endpoint := strings.TrimRight(c.cfg.EffectiveEndpoint(), "/") +
		"/v1beta/models/" + url.PathEscape(c.cfg.Model) + ":generateContent"

	return generate(ctx, c.cfg, c.observer, req, func(ctx context.Context, temp float64, maxTok int) (string, string, error) {
		body := geminiRequest{
			Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.UserPrompt}}}},
			GenerationConfig: geminiGenerationConfig{
				Temperature:     temp,
				MaxOutputTokens: maxTok,
			},
		}
		if req.SystemPrompt != "" {
			body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemPrompt}}}
		}
		var resp geminiResponse
		if err := postJSON(ctx, c.http, endpoint, c.headers(), body, &resp); err != nil {
			return "", "", err
		}
		return resp.text(), resp.ModelVersion, nil
	})
}

func (c *geminiClient) Available(ctx context.Context) bool {
	endpoint := strings.TrimRight(c.cfg.EffectiveEndpoint(), "/") + "/v1beta/models/" + url.PathEscape(c.cfg.Model)
	return reachable(ctx, c.http, endpoint, c.headers())
}
