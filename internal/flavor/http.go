package flavor

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/airslash/airslash/internal/config"
)

// Prompt is the request sent to a text model for score.
func Prompt(score int) string {
	return fmt.Sprintf("I just played a fruit slashing game and got a score of %d. "+
		`Give me a very short, energetic, "Sensei-style" one-liner encouragement (under 15 words) in Chinese.`, score)
}

// HTTPGenerator asks a Gemini-compatible model for the message. The
// endpoint from the config replaces the SDK's default base URL.
type HTTPGenerator struct {
	client *genai.Client
	model  string
	gen    *genai.GenerateContentConfig
}

// NewHTTPGenerator builds the model client. httpClient may be nil.
func NewHTTPGenerator(ctx context.Context, cfg config.FlavorConfig, apiKey string, httpClient *http.Client) (*HTTPGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.Endpoint},
	})
	if err != nil {
		return nil, fmt.Errorf("flavor model client: %w", err)
	}
	return &HTTPGenerator{
		client: client,
		model:  cfg.Model,
		gen:    &genai.GenerateContentConfig{Temperature: genai.Ptr(float32(cfg.Temperature))},
	}, nil
}

// Generate returns the text of the first candidate, or an empty string when
// the model returned none.
func (g *HTTPGenerator) Generate(ctx context.Context, score int) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(Prompt(score)), g.gen)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
