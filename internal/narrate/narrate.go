// Package narrate turns a rendered prompt into datasheet markdown.
package narrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/verte-zerg/cvsheet/internal/logging"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-pro"

// DefaultAPIKeyEnv is the environment variable read for the API key.
const DefaultAPIKeyEnv = "GEMINI_API_KEY"

// ErrEmptyResponse is returned when the model produces no text.
var ErrEmptyResponse = errors.New("model returned no text")

// Client generates text from a prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini generates text with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// NewGemini creates a Gemini client. An empty model selects DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string, log *zap.Logger) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("Gemini API key is required (set %s)", DefaultAPIKeyEnv)
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model, log: logging.OrNop(log)}, nil
}

// Model returns the model name requests are sent to.
func (g *Gemini) Model() string {
	return g.model
}

// Generate sends prompt to the model and returns the response text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	g.log.Info("sending request to the Gemini API", zap.String("model", g.model), zap.Int("prompt_bytes", len(prompt)))
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini request failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	g.log.Info("received response from the Gemini API", zap.Int("response_bytes", len(text)))
	return text, nil
}

// Static returns a fixed text. It serves prompt-only runs and tests.
type Static struct {
	Text string
}

// Generate returns s.Text.
func (s Static) Generate(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Text, nil
}
