// Package gemini wraps the Google generative AI SDK as a plain text generator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey is returned when no API key is configured
var ErrMissingAPIKey = errors.New("gemini API key not configured")

// Config holds client settings
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // empty selects the public endpoint
	Timeout time.Duration
}

// Client generates text with a Gemini model
type Client struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, cfg Config, log zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(cfg.BaseURL, "/") + "/"}
	}
	if cfg.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{
		client: client,
		model:  cfg.Model,
		log:    log.With().Str("client", "gemini").Str("model", cfg.Model).Logger(),
	}, nil
}

// Generate sends prompt under the given system instruction and returns the reply text
func (c *Client) Generate(ctx context.Context, instruction, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if instruction != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: instruction}}}
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("model %s returned an empty response", c.model)
	}

	c.log.Debug().
		Dur("elapsed", time.Since(start)).
		Int("chars", len(text)).
		Msg("Generated text")
	return text, nil
}
