// Package gemini scores layers with the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	// Name identifies the provider in layer results and cost accounting.
	Name         = "gemini"
	defaultModel = "gemini-2.5-flash"
)

var (
	ErrMissingAPIKey = errors.New("gemini api key is required")
	ErrEmptyResponse = errors.New("gemini api returned empty response")
)

// contentGenerator is the slice of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Provider calls Gemini with JSON output enabled.
type Provider struct {
	models    contentGenerator
	modelName string
}

// New creates a Provider for the Gemini API backend.
func New(ctx context.Context, apiKey, model string) (*Provider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newProvider(client.Models, model), nil
}

func newProvider(models contentGenerator, model string) *Provider {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Provider{models: models, modelName: model}
}

// Name returns "gemini".
func (p *Provider) Name() string { return Name }

// Model returns the configured model name.
func (p *Provider) Model() string { return p.modelName }

// Generate sends prompt with systemInstruction and returns the response text.
func (p *Provider) Generate(ctx context.Context, prompt, systemInstruction string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	}
	if s := strings.TrimSpace(systemInstruction); s != "" {
		cfg.SystemInstruction = genai.NewContentFromText(s, genai.RoleUser)
	}

	resp, err := p.models.GenerateContent(ctx, p.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
