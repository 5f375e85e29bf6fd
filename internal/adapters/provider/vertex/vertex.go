// Package vertex scores layers with Gemini models hosted on Vertex AI.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

const (
	// Name identifies the provider in layer results and cost accounting.
	Name            = "vertex"
	defaultLocation = "us-central1"
	defaultModel    = "gemini-1.5-flash"
)

var (
	ErrMissingProject = errors.New("vertex project is required")
	ErrEmptyResponse  = errors.New("vertex returned empty response")
)

// Provider calls a Vertex AI generative model.
type Provider struct {
	client    *genai.Client
	modelName string
}

// New dials Vertex AI for project and location.
func New(ctx context.Context, project, location, model string) (*Provider, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return nil, ErrMissingProject
	}
	if location = strings.TrimSpace(location); location == "" {
		location = defaultLocation
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, project, location)
	if err != nil {
		return nil, fmt.Errorf("create vertex client: %w", err)
	}
	return &Provider{client: client, modelName: model}, nil
}

// Name returns "vertex".
func (p *Provider) Name() string { return Name }

// Generate sends prompt with systemInstruction and returns the response text.
// A model handle is built per call since the system instruction differs by layer.
func (p *Provider) Generate(ctx context.Context, prompt, systemInstruction string) (string, error) {
	m := p.client.GenerativeModel(p.modelName)
	configure(m, systemInstruction)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp)
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	return p.client.Close()
}

func configure(m *genai.GenerativeModel, systemInstruction string) {
	m.SetTemperature(0.2)
	m.SetTopP(0.95)
	m.SetMaxOutputTokens(2048)
	m.ResponseMIMEType = "application/json"
	if s := strings.TrimSpace(systemInstruction); s != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(s)}}
	}
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
