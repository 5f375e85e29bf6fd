// Package anthropic scores layers with the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	// Name identifies the provider in layer results and cost accounting.
	Name = "anthropic"
	// Endpoint is the Messages API URL.
	Endpoint = "https://api.anthropic.com/v1/messages"
	// APIVersion is sent in the anthropic-version header.
	APIVersion   = "2023-06-01"
	defaultModel = "claude-sonnet-4-20250514"
	maxTokens    = 2048
)

var (
	ErrMissingAPIKey = errors.New("anthropic api key is required")
	ErrEmptyResponse = errors.New("no text content in anthropic response")
)

// Option configures a Provider.
type Option func(*Provider)

// WithEndpoint overrides the Messages API URL.
func WithEndpoint(url string) Option {
	return func(p *Provider) {
		if url != "" {
			p.endpoint = url
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// Provider is a minimal Messages API client.
type Provider struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

// New creates a Provider.
func New(apiKey, model string, opts ...Option) (*Provider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	p := &Provider{
		apiKey:     apiKey,
		model:      model,
		endpoint:   Endpoint,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns "anthropic".
func (p *Provider) Name() string { return Name }

// Generate sends prompt as a single user message and returns the concatenated
// text blocks of the reply.
func (p *Provider) Generate(ctx context.Context, prompt, systemInstruction string) (text string, err error) {
	body, err := json.Marshal(messagesRequest{
		Model:       p.model,
		MaxTokens:   maxTokens,
		System:      strings.TrimSpace(systemInstruction),
		Temperature: 0.2,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", p.apiKey)
	req.Header.Set("Anthropic-Version", APIVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response body")
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = string(raw)
		}
		return "", errors.Errorf("API request failed with status %d: %s", resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(raw) {
		return "", errors.Errorf("invalid JSON in response: %s", string(raw))
	}

	var b strings.Builder
	gjson.GetBytes(raw, `content.#(type=="text")#.text`).ForEach(func(_, v gjson.Result) bool {
		b.WriteString(v.String())
		return true
	})
	text = strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
