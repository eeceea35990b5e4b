// Package openai provides text generation and image labelling backed by the
// OpenAI API or any compatible server.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// Provider implements llm.Completer using chat completions.
type Provider struct {
	client    oai.Client
	model     string
	maxTokens int64
}

type config struct {
	baseURL    string
	timeout    time.Duration
	maxRetries int
	maxTokens  int64
	httpClient *http.Client
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithMaxRetries sets how often failed requests are retried. Negative keeps the SDK default.
func WithMaxRetries(n int) Option {
	return func(c *config) { c.maxRetries = n }
}

// WithMaxTokens caps completion length.
func WithMaxTokens(n int) Option {
	return func(c *config) { c.maxTokens = int64(n) }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.httpClient = hc }
}

// ClientOptions converts opts into SDK request options. The speech and
// detect packages reuse it to build their own clients.
func ClientOptions(apiKey string, opts ...Option) []option.RequestOption {
	cfg := &config{maxRetries: -1}
	for _, o := range opts {
		o(cfg)
	}
	return cfg.requestOptions(apiKey)
}

func (cfg *config) requestOptions(apiKey string) []option.RequestOption {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	switch {
	case cfg.httpClient != nil:
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.httpClient))
	case cfg.timeout > 0:
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}
	if cfg.maxRetries >= 0 {
		reqOpts = append(reqOpts, option.WithMaxRetries(cfg.maxRetries))
	}
	return reqOpts
}

// New constructs a Provider. Local OpenAI-compatible servers accept any
// non-empty key.
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}
	cfg := &config{maxRetries: -1}
	for _, o := range opts {
		o(cfg)
	}
	client := oai.NewClient(cfg.requestOptions(apiKey)...)
	return &Provider{client: client, model: model, maxTokens: cfg.maxTokens}, nil
}

// Complete sends prompt as a single user message and returns the reply text.
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	return p.complete(ctx, oai.UserMessage(prompt))
}

// Describe sends prompt together with an image and returns the reply text.
func (p *Provider) Describe(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("openai: empty image")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	url := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	parts := []oai.ChatCompletionContentPartUnionParam{
		oai.TextContentPart(prompt),
		oai.ImageContentPart(oai.ChatCompletionContentPartImageImageURLParam{URL: url, Detail: "low"}),
	}
	return p.complete(ctx, oai.UserMessage(parts))
}

func (p *Provider) complete(ctx context.Context, msg oai.ChatCompletionMessageParamUnion) (string, error) {
	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: []oai.ChatCompletionMessageParamUnion{msg},
	}
	if p.maxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(p.maxTokens)
	}
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
