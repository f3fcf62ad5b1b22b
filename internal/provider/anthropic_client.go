package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const anthropicAPIURL = "https://api.anthropic.com/v1/messages"
const anthropicVersion = "2023-06-01"

// AnthropicProvider is the one grounded concrete Provider adapter this
// module keeps (see SPEC_FULL.md §4.9): a minimal Anthropic Messages
// API client built directly on the wire types and SSE parser in
// anthropic.go.
//
// In the teacher those types were unused — symb's real Anthropic-family
// traffic goes through github.com/sacenox/go-opencode-ai-zen-sdk
// instead (internal/provider/zen.go, opencode.go, both dropped here as
// a non-goal per spec.md §1's "concrete model-provider HTTP clients").
// Rather than delete this vestigial wire layer, it is adapted here into
// an actually-wired, actually-exercised Provider.
type AnthropicProvider struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewAnthropic constructs an AnthropicProvider for the given model.
func NewAnthropic(apiKey, model string, opts Options) *AnthropicProvider {
	return &AnthropicProvider{
		apiKey:      apiKey,
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   8192,
		httpClient:  &http.Client{Timeout: 5 * time.Minute},
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// ChatStream implements Provider.
func (p *AnthropicProvider) ChatStream(ctx context.Context, messages []Message, tools []Tool) (<-chan StreamEvent, error) {
	system, msgs := toAnthropicMessages(messages)
	req := anthropicRequest{
		Model:       p.model,
		Messages:    msgs,
		System:      system,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		Stream:      true,
		Tools:       toAnthropicTools(tools),
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, NewTerminal(fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(body))
	if err != nil {
		return nil, NewTerminal(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewRetryable(fmt.Errorf("do request: %w", err))
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		resp.Body.Close()
		return nil, NewRetryable(fmt.Errorf("anthropic: status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, NewTerminal(fmt.Errorf("anthropic: status %d", resp.StatusCode))
	}

	ch := make(chan StreamEvent, 64)
	go func() {
		defer resp.Body.Close()
		defer close(ch)
		parseAnthropicSSEStream(ctx, resp.Body, ch)
	}()
	return ch, nil
}

// ListModels implements Provider. The Messages API has no model-list
// endpoint; symbcore's settings name models explicitly instead.
func (p *AnthropicProvider) ListModels(ctx context.Context) ([]Model, error) {
	return nil, nil
}

func (p *AnthropicProvider) Close() error { return nil }

// AnthropicFactory wires AnthropicProvider into a provider.Registry.
type AnthropicFactory struct {
	apiKey string
}

func NewAnthropicFactory(apiKey string) *AnthropicFactory {
	return &AnthropicFactory{apiKey: apiKey}
}

func (f *AnthropicFactory) Name() string { return "anthropic" }

func (f *AnthropicFactory) Create(model string, opts Options) Provider {
	if f.apiKey == "" {
		log.Warn().Msg("anthropic: no API key configured; requests will fail authentication")
	}
	return NewAnthropic(f.apiKey, model, opts)
}
