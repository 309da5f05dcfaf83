package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/helpdock/helpdock/internal/domain"
	"github.com/helpdock/helpdock/internal/openai"
)

// historyLimit caps how many prior items are replayed as model context.
const historyLimit = 20

// OpenAIProvider implements Provider on the OpenAI Responses API with the
// file_search tool bound to the customer's vector store.
type OpenAIProvider struct {
	client        *openai.Client
	apiKey        string
	model         string
	instructions  string
	vectorStoreID string
	maxResults    int
}

// OpenAIOptions configures the OpenAI assistant provider.
type OpenAIOptions struct {
	APIKey           string
	BaseURL          string
	Model            string
	AssistantName    string
	VectorStoreID    string
	MaxSearchResults int
}

// NewOpenAIProvider creates the OpenAI-backed assistant provider.
func NewOpenAIProvider(opts OpenAIOptions) *OpenAIProvider {
	model := opts.Model
	if model == "" {
		model = "gpt-4.1-mini"
	}
	maxResults := opts.MaxSearchResults
	if maxResults <= 0 {
		maxResults = 5
	}
	return &OpenAIProvider{
		client:        openai.NewClient(opts.APIKey, opts.BaseURL),
		apiKey:        opts.APIKey,
		model:         model,
		instructions:  Instructions(opts.AssistantName),
		vectorStoreID: opts.VectorStoreID,
		maxResults:    maxResults,
	}
}

// Name returns the provider identifier
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// DefaultModel returns the default model
func (p *OpenAIProvider) DefaultModel() string {
	return p.model
}

// IsConfigured checks if provider has valid credentials
func (p *OpenAIProvider) IsConfigured() bool {
	return p.apiKey != "" && p.vectorStoreID != ""
}

// Respond runs one assistant turn over the conversation history.
func (p *OpenAIProvider) Respond(ctx context.Context, req Request) (*Reply, error) {
	input := buildInput(req)

	start := time.Now()
	resp, err := p.client.CreateResponse(ctx, openai.ResponseRequest{
		Model:        p.model,
		Instructions: p.instructions,
		Input:        input,
		Tools:        []openai.Tool{openai.FileSearchTool(p.vectorStoreID, p.maxResults)},
	})
	if err != nil {
		return nil, fmt.Errorf("assistant request failed: %w", err)
	}
	latencyMs := time.Since(start).Milliseconds()

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	var citations []Citation
	for _, a := range resp.Annotations() {
		if a.FileID == "" {
			continue
		}
		citations = append(citations, Citation{FileID: a.FileID, Filename: a.Filename})
	}

	return &Reply{
		Content:    content,
		Citations:  citations,
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
		LatencyMs:  latencyMs,
	}, nil
}

// buildInput converts stored message items into model input, ending with the
// current question. Non-message items are skipped; the store treats their
// payloads as opaque and so does the agent.
func buildInput(req Request) []openai.InputMessage {
	history := req.History
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	input := make([]openai.InputMessage, 0, len(history)+1)
	for _, item := range history {
		if item.Type != domain.ItemTypeMessage {
			continue
		}
		payload, err := item.MessagePayload()
		if err != nil || payload.Text == "" {
			continue
		}
		input = append(input, openai.InputMessage{
			Role:    string(item.Role),
			Content: payload.Text,
		})
	}
	return append(input, openai.InputMessage{Role: string(domain.RoleUser), Content: req.Question})
}
