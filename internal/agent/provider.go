package agent

import (
	"context"

	"github.com/helpdock/helpdock/internal/domain"
)

// Request contains one assistant turn: the user's question plus the prior
// conversation items for context.
type Request struct {
	Question string
	History  []domain.ThreadItem
}

// Citation identifies a knowledge-base document backing part of a reply.
type Citation struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename,omitempty"`
}

// Reply contains the assistant's answer.
type Reply struct {
	Content    string
	Citations  []Citation
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for assistant backends.
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Respond generates a grounded answer for one user turn
	Respond(ctx context.Context, req Request) (*Reply, error)
}
