package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helpdock/helpdock/internal/agent"
	"github.com/helpdock/helpdock/internal/domain"
	"github.com/rs/zerolog/log"
)

// historyPageSize is the page size used when replaying a thread's items.
const historyPageSize = 50

// ChatService runs assistant turns against the conversation store
type ChatService struct {
	store  domain.Store
	agents *agent.Router
}

// NewChatService creates a new chat service
func NewChatService(store domain.Store, agents *agent.Router) *ChatService {
	return &ChatService{store: store, agents: agents}
}

// TurnResult is the outcome of one user turn.
type TurnResult struct {
	ThreadID         string            `json:"thread_id"`
	UserMessage      domain.ThreadItem `json:"user_message"`
	AssistantMessage domain.ThreadItem `json:"assistant_message"`
}

// CreateThread creates an empty thread with caller-supplied metadata.
func (s *ChatService) CreateThread(ctx context.Context, title string, metadata map[string]any) (domain.ThreadMetadata, error) {
	thread := domain.Thread{
		ThreadMetadata: domain.ThreadMetadata{
			ID:        domain.NewThreadID(),
			Title:     title,
			Metadata:  metadata,
			CreatedAt: time.Now().UTC(),
		},
	}
	if err := s.store.SaveThread(ctx, thread); err != nil {
		return domain.ThreadMetadata{}, fmt.Errorf("failed to create thread: %w", err)
	}
	return thread.Meta(), nil
}

// SendMessage appends the user's message to the thread, runs the assistant
// over the conversation history, and appends the assistant's reply. An empty
// threadID starts a new conversation.
func (s *ChatService) SendMessage(ctx context.Context, threadID, question string) (*TurnResult, error) {
	threadID, err := s.ensureThread(ctx, threadID, question)
	if err != nil {
		return nil, err
	}

	history, err := s.loadHistory(ctx, threadID)
	if err != nil {
		return nil, err
	}

	userItem, err := domain.NewMessageItem(domain.RoleUser, domain.MessageContent{Text: question})
	if err != nil {
		return nil, err
	}
	if err := s.store.AddThreadItem(ctx, threadID, userItem); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	provider, err := s.agents.GetProvider("")
	if err != nil {
		return nil, err
	}

	reply, err := provider.Respond(ctx, agent.Request{Question: question, History: history})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("thread_id", threadID).
		Str("model", reply.Model).
		Int("tokens", reply.TokensUsed).
		Int64("latency_ms", reply.LatencyMs).
		Msg("assistant turn completed")

	citations := make([]domain.MessageCitation, 0, len(reply.Citations))
	for _, c := range reply.Citations {
		citations = append(citations, domain.MessageCitation{FileID: c.FileID, Filename: c.Filename})
	}

	assistantItem, err := domain.NewMessageItem(domain.RoleAssistant, domain.MessageContent{
		Text:      reply.Content,
		Citations: citations,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.AddThreadItem(ctx, threadID, assistantItem); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	return &TurnResult{
		ThreadID:         threadID,
		UserMessage:      userItem,
		AssistantMessage: assistantItem,
	}, nil
}

// ensureThread resolves the target thread, creating one when the identifier
// is empty or unknown, and titling untitled threads from the first question.
func (s *ChatService) ensureThread(ctx context.Context, threadID, question string) (string, error) {
	if threadID == "" {
		meta, err := s.CreateThread(ctx, autoTitle(question), nil)
		if err != nil {
			return "", err
		}
		return meta.ID, nil
	}

	meta, err := s.store.LoadThread(ctx, threadID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		thread := domain.Thread{
			ThreadMetadata: domain.ThreadMetadata{
				ID:        threadID,
				Title:     autoTitle(question),
				CreatedAt: time.Now().UTC(),
			},
		}
		if err := s.store.SaveThread(ctx, thread); err != nil {
			return "", fmt.Errorf("failed to create thread: %w", err)
		}
		return threadID, nil
	case err != nil:
		return "", err
	}

	if meta.Title == "" {
		meta.Title = autoTitle(question)
		if err := s.store.SaveThread(ctx, domain.Thread{ThreadMetadata: meta}); err != nil {
			return "", fmt.Errorf("failed to update thread title: %w", err)
		}
	}
	return threadID, nil
}

// loadHistory replays the thread's items oldest-first, following the store's
// pagination cursor.
func (s *ChatService) loadHistory(ctx context.Context, threadID string) ([]domain.ThreadItem, error) {
	var items []domain.ThreadItem
	after := ""
	for {
		page, err := s.store.LoadThreadItems(ctx, threadID, after, historyPageSize, domain.OrderAsc)
		if err != nil {
			return nil, fmt.Errorf("failed to load thread history: %w", err)
		}
		items = append(items, page.Data...)
		if !page.HasMore {
			return items, nil
		}
		after = page.After
	}
}

// autoTitle derives a thread title from the first user message.
func autoTitle(question string) string {
	const maxTitle = 64
	runes := []rune(question)
	if len(runes) <= maxTitle {
		return question
	}
	return string(runes[:maxTitle-3]) + "..."
}
