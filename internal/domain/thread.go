package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ThreadMetadata describes a conversation without its items.
type ThreadMetadata struct {
	ID        string         `json:"id"`
	Title     string         `json:"title,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Thread is a conversation together with its ordered items. The store
// addresses metadata and items independently; Thread exists so callers can
// pass both in one value, with Meta as the explicit conversion back down.
type Thread struct {
	ThreadMetadata
	Items []ThreadItem `json:"items,omitempty"`
}

// Meta returns the thread's metadata with any embedded items stripped.
func (t Thread) Meta() ThreadMetadata {
	return t.ThreadMetadata
}

// ItemRole identifies the author of a message item.
type ItemRole string

const (
	RoleUser      ItemRole = "user"
	RoleAssistant ItemRole = "assistant"
)

// Thread item types. The store does not interpret these; they exist for the
// layers above it.
const (
	ItemTypeMessage = "message"
)

// ThreadItem is one message or event within a thread. Content is an opaque
// payload owned by the caller; the store never inspects it. IDs are unique
// within a thread, not globally.
type ThreadItem struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Role      ItemRole        `json:"role,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// MessageContent is the payload carried by ItemTypeMessage items.
type MessageContent struct {
	Text      string            `json:"text"`
	Citations []MessageCitation `json:"citations,omitempty"`
}

// MessageCitation points at a source document backing a factual claim.
type MessageCitation struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename,omitempty"`
}

// NewThreadID generates a thread identifier.
func NewThreadID() string {
	return "thread_" + uuid.NewString()
}

// NewMessageItem builds a message thread item with a fresh identifier.
func NewMessageItem(role ItemRole, content MessageContent) (ThreadItem, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return ThreadItem{}, fmt.Errorf("failed to marshal message content: %w", err)
	}
	return ThreadItem{
		ID:        "msg_" + uuid.NewString(),
		Type:      ItemTypeMessage,
		Role:      role,
		Content:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// MessagePayload decodes the item's content as a message payload.
func (i ThreadItem) MessagePayload() (MessageContent, error) {
	var content MessageContent
	if err := json.Unmarshal(i.Content, &content); err != nil {
		return MessageContent{}, fmt.Errorf("failed to unmarshal message content: %w", err)
	}
	return content, nil
}
