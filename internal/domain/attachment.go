package domain

import "time"

// Attachment describes an uploaded file. The reference store never persists
// attachments; the type exists because the store contract includes the
// attachment operations.
type Attachment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mime_type,omitempty"`
	Size      int64     `json:"size,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
