package domain

import "context"

// Store is the conversation storage contract consumed by the chat layer.
// Implementations own all thread and item records; every value returned is
// an independent copy, and every value passed in is copied before storage.
//
// The request context carries caller identity for production
// implementations to make authorization decisions; the in-memory reference
// implementation ignores it.
type Store interface {
	// LoadThread returns metadata only, never embedded items.
	// Returns ErrNotFound for an unknown thread.
	LoadThread(ctx context.Context, threadID string) (ThreadMetadata, error)

	// SaveThread upserts by identifier. A new thread starts with an empty
	// item list; an existing thread has only its metadata replaced. Any
	// items embedded on the value are stripped before storing.
	SaveThread(ctx context.Context, thread Thread) error

	// LoadThreads pages over all threads sorted by creation timestamp.
	// The after cursor is the identifier of the last record seen; an
	// unknown cursor restarts from the beginning.
	LoadThreads(ctx context.Context, limit int, after string, order SortOrder) (Page[ThreadMetadata], error)

	// DeleteThread removes the thread and all its items. Idempotent.
	DeleteThread(ctx context.Context, threadID string) error

	// LoadThreadItems pages over one thread's items sorted by creation
	// timestamp. A thread that has never been written yields an empty
	// page, not an error.
	LoadThreadItems(ctx context.Context, threadID string, after string, limit int, order SortOrder) (Page[ThreadItem], error)

	// AddThreadItem always appends, creating the thread implicitly if it
	// does not exist. Duplicate item identifiers are not checked.
	AddThreadItem(ctx context.Context, threadID string, item ThreadItem) error

	// SaveItem upserts by item identifier within the thread, replacing in
	// place when the identifier exists and appending otherwise.
	SaveItem(ctx context.Context, threadID string, item ThreadItem) error

	// LoadItem returns ErrNotFound when the thread has no such item; a
	// missing thread is treated as a thread with no items.
	LoadItem(ctx context.Context, threadID, itemID string) (ThreadItem, error)

	// DeleteThreadItem removes the item if present. Idempotent; no error
	// when the thread or item does not exist.
	DeleteThreadItem(ctx context.Context, threadID, itemID string) error

	// Attachment operations are part of the contract but unsupported by
	// the reference store; each returns ErrUnsupported.
	SaveAttachment(ctx context.Context, attachment Attachment) error
	LoadAttachment(ctx context.Context, attachmentID string) (Attachment, error)
	DeleteAttachment(ctx context.Context, attachmentID string) error
}
