// Package memory provides the in-memory reference implementation of the
// conversation store. Data lives for the process lifetime only; production
// deployments should replace it with a database-backed implementation that
// enforces authorization from the request context.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/helpdock/helpdock/internal/domain"
)

// threadState pairs a thread's metadata with its items in insertion order.
type threadState struct {
	meta  domain.ThreadMetadata
	items []domain.ThreadItem
}

// Store keeps threads and items in process memory behind a single RWMutex.
// Multiple isolated instances can coexist; there is no package-level state.
// order tracks thread insertion order so list reads have a deterministic
// base before the creation-time sort; without it, map iteration would
// shuffle equal-timestamp threads between pagination calls.
type Store struct {
	mu      sync.RWMutex
	threads map[string]*threadState
	order   []string
}

var _ domain.Store = (*Store)(nil)

// NewStore creates an empty in-memory conversation store.
func NewStore() *Store {
	return &Store{threads: make(map[string]*threadState)}
}

func (s *Store) LoadThread(ctx context.Context, threadID string) (domain.ThreadMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.threads[threadID]
	if !ok {
		return domain.ThreadMetadata{}, fmt.Errorf("thread %s: %w", threadID, domain.ErrNotFound)
	}
	return cloneMetadata(state.meta), nil
}

func (s *Store) SaveThread(ctx context.Context, thread domain.Thread) error {
	meta := cloneMetadata(thread.Meta())

	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.threads[meta.ID]; ok {
		// Metadata only; the item list and the original creation
		// timestamp are untouched.
		meta.CreatedAt = state.meta.CreatedAt
		state.meta = meta
		return nil
	}
	s.threads[meta.ID] = &threadState{meta: meta}
	s.order = append(s.order, meta.ID)
	return nil
}

func (s *Store) LoadThreads(ctx context.Context, limit int, after string, order domain.SortOrder) (domain.Page[domain.ThreadMetadata], error) {
	if err := validateOrder(order); err != nil {
		return domain.Page[domain.ThreadMetadata]{}, err
	}

	s.mu.RLock()
	threads := make([]domain.ThreadMetadata, 0, len(s.order))
	for _, id := range s.order {
		threads = append(threads, cloneMetadata(s.threads[id].meta))
	}
	s.mu.RUnlock()

	sortByCreatedAt(threads, func(m domain.ThreadMetadata) time.Time { return m.CreatedAt }, order)
	return paginate(threads, after, limit, func(m domain.ThreadMetadata) string { return m.ID }), nil
}

func (s *Store) DeleteThread(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.threads[threadID]; !ok {
		return nil
	}
	delete(s.threads, threadID)
	for idx, id := range s.order {
		if id == threadID {
			s.order = append(s.order[:idx], s.order[idx+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) LoadThreadItems(ctx context.Context, threadID string, after string, limit int, order domain.SortOrder) (domain.Page[domain.ThreadItem], error) {
	if err := validateOrder(order); err != nil {
		return domain.Page[domain.ThreadItem]{}, err
	}

	// Read path never materializes a thread record; an unknown thread is
	// indistinguishable from one with no items.
	s.mu.RLock()
	var items []domain.ThreadItem
	if state, ok := s.threads[threadID]; ok {
		items = cloneItems(state.items)
	}
	s.mu.RUnlock()

	sortByCreatedAt(items, func(i domain.ThreadItem) time.Time { return i.CreatedAt }, order)
	return paginate(items, after, limit, func(i domain.ThreadItem) string { return i.ID }), nil
}

func (s *Store) AddThreadItem(ctx context.Context, threadID string, item domain.ThreadItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.materialize(threadID)
	state.items = append(state.items, cloneItem(item))
	return nil
}

func (s *Store) SaveItem(ctx context.Context, threadID string, item domain.ThreadItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.materialize(threadID)
	for idx, existing := range state.items {
		if existing.ID == item.ID {
			state.items[idx] = cloneItem(item)
			return nil
		}
	}
	state.items = append(state.items, cloneItem(item))
	return nil
}

func (s *Store) LoadItem(ctx context.Context, threadID, itemID string) (domain.ThreadItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if state, ok := s.threads[threadID]; ok {
		for _, item := range state.items {
			if item.ID == itemID {
				return cloneItem(item), nil
			}
		}
	}
	return domain.ThreadItem{}, fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
}

func (s *Store) DeleteThreadItem(ctx context.Context, threadID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.threads[threadID]
	if !ok {
		return nil
	}
	kept := state.items[:0]
	for _, item := range state.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	state.items = kept
	return nil
}

// Attachments are intentionally unsupported: accepting uploads without
// authentication, quota enforcement, and durable blob storage is out of
// scope for the reference store.

func (s *Store) SaveAttachment(ctx context.Context, attachment domain.Attachment) error {
	return fmt.Errorf("%w: the in-memory store does not persist attachments; provide a store implementation that enforces authentication and authorization before enabling uploads", domain.ErrUnsupported)
}

func (s *Store) LoadAttachment(ctx context.Context, attachmentID string) (domain.Attachment, error) {
	return domain.Attachment{}, fmt.Errorf("%w: the in-memory store does not load attachments; provide a store implementation that enforces authentication and authorization before enabling uploads", domain.ErrUnsupported)
}

func (s *Store) DeleteAttachment(ctx context.Context, attachmentID string) error {
	return fmt.Errorf("%w: the in-memory store does not delete attachments because they are never stored", domain.ErrUnsupported)
}

// materialize returns the thread state, creating an empty record with a
// current timestamp when the thread has never been written. Callers must
// hold the write lock.
func (s *Store) materialize(threadID string) *threadState {
	state, ok := s.threads[threadID]
	if !ok {
		state = &threadState{
			meta: domain.ThreadMetadata{ID: threadID, CreatedAt: time.Now().UTC()},
		}
		s.threads[threadID] = state
		s.order = append(s.order, threadID)
	}
	return state
}

func validateOrder(order domain.SortOrder) error {
	if order != domain.OrderAsc && order != domain.OrderDesc {
		return fmt.Errorf("%w: unknown sort order %q", domain.ErrInvalidArgument, order)
	}
	return nil
}

// sortByCreatedAt sorts records by creation timestamp. The sort is stable so
// records sharing a timestamp keep their insertion order under either
// direction.
func sortByCreatedAt[T any](records []T, createdAt func(T) time.Time, order domain.SortOrder) {
	sort.SliceStable(records, func(i, j int) bool {
		if order == domain.OrderDesc {
			return createdAt(records[i]).After(createdAt(records[j]))
		}
		return createdAt(records[i]).Before(createdAt(records[j]))
	})
}

// paginate slices a sorted record list at the cursor position. The cursor is
// the identifier of the last record seen; an identifier absent from the
// current sort order restarts from the beginning.
func paginate[T any](records []T, after string, limit int, id func(T) string) domain.Page[T] {
	if limit < 0 {
		limit = 0
	}
	start := 0
	if after != "" {
		for idx, record := range records {
			if id(record) == after {
				start = idx + 1
				break
			}
		}
	}

	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	slice := records[start:end]
	hasMore := len(records) > end

	page := domain.Page[T]{Data: slice, HasMore: hasMore}
	if hasMore && len(slice) > 0 {
		page.After = id(slice[len(slice)-1])
	}
	return page
}

func cloneMetadata(meta domain.ThreadMetadata) domain.ThreadMetadata {
	out := meta
	if meta.Metadata != nil {
		out.Metadata = cloneMap(meta.Metadata)
	}
	return out
}

// cloneMap deep-copies caller metadata. Values arrive from JSON decoding, so
// the containers to recurse into are maps and slices of any.
func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return v
	}
}

func cloneItem(item domain.ThreadItem) domain.ThreadItem {
	out := item
	if item.Content != nil {
		out.Content = append([]byte(nil), item.Content...)
	}
	return out
}

func cloneItems(items []domain.ThreadItem) []domain.ThreadItem {
	out := make([]domain.ThreadItem, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out
}
