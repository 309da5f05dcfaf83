package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/helpdock/helpdock/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newThread(id, title string, createdAt time.Time) domain.Thread {
	return domain.Thread{
		ThreadMetadata: domain.ThreadMetadata{
			ID:        id,
			Title:     title,
			CreatedAt: createdAt,
		},
	}
}

func newItem(id string, createdAt time.Time) domain.ThreadItem {
	return domain.ThreadItem{
		ID:        id,
		Type:      domain.ItemTypeMessage,
		Role:      domain.RoleUser,
		Content:   json.RawMessage(`{"text":"hello"}`),
		CreatedAt: createdAt,
	}
}

func TestSaveThreadRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	thread := newThread("t1", "Billing question", created)
	thread.Metadata = map[string]any{"customer": "acme"}

	require.NoError(t, store.SaveThread(ctx, thread))

	got, err := store.LoadThread(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "Billing question", got.Title)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, map[string]any{"customer": "acme"}, got.Metadata)
}

func TestSaveThreadStripsEmbeddedItems(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	thread := newThread("t1", "With items", time.Now())
	thread.Items = []domain.ThreadItem{newItem("i1", time.Now())}
	require.NoError(t, store.SaveThread(ctx, thread))

	// Embedded items must not leak into the item list.
	page, err := store.LoadThreadItems(ctx, "t1", "", 10, domain.OrderAsc)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.False(t, page.HasMore)
}

func TestSaveThreadPreservesItemsOnMetadataUpdate(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.SaveThread(ctx, newThread("t1", "Old title", time.Now())))
	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("i1", time.Now())))

	require.NoError(t, store.SaveThread(ctx, newThread("t1", "New title", time.Now())))

	meta, err := store.LoadThread(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "New title", meta.Title)

	page, err := store.LoadThreadItems(ctx, "t1", "", 10, domain.OrderAsc)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
}

func TestLoadThreadNotFound(t *testing.T) {
	store := NewStore()

	_, err := store.LoadThread(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadThreadsPagination(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("t%d", i+1)
		require.NoError(t, store.SaveThread(ctx, newThread(id, "", base.Add(time.Duration(i)*time.Minute))))
	}

	page, err := store.LoadThreads(ctx, 2, "", domain.OrderDesc)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "t5", page.Data[0].ID)
	assert.Equal(t, "t4", page.Data[1].ID)
	assert.True(t, page.HasMore)
	assert.Equal(t, "t4", page.After)

	page, err = store.LoadThreads(ctx, 2, page.After, domain.OrderDesc)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "t3", page.Data[0].ID)
	assert.Equal(t, "t2", page.Data[1].ID)
	assert.True(t, page.HasMore)

	page, err = store.LoadThreads(ctx, 2, page.After, domain.OrderDesc)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "t1", page.Data[0].ID)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.After)
}

func TestLoadThreadsPaginationWithEqualTimestamps(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	// All threads share one creation time; the cursor walk must still
	// visit every thread exactly once, in insertion order.
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	const total = 12
	for i := 0; i < total; i++ {
		id := fmt.Sprintf("t%02d", i+1)
		require.NoError(t, store.SaveThread(ctx, newThread(id, "", created)))
	}

	for _, order := range []domain.SortOrder{domain.OrderAsc, domain.OrderDesc} {
		var seen []string
		after := ""
		for {
			page, err := store.LoadThreads(ctx, 1, after, order)
			require.NoError(t, err)
			for _, meta := range page.Data {
				seen = append(seen, meta.ID)
			}
			if !page.HasMore {
				break
			}
			after = page.After
		}

		require.Len(t, seen, total, "order %s", order)
		for i := 0; i < total; i++ {
			assert.Equal(t, fmt.Sprintf("t%02d", i+1), seen[i], "order %s", order)
		}
	}
}

func TestLoadThreadsUnknownCursorRestarts(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, store.SaveThread(ctx, newThread("t1", "", base)))
	require.NoError(t, store.SaveThread(ctx, newThread("t2", "", base.Add(time.Minute))))

	page, err := store.LoadThreads(ctx, 10, "no-such-cursor", domain.OrderAsc)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "t1", page.Data[0].ID)
}

func TestLoadThreadsInvalidOrder(t *testing.T) {
	store := NewStore()

	_, err := store.LoadThreads(context.Background(), 10, "", domain.SortOrder("sideways"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestDeleteThreadCascades(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.SaveThread(ctx, newThread("t1", "Doomed", time.Now())))
	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("i1", time.Now())))

	require.NoError(t, store.DeleteThread(ctx, "t1"))

	_, err := store.LoadThread(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	page, err := store.LoadThreadItems(ctx, "t1", "", 10, domain.OrderAsc)
	require.NoError(t, err)
	assert.Empty(t, page.Data)

	// Deleting again is a no-op.
	assert.NoError(t, store.DeleteThread(ctx, "t1"))
}

func TestLoadThreadItemsScenario(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("i1", time.Unix(1, 0))))
	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("i2", time.Unix(2, 0))))
	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("i3", time.Unix(3, 0))))

	page, err := store.LoadThreadItems(ctx, "t1", "", 2, domain.OrderAsc)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "i1", page.Data[0].ID)
	assert.Equal(t, "i2", page.Data[1].ID)
	assert.True(t, page.HasMore)
	assert.Equal(t, "i2", page.After)

	page, err = store.LoadThreadItems(ctx, "t1", "i2", 2, domain.OrderAsc)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "i3", page.Data[0].ID)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.After)
}

func TestLoadThreadItemsPaginationComplete(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	const total = 7
	for i := 0; i < total; i++ {
		item := newItem(fmt.Sprintf("i%d", i+1), base.Add(time.Duration(i)*time.Second))
		require.NoError(t, store.AddThreadItem(ctx, "t1", item))
	}

	for _, order := range []domain.SortOrder{domain.OrderAsc, domain.OrderDesc} {
		var seen []string
		after := ""
		for {
			page, err := store.LoadThreadItems(ctx, "t1", after, 3, order)
			require.NoError(t, err)
			for _, item := range page.Data {
				seen = append(seen, item.ID)
			}
			if !page.HasMore {
				break
			}
			after = page.After
		}

		require.Len(t, seen, total, "order %s", order)
		for i := 1; i < len(seen); i++ {
			assert.NotEqual(t, seen[i-1], seen[i])
		}
		if order == domain.OrderAsc {
			assert.Equal(t, "i1", seen[0])
			assert.Equal(t, "i7", seen[total-1])
		} else {
			assert.Equal(t, "i7", seen[0])
			assert.Equal(t, "i1", seen[total-1])
		}
	}
}

func TestLoadThreadItemsUnknownThread(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	page, err := store.LoadThreadItems(ctx, "ghost", "", 10, domain.OrderAsc)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.False(t, page.HasMore)

	// The read must not materialize a thread visible elsewhere.
	threads, err := store.LoadThreads(ctx, 10, "", domain.OrderAsc)
	require.NoError(t, err)
	assert.Empty(t, threads.Data)
}

func TestAddThreadItemCreatesThread(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("i1", time.Now())))

	meta, err := store.LoadThread(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", meta.ID)
	assert.False(t, meta.CreatedAt.IsZero())
}

func TestAddVersusSaveItem(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	// Add never deduplicates.
	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("dup", time.Unix(1, 0))))
	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("dup", time.Unix(2, 0))))

	page, err := store.LoadThreadItems(ctx, "t1", "", 10, domain.OrderAsc)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	// SaveItem upserts in place.
	require.NoError(t, store.SaveItem(ctx, "t2", newItem("one", time.Unix(1, 0))))
	updated := newItem("one", time.Unix(1, 0))
	updated.Content = json.RawMessage(`{"text":"edited"}`)
	require.NoError(t, store.SaveItem(ctx, "t2", updated))

	page, err = store.LoadThreadItems(ctx, "t2", "", 10, domain.OrderAsc)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.JSONEq(t, `{"text":"edited"}`, string(page.Data[0].Content))
}

func TestSaveItemIdempotent(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Unix(1, 0)
	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("a", base)))
	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("b", base.Add(time.Second))))

	item := newItem("a", base)
	require.NoError(t, store.SaveItem(ctx, "t1", item))
	require.NoError(t, store.SaveItem(ctx, "t1", item))

	page, err := store.LoadThreadItems(ctx, "t1", "", 10, domain.OrderAsc)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "a", page.Data[0].ID)
	assert.Equal(t, "b", page.Data[1].ID)
}

func TestLoadItem(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("i1", time.Now())))

	item, err := store.LoadItem(ctx, "t1", "i1")
	require.NoError(t, err)
	assert.Equal(t, "i1", item.ID)

	_, err = store.LoadItem(ctx, "t1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// A missing thread behaves like a thread with no items.
	_, err = store.LoadItem(ctx, "no-thread", "i1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteThreadItem(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("i1", time.Unix(1, 0))))
	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("i2", time.Unix(2, 0))))

	require.NoError(t, store.DeleteThreadItem(ctx, "t1", "i1"))

	page, err := store.LoadThreadItems(ctx, "t1", "", 10, domain.OrderAsc)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "i2", page.Data[0].ID)

	// Idempotent, including for unknown threads.
	assert.NoError(t, store.DeleteThreadItem(ctx, "t1", "i1"))
	assert.NoError(t, store.DeleteThreadItem(ctx, "ghost", "i1"))
}

func TestDefensiveCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	thread := newThread("t1", "Original", time.Now())
	thread.Metadata = map[string]any{"key": "value"}
	require.NoError(t, store.SaveThread(ctx, thread))

	// Mutating the written value must not affect the store.
	thread.Title = "mutated"
	thread.Metadata["key"] = "mutated"

	got, err := store.LoadThread(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)
	assert.Equal(t, "value", got.Metadata["key"])

	// Mutating a read result must not affect a later read.
	got.Metadata["key"] = "mutated-again"
	again, err := store.LoadThread(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "value", again.Metadata["key"])

	item := newItem("i1", time.Now())
	require.NoError(t, store.AddThreadItem(ctx, "t1", item))
	item.Content[2] = 'X'

	stored, err := store.LoadItem(ctx, "t1", "i1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hello"}`, string(stored.Content))

	stored.Content[2] = 'Y'
	fresh, err := store.LoadItem(ctx, "t1", "i1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hello"}`, string(fresh.Content))
}

func TestDefensiveCopiesNestedMetadata(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	thread := newThread("t1", "Nested", time.Now())
	thread.Metadata = map[string]any{
		"customer": map[string]any{"name": "acme"},
		"tags":     []any{"billing"},
	}
	require.NoError(t, store.SaveThread(ctx, thread))

	// Mutating nested values on the written thread must not reach the store.
	thread.Metadata["customer"].(map[string]any)["name"] = "mutated"
	thread.Metadata["tags"].([]any)[0] = "mutated"

	got, err := store.LoadThread(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Metadata["customer"].(map[string]any)["name"])
	assert.Equal(t, "billing", got.Metadata["tags"].([]any)[0])

	// Same for nested values on a read result.
	got.Metadata["customer"].(map[string]any)["name"] = "mutated-again"
	got.Metadata["tags"].([]any)[0] = "mutated-again"

	again, err := store.LoadThread(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "acme", again.Metadata["customer"].(map[string]any)["name"])
	assert.Equal(t, "billing", again.Metadata["tags"].([]any)[0])
}

func TestSaveThreadPreservesCreatedAt(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveThread(ctx, newThread("t1", "Original", created)))

	update := newThread("t1", "Renamed", created.Add(time.Hour))
	require.NoError(t, store.SaveThread(ctx, update))

	got, err := store.LoadThread(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, created, got.CreatedAt)
}

func TestInsertionOrderIndependentOfTimestamps(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	// Inserted out of timestamp order; sort-on-read still orders by
	// creation time.
	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("late", time.Unix(10, 0))))
	require.NoError(t, store.AddThreadItem(ctx, "t1", newItem("early", time.Unix(1, 0))))

	page, err := store.LoadThreadItems(ctx, "t1", "", 10, domain.OrderAsc)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "early", page.Data[0].ID)
	assert.Equal(t, "late", page.Data[1].ID)
}

func TestAttachmentsUnsupported(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.SaveAttachment(ctx, domain.Attachment{ID: "att_1", Name: "invoice.pdf"})
	assert.ErrorIs(t, err, domain.ErrUnsupported)

	_, err = store.LoadAttachment(ctx, "att_1")
	assert.ErrorIs(t, err, domain.ErrUnsupported)

	err = store.DeleteAttachment(ctx, "att_1")
	assert.ErrorIs(t, err, domain.ErrUnsupported)
}
