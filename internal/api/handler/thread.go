package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/helpdock/helpdock/internal/api/response"
	"github.com/helpdock/helpdock/internal/domain"
	"github.com/helpdock/helpdock/internal/service"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ThreadHandler exposes the conversation store's thread and item operations.
type ThreadHandler struct {
	store       domain.Store
	chatService *service.ChatService
}

// NewThreadHandler creates a new thread handler
func NewThreadHandler(store domain.Store, chatService *service.ChatService) *ThreadHandler {
	return &ThreadHandler{store: store, chatService: chatService}
}

// pageParams parses limit/after/order query parameters.
func pageParams(r *http.Request, fallback domain.SortOrder) (int, string, domain.SortOrder, error) {
	limit := defaultPageLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	order, err := domain.ParseSortOrder(r.URL.Query().Get("order"), fallback)
	if err != nil {
		return 0, "", "", err
	}

	return limit, r.URL.Query().Get("after"), order, nil
}

// List returns a page of threads, newest first by default.
func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, after, order, err := pageParams(r, domain.OrderDesc)
	if err != nil {
		storeError(w, err)
		return
	}

	page, err := h.store.LoadThreads(r.Context(), limit, after, order)
	if err != nil {
		storeError(w, err)
		return
	}

	response.OK(w, page)
}

// Create starts an empty thread.
func (h *ThreadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string         `json:"title"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Optional body
	}

	meta, err := h.chatService.CreateThread(r.Context(), req.Title, req.Metadata)
	if err != nil {
		storeError(w, err)
		return
	}

	response.Created(w, meta)
}

// Get returns thread metadata.
func (h *ThreadHandler) Get(w http.ResponseWriter, r *http.Request) {
	meta, err := h.store.LoadThread(r.Context(), chi.URLParam(r, "threadID"))
	if err != nil {
		storeError(w, err)
		return
	}

	response.OK(w, meta)
}

// Delete removes a thread and all its items.
func (h *ThreadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteThread(r.Context(), chi.URLParam(r, "threadID")); err != nil {
		storeError(w, err)
		return
	}

	response.NoContent(w)
}

// ListItems returns a page of a thread's items, oldest first by default.
func (h *ThreadHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	limit, after, order, err := pageParams(r, domain.OrderAsc)
	if err != nil {
		storeError(w, err)
		return
	}

	page, err := h.store.LoadThreadItems(r.Context(), chi.URLParam(r, "threadID"), after, limit, order)
	if err != nil {
		storeError(w, err)
		return
	}

	response.OK(w, page)
}

// GetItem returns a single thread item.
func (h *ThreadHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.LoadItem(r.Context(), chi.URLParam(r, "threadID"), chi.URLParam(r, "itemID"))
	if err != nil {
		storeError(w, err)
		return
	}

	response.OK(w, item)
}

// DeleteItem removes a single thread item.
func (h *ThreadHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteThreadItem(r.Context(), chi.URLParam(r, "threadID"), chi.URLParam(r, "itemID"))
	if err != nil {
		storeError(w, err)
		return
	}

	response.NoContent(w)
}
