package domain

import "fmt"

// SortOrder controls sorting by creation timestamp on list reads.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortOrder validates a caller-supplied order value. Empty input falls
// back to the given default; anything other than "asc"/"desc" is a contract
// violation.
func ParseSortOrder(value string, fallback SortOrder) (SortOrder, error) {
	switch SortOrder(value) {
	case "":
		return fallback, nil
	case OrderAsc:
		return OrderAsc, nil
	case OrderDesc:
		return OrderDesc, nil
	default:
		return "", fmt.Errorf("%w: unknown sort order %q", ErrInvalidArgument, value)
	}
}

// Page is a cursor-paginated read result. After holds the cursor for the
// next page and is set only when HasMore is true. Cursors are opaque to
// callers; they are only valid for round-tripping into the next request
// under the same sort order.
type Page[T any] struct {
	Data    []T    `json:"data"`
	HasMore bool   `json:"has_more"`
	After   string `json:"after,omitempty"`
}
