package types

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination is offset/limit based. Totals are not exposed; clients decide
// whether more pages exist from the size of the page they got back.
const (
	// DefaultLimit is the page size used by full list views.
	DefaultLimit = 50
	// MaxLimit is the backend-enforced ceiling for a single page.
	MaxLimit = 50
	// FeedPageSize is the page size of the sidebar activity feeds.
	FeedPageSize = 5
)

// ListParams carries the pagination window of a list request.
type ListParams struct {
	Offset int
	Limit  int
}

// ParseListParams extracts offset/limit from the query string, clamping them
// to sane bounds. Missing or malformed values fall back to the defaults.
func ParseListParams(c *gin.Context) ListParams {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return ListParams{Offset: offset, Limit: limit}
}

// HasMore is the pagination heuristic used across the product: a full page
// means there is probably another one. It is not an authoritative total.
func HasMore(resultLen, limit int) bool {
	return limit > 0 && resultLen == limit
}
