package cattus

import (
	"context"
	"sort"
	"sync"

	"github.com/cattus-org/cattus-api/models"
)

// FetchPage retrieves one page of activities for whatever subject the
// timeline is bound to. Implementations come from Client (ActivitiesByCat et
// al.) curried over a subject id.
type FetchPage func(ctx context.Context, offset, limit int) ([]models.Activity, error)

// Timeline maintains the ordered activity list behind a feed view: first
// page, incremental load-more, and refresh on realtime signals.
//
// On a realtime signal callers should use Refresh, which re-fetches exactly
// the pages already on screen. The old dashboard replaced the whole list
// with page zero on every push, dropping pages the user had scrolled into;
// LoadFirstPage still does that for callers that want the snap-back.
type Timeline struct {
	mu         sync.Mutex
	fetch      FetchPage
	pageSize   int
	items      []models.Activity
	pages      int
	hasMore    bool
	loading    bool
	generation uint64
}

// NewTimeline binds a timeline to a fetch function and page size.
func NewTimeline(fetch FetchPage, pageSize int) *Timeline {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &Timeline{fetch: fetch, pageSize: pageSize}
}

// Rebind points the timeline at a new subject and clears all loaded state.
// Responses still in flight for the previous subject are discarded when they
// land.
func (t *Timeline) Rebind(fetch FetchPage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
	t.fetch = fetch
	t.items = nil
	t.pages = 0
	t.hasMore = false
	t.loading = false
}

// LoadFirstPage resets the cursor and replaces the whole list with page zero.
func (t *Timeline) LoadFirstPage(ctx context.Context) error {
	fetch, gen, ok := t.begin()
	if !ok {
		return nil
	}
	page, err := fetch(ctx, 0, t.pageSize)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false
	if gen != t.generation {
		return nil // subject changed while the request was in flight
	}
	if err != nil {
		// Last-known-good list stays in place.
		return err
	}
	t.items = page
	t.pages = 1
	t.hasMore = len(page) == t.pageSize
	return nil
}

// LoadNextPage appends the next page. Calling it with no more pages, or while
// another load is running, is a no-op.
func (t *Timeline) LoadNextPage(ctx context.Context) error {
	t.mu.Lock()
	if t.loading || !t.hasMore || t.fetch == nil {
		t.mu.Unlock()
		return nil
	}
	t.loading = true
	fetch := t.fetch
	offset := t.pages * t.pageSize
	gen := t.generation
	t.mu.Unlock()

	page, err := fetch(ctx, offset, t.pageSize)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false
	if gen != t.generation {
		return nil
	}
	if err != nil {
		return err
	}
	t.items = append(t.items, dedupe(t.items, page)...)
	t.pages++
	t.hasMore = len(page) == t.pageSize
	return nil
}

// Refresh re-fetches every page currently on screen, so a push update never
// shrinks the list under the user's cursor. With nothing loaded yet it
// behaves like LoadFirstPage.
func (t *Timeline) Refresh(ctx context.Context) error {
	t.mu.Lock()
	if t.loading || t.fetch == nil {
		t.mu.Unlock()
		return nil
	}
	pages := t.pages
	if pages == 0 {
		pages = 1
	}
	t.loading = true
	fetch := t.fetch
	gen := t.generation
	t.mu.Unlock()

	fresh := make([]models.Activity, 0, pages*t.pageSize)
	var lastLen int
	var err error
	for p := 0; p < pages; p++ {
		var page []models.Activity
		page, err = fetch(ctx, p*t.pageSize, t.pageSize)
		if err != nil {
			break
		}
		fresh = append(fresh, dedupe(fresh, page)...)
		lastLen = len(page)
		if lastLen < t.pageSize {
			break
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false
	if gen != t.generation {
		return nil
	}
	if err != nil {
		return err
	}
	t.items = fresh
	t.pages = pages
	t.hasMore = lastLen == t.pageSize
	return nil
}

// Items returns a copy of the displayed list.
func (t *Timeline) Items() []models.Activity {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Activity, len(t.items))
	copy(out, t.items)
	return out
}

// HasMore reports whether the last fetched page was full.
func (t *Timeline) HasMore() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasMore
}

// Len returns the number of displayed items.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

func (t *Timeline) begin() (FetchPage, uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loading || t.fetch == nil {
		return nil, 0, false
	}
	t.loading = true
	return t.fetch, t.generation, true
}

// dedupe filters out of page anything already present in existing, keyed by
// ID. Backends with consistent pagination never trigger this; it guards
// against an insert landing between two page fetches.
func dedupe(existing, page []models.Activity) []models.Activity {
	if len(existing) == 0 {
		return page
	}
	seen := make(map[int64]struct{}, len(existing))
	for i := range existing {
		seen[existing[i].ID] = struct{}{}
	}
	out := page[:0:0]
	for _, a := range page {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Merge combines feeds from multiple sources (typically several cameras)
// into one list sorted by recency. Ties on the start time fall back to the
// higher ID first so the order is deterministic.
func Merge(feeds ...[]models.Activity) []models.Activity {
	var total int
	for _, f := range feeds {
		total += len(f)
	}
	merged := make([]models.Activity, 0, total)
	for _, f := range feeds {
		merged = append(merged, f...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].StartedAt.Equal(merged[j].StartedAt) {
			return merged[i].StartedAt.After(merged[j].StartedAt)
		}
		return merged[i].ID > merged[j].ID
	})
	return merged
}
