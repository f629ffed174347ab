// Package feed maintains the client's materialized view of the shared
// book feed across page fetches, refreshes, and load-more events.
package feed

import (
	"context"

	"github.com/bookworm/bookworm-go/internal/model"
)

// Fetcher retrieves one feed page. *api.Client is the production
// implementation.
type Fetcher interface {
	Feed(ctx context.Context, page, limit int) (model.FeedResponse, error)
}

// Cache folds fetched pages into a duplicate-free, stably ordered list.
// It is meant for single-goroutine (UI-loop) use: the in-flight guard is
// a cooperative flag, not a lock.
type Cache struct {
	fetcher  Fetcher
	pageSize int

	books   []model.BookResponse
	page    int
	hasMore bool

	loading    bool
	refreshing bool
	inFlight   bool

	// Responses are applied only in issue order: a response carrying a
	// sequence number older than the last applied one is dropped.
	nextSeq     uint64
	appliedSeq  uint64
	everFetched bool
}

// New creates a cache that fetches pages of the given size.
func New(fetcher Fetcher, pageSize int) *Cache {
	return &Cache{fetcher: fetcher, pageSize: pageSize, hasMore: true}
}

// Fetch retrieves the given page and folds it into the cache. Page 1
// replaces the whole view; later pages append with first-seen-order
// de-duplication by book ID. With refresh set, the refreshing flag is
// raised for the duration instead of the loading flag. A call arriving
// while another fetch is in flight is dropped.
func (c *Cache) Fetch(ctx context.Context, page int, refresh bool) error {
	if c.inFlight {
		return nil
	}
	if page < 1 {
		page = 1
	}

	c.inFlight = true
	if refresh {
		c.refreshing = true
	} else if page == 1 {
		c.loading = true
	}

	c.nextSeq++
	seq := c.nextSeq

	resp, err := c.fetcher.Feed(ctx, page, c.pageSize)

	c.inFlight = false
	c.loading = false
	c.refreshing = false

	if err != nil {
		return err
	}

	if seq < c.appliedSeq {
		// A newer response already landed; this one is stale.
		return nil
	}
	c.appliedSeq = seq

	if page == 1 {
		c.books = resp.Books
	} else {
		c.books = mergeDedup(c.books, resp.Books)
	}

	c.page = page
	c.hasMore = page < resp.TotalPages
	c.everFetched = true
	return nil
}

// LoadMore fetches the next page. It is a no-op when the last page has
// been reached or a fetch is already in flight.
func (c *Cache) LoadMore(ctx context.Context) error {
	if !c.hasMore || c.inFlight {
		return nil
	}
	page := c.page + 1
	if !c.everFetched {
		page = 1
	}
	return c.Fetch(ctx, page, false)
}

// Refresh re-fetches page 1, replacing the cache wholesale.
func (c *Cache) Refresh(ctx context.Context) error {
	return c.Fetch(ctx, 1, true)
}

// Books returns the current merged view in stable order.
func (c *Cache) Books() []model.BookResponse { return c.books }

// Page returns the last applied page number, 0 before any fetch.
func (c *Cache) Page() int { return c.page }

// HasMore reports whether pages remain beyond the last applied one.
func (c *Cache) HasMore() bool { return c.hasMore }

// Loading reports an in-flight initial page load.
func (c *Cache) Loading() bool { return c.loading }

// Refreshing reports an in-flight refresh.
func (c *Cache) Refreshing() bool { return c.refreshing }

// mergeDedup concatenates two pages keeping each book's first
// occurrence, so re-applying the same page leaves the result unchanged.
func mergeDedup(existing, incoming []model.BookResponse) []model.BookResponse {
	seen := make(map[int64]struct{}, len(existing)+len(incoming))
	merged := make([]model.BookResponse, 0, len(existing)+len(incoming))

	for _, list := range [][]model.BookResponse{existing, incoming} {
		for _, b := range list {
			if _, ok := seen[b.ID]; ok {
				continue
			}
			seen[b.ID] = struct{}{}
			merged = append(merged, b)
		}
	}
	return merged
}
