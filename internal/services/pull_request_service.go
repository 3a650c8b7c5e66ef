package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pullboard/pullboard/internal/cache"
	"github.com/pullboard/pullboard/internal/models"
)

// OpenPullRequestFetcher is the upstream side of the coordinator. Tests
// substitute a counting stub.
type OpenPullRequestFetcher interface {
	FetchOpenPullRequests(ctx context.Context, repository string, maxPages int, token string) (*models.FetchResult, error)
}

// PullRequestService coordinates fetching behind the TTL cache.
// Concurrent misses for the same key collapse into a single upstream
// fetch whose result is broadcast to every waiter.
type PullRequestService struct {
	fetcher OpenPullRequestFetcher
	cache   *cache.TTLCache[string, models.FetchResult]
	ttl     time.Duration
	group   singleflight.Group
}

func NewPullRequestService(fetcher OpenPullRequestFetcher, c *cache.TTLCache[string, models.FetchResult], ttl time.Duration) *PullRequestService {
	return &PullRequestService{
		fetcher: fetcher,
		cache:   c,
		ttl:     ttl,
	}
}

// GetOpenPullRequests returns open pull requests for repository, serving
// from the cache when a live entry exists. bypassCache invalidates the
// entry first so the fresh result is written through rather than merely
// skipping the read. Failures propagate untouched and are never cached.
func (s *PullRequestService) GetOpenPullRequests(ctx context.Context, repository string, maxPages int, bypassCache bool, token string) (*models.FetchResult, error) {
	if maxPages < 1 {
		maxPages = 1
	}
	key := fetchCacheKey(repository, maxPages, token != "")

	if bypassCache {
		s.cache.Invalidate(key)
	} else if cached, ok := s.cache.Get(key); ok {
		// Get returns a copy, so flipping the flag never touches the
		// stored entry.
		cached.FromCache = true
		return &cached, nil
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		result, err := s.fetcher.FetchOpenPullRequests(ctx, repository, maxPages, token)
		if err != nil {
			return nil, err
		}
		result.FromCache = false
		s.cache.Set(key, *result, s.ttl)
		return *result, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		result := res.Val.(models.FetchResult)
		return &result, nil
	}
}

// fetchCacheKey derives the cache key from the request parameters. Only
// token presence goes into the key, never the token itself: the secret
// must not leak through cache state, and for public repositories the
// listing does not depend on which authenticated identity asked.
func fetchCacheKey(repository string, maxPages int, authenticated bool) string {
	return fmt.Sprintf("pulls:open:%s:max_pages=%d:authenticated=%t", repository, maxPages, authenticated)
}
