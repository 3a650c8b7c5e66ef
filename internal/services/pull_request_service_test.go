package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pullboard/pullboard/internal/cache"
	apperrors "github.com/pullboard/pullboard/internal/errors"
	"github.com/pullboard/pullboard/internal/models"
)

type stubFetcher struct {
	mu      sync.Mutex
	calls   int
	result  models.FetchResult
	err     error
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *stubFetcher) FetchOpenPullRequests(ctx context.Context, repository string, maxPages int, token string) (*models.FetchResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	result := f.result
	result.Repository = repository
	result.PagesFetched = maxPages
	return &result, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func sampleItems() []models.PullRequest {
	return []models.PullRequest{
		{Number: 1, Title: "First", Author: "octocat", State: "open"},
		{Number: 2, Title: "Second", Author: "hubot", State: "open", IsDraft: true},
	}
}

func newCoordinator(fetcher *stubFetcher, now func() time.Time) *PullRequestService {
	var c *cache.TTLCache[string, models.FetchResult]
	if now != nil {
		c = cache.NewWithClock[string, models.FetchResult](now)
	} else {
		c = cache.New[string, models.FetchResult]()
	}
	return NewPullRequestService(fetcher, c, 90*time.Second)
}

func TestGetOpenPullRequestsCachesResult(t *testing.T) {
	fetcher := &stubFetcher{result: models.FetchResult{Items: sampleItems()}}
	svc := newCoordinator(fetcher, nil)
	ctx := context.Background()

	first, err := svc.GetOpenPullRequests(ctx, "octo/demo", 2, false, "")
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 2, first.PagesFetched)

	second, err := svc.GetOpenPullRequests(ctx, "octo/demo", 2, false, "")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.PagesFetched, second.PagesFetched)
	assert.Equal(t, 1, fetcher.callCount())

	// The hit's flag flip must not leak into the stored entry
	third, err := svc.GetOpenPullRequests(ctx, "octo/demo", 2, false, "")
	require.NoError(t, err)
	assert.True(t, third.FromCache)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestGetOpenPullRequestsBypassCache(t *testing.T) {
	fetcher := &stubFetcher{result: models.FetchResult{Items: sampleItems()}}
	svc := newCoordinator(fetcher, nil)
	ctx := context.Background()

	_, err := svc.GetOpenPullRequests(ctx, "octo/demo", 2, false, "")
	require.NoError(t, err)

	refreshed, err := svc.GetOpenPullRequests(ctx, "octo/demo", 2, true, "")
	require.NoError(t, err)
	assert.False(t, refreshed.FromCache)
	assert.Equal(t, 2, fetcher.callCount())

	// The bypass wrote through: the next plain call is a hit
	cached, err := svc.GetOpenPullRequests(ctx, "octo/demo", 2, false, "")
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestGetOpenPullRequestsKeyComposition(t *testing.T) {
	fetcher := &stubFetcher{result: models.FetchResult{Items: sampleItems()}}
	svc := newCoordinator(fetcher, nil)
	ctx := context.Background()

	_, err := svc.GetOpenPullRequests(ctx, "octo/demo", 2, false, "")
	require.NoError(t, err)

	// Different page limit is a different key
	_, err = svc.GetOpenPullRequests(ctx, "octo/demo", 3, false, "")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.callCount())

	// Token presence is part of the key
	_, err = svc.GetOpenPullRequests(ctx, "octo/demo", 2, false, "token-a")
	require.NoError(t, err)
	assert.Equal(t, 3, fetcher.callCount())

	// The token value is not: another token hits the same entry
	cached, err := svc.GetOpenPullRequests(ctx, "octo/demo", 2, false, "token-b")
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
	assert.Equal(t, 3, fetcher.callCount())
}

func TestGetOpenPullRequestsTTLExpiry(t *testing.T) {
	current := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	fetcher := &stubFetcher{result: models.FetchResult{Items: sampleItems()}}
	svc := newCoordinator(fetcher, now)
	ctx := context.Background()

	_, err := svc.GetOpenPullRequests(ctx, "octo/demo", 2, false, "")
	require.NoError(t, err)

	mu.Lock()
	current = current.Add(91 * time.Second)
	mu.Unlock()

	refetched, err := svc.GetOpenPullRequests(ctx, "octo/demo", 2, false, "")
	require.NoError(t, err)
	assert.False(t, refetched.FromCache)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestGetOpenPullRequestsFailuresNotCached(t *testing.T) {
	fetcher := &stubFetcher{err: &apperrors.NotFoundError{Repository: "octo/ghost"}}
	svc := newCoordinator(fetcher, nil)
	ctx := context.Background()

	_, err := svc.GetOpenPullRequests(ctx, "octo/ghost", 2, false, "")
	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// The failure was not negatively cached: upstream is asked again
	_, err = svc.GetOpenPullRequests(ctx, "octo/ghost", 2, false, "")
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestGetOpenPullRequestsSingleFlight(t *testing.T) {
	fetcher := &stubFetcher{
		result:  models.FetchResult{Items: sampleItems()},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newCoordinator(fetcher, nil)
	ctx := context.Background()

	const callers = 5
	results := make([]*models.FetchResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.GetOpenPullRequests(ctx, "octo/demo", 2, false, "")
		}(i)
	}

	// Let one fetch begin, then release it for everyone
	<-fetcher.started
	close(fetcher.release)
	wg.Wait()

	assert.Equal(t, 1, fetcher.callCount())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.False(t, results[i].FromCache)
		assert.Equal(t, results[0].Items, results[i].Items)
	}
}

func TestGetOpenPullRequestsWaiterHonorsContext(t *testing.T) {
	fetcher := &stubFetcher{
		result:  models.FetchResult{Items: sampleItems()},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newCoordinator(fetcher, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.GetOpenPullRequests(ctx, "octo/demo", 2, false, "")
		done <- err
	}()

	<-fetcher.started
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	close(fetcher.release)
}

func TestGetOpenPullRequestsClampsMaxPages(t *testing.T) {
	fetcher := &stubFetcher{result: models.FetchResult{Items: sampleItems()}}
	svc := newCoordinator(fetcher, nil)

	result, err := svc.GetOpenPullRequests(context.Background(), "octo/demo", 0, false, "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.PagesFetched)
}

func TestFetchCacheKey(t *testing.T) {
	assert.Equal(t, "pulls:open:octo/demo:max_pages=2:authenticated=true", fetchCacheKey("octo/demo", 2, true))
	assert.NotEqual(t, fetchCacheKey("octo/demo", 2, true), fetchCacheKey("octo/demo", 2, false))
	assert.NotEqual(t, fetchCacheKey("octo/demo", 2, true), fetchCacheKey("octo/demo", 3, true))
}
