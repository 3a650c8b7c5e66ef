package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pullboard/pullboard/internal/cache"
	apperrors "github.com/pullboard/pullboard/internal/errors"
	"github.com/pullboard/pullboard/internal/models"
)

func newRepoService(t *testing.T, handler http.HandlerFunc) (*GitHubRepositoryService, *int32) {
	t.Helper()
	var requests int32
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		handler(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := cache.New[string, []models.RepositorySummary]()
	return NewGitHubRepositoryService(srv.URL, 5*time.Second, c), &requests
}

func TestListUserRepositories(t *testing.T) {
	svc, requests := newRepoService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"full_name":"octo/demo","private":false,"html_url":"https://github.com/octo/demo","description":"Demo","updated_at":"2024-06-01T00:00:00Z"},
			{"full_name":"octo/secret","private":true,"html_url":"https://github.com/octo/secret"},
			{"private":false,"html_url":"https://github.com/anonymous"}
		]`)
	})

	repos, err := svc.ListUserRepositories(context.Background(), "token", 100)
	require.NoError(t, err)

	// The unnamed entry is dropped
	require.Len(t, repos, 2)
	assert.Equal(t, "octo/demo", repos[0].FullName)
	assert.False(t, repos[0].Private)
	assert.Equal(t, "Demo", repos[0].Description)
	assert.Equal(t, "2024-06-01T00:00:00Z", repos[0].UpdatedAt)
	assert.Equal(t, "octo/secret", repos[1].FullName)
	assert.True(t, repos[1].Private)

	// Second call is served from the cache
	_, err = svc.ListUserRepositories(context.Background(), "token", 100)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(requests))
}

func TestListUserRepositoriesRequiresToken(t *testing.T) {
	svc, requests := newRepoService(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	_, err := svc.ListUserRepositories(context.Background(), "", 100)

	var unauthorized *apperrors.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)
	assert.Equal(t, int32(0), atomic.LoadInt32(requests))
}

func TestListUserRepositoriesDistinctTokensDistinctEntries(t *testing.T) {
	svc, requests := newRepoService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"full_name":"octo/demo","html_url":"https://github.com/octo/demo"}]`)
	})

	_, err := svc.ListUserRepositories(context.Background(), "token-a", 100)
	require.NoError(t, err)
	_, err = svc.ListUserRepositories(context.Background(), "token-b", 100)
	require.NoError(t, err)

	// Identity-dependent listing: different tokens never share an entry
	assert.Equal(t, int32(2), atomic.LoadInt32(requests))
}

func TestTokenFingerprintHidesSecret(t *testing.T) {
	fp := tokenFingerprint("ghp_supersecret")
	assert.NotContains(t, fp, "supersecret")
	assert.Len(t, fp, 16)
	assert.NotEqual(t, fp, tokenFingerprint("ghp_othersecret"))
}
