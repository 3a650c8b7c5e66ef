package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/pullboard/pullboard/internal/cache"
	apperrors "github.com/pullboard/pullboard/internal/errors"
	"github.com/pullboard/pullboard/internal/models"
)

// userReposTTL is deliberately shorter than the pull-request TTL; the
// set of repositories a user can see changes more often than a single
// repository's open PR list goes stale.
const userReposTTL = 60 * time.Second

// GitHubRepositoryService lists the repositories the authenticated user
// has access to, behind a short-lived cache.
type GitHubRepositoryService struct {
	baseURL        string
	requestTimeout time.Duration
	cache          *cache.TTLCache[string, []models.RepositorySummary]
}

func NewGitHubRepositoryService(baseURL string, requestTimeout time.Duration, c *cache.TTLCache[string, []models.RepositorySummary]) *GitHubRepositoryService {
	return &GitHubRepositoryService{
		baseURL:        baseURL,
		requestTimeout: requestTimeout,
		cache:          c,
	}
}

// ListUserRepositories returns up to maxItems repositories visible to the
// token's user, most recently updated first. Unlike the open-PR listing,
// this result is identity-dependent, so the cache key carries a SHA-256
// fingerprint of the token. The raw secret is never stored.
func (s *GitHubRepositoryService) ListUserRepositories(ctx context.Context, token string, maxItems int) ([]models.RepositorySummary, error) {
	if token == "" {
		return nil, &apperrors.UnauthorizedError{Message: "a GitHub token is required to list user repositories"}
	}
	if maxItems < 1 || maxItems > 100 {
		maxItems = 100
	}

	key := fmt.Sprintf("user:repos:%s:limit=%d", tokenFingerprint(token), maxItems)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	client, err := newGitHubClient(ctx, s.baseURL, token)
	if err != nil {
		return nil, err
	}

	opts := &github.RepositoryListOptions{
		Type:      "all",
		Sort:      "updated",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: maxItems,
		},
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()
	repos, _, err := client.Repositories.List(reqCtx, "", opts)
	if err != nil {
		return nil, mapUpstreamError("", err)
	}

	summaries := make([]models.RepositorySummary, 0, len(repos))
	for _, repo := range repos {
		if repo.GetFullName() == "" {
			continue
		}
		summary := models.RepositorySummary{
			FullName:    repo.GetFullName(),
			Private:     repo.GetPrivate(),
			HTMLURL:     repo.GetHTMLURL(),
			Description: repo.GetDescription(),
		}
		if repo.UpdatedAt != nil {
			summary.UpdatedAt = repo.GetUpdatedAt().Time.Format(time.RFC3339)
		}
		summaries = append(summaries, summary)
	}

	s.cache.Set(key, summaries, userReposTTL)
	return summaries, nil
}

func tokenFingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
