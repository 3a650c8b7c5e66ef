package services

import (
	"context"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"

	"github.com/pullboard/pullboard/internal/models"
	"github.com/pullboard/pullboard/pkg/logger"
)

// PullRequestFetchService talks to the GitHub API. It walks pagination
// for a repository's open pull requests and normalizes every record. No
// caching and no retries happen here.
type PullRequestFetchService struct {
	baseURL        string
	perPage        int
	requestTimeout time.Duration
}

func NewPullRequestFetchService(baseURL string, perPage int, requestTimeout time.Duration) *PullRequestFetchService {
	if perPage < 1 || perPage > 100 {
		perPage = 50
	}
	return &PullRequestFetchService{
		baseURL:        baseURL,
		perPage:        perPage,
		requestTimeout: requestTimeout,
	}
}

// FetchOpenPullRequests retrieves open pull requests for repository,
// sorted by most recently updated, following pagination until GitHub
// reports no next page or maxPages is reached. The page counter is the
// authoritative bound, so the walk terminates even against malformed
// pagination. Each invocation performs exactly pagesFetched requests.
func (s *PullRequestFetchService) FetchOpenPullRequests(ctx context.Context, repository string, maxPages int, token string) (*models.FetchResult, error) {
	owner, name, err := ParseRepository(repository)
	if err != nil {
		return nil, err
	}
	if maxPages < 1 {
		maxPages = 1
	}

	client, err := newGitHubClient(ctx, s.baseURL, token)
	if err != nil {
		return nil, err
	}

	opts := &github.PullRequestListOptions{
		State:     "open",
		Sort:      "updated",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: s.perPage,
			Page:    1,
		},
	}

	items := make([]models.PullRequest, 0, s.perPage)
	pagesFetched := 0

	for {
		pageCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
		raws, resp, err := client.PullRequests.List(pageCtx, owner, name, opts)
		cancel()
		if err != nil {
			return nil, mapUpstreamError(repository, err)
		}

		for _, raw := range raws {
			pr, err := models.PullRequestFromGitHub(raw)
			if err != nil {
				// One bad record fails the whole fetch; a silently
				// truncated list must never be served.
				return nil, err
			}
			items = append(items, *pr)
		}
		pagesFetched++

		if pagesFetched >= maxPages || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logger.WithFields(logrus.Fields{
		"repository":    repository,
		"pages_fetched": pagesFetched,
		"items":         len(items),
	}).Debug("fetched open pull requests from github")

	return &models.FetchResult{
		Items:        items,
		PagesFetched: pagesFetched,
		Repository:   repository,
	}, nil
}
