package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	apperrors "github.com/pullboard/pullboard/internal/errors"
)

// newGitHubClient creates a GitHub client, authenticated when a token is
// provided. baseURL overrides the API endpoint; tests point it at a fake
// server.
func newGitHubClient(ctx context.Context, baseURL, token string) (*github.Client, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(httpClient)
	if baseURL != "" {
		parsed, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
		if err != nil {
			return nil, &apperrors.UpstreamUnavailableError{Err: err}
		}
		client.BaseURL = parsed
	}
	return client, nil
}

// mapUpstreamError translates go-github failures into the typed errors
// the rest of the pipeline works with. Caller cancellation passes through
// untouched so it is never mistaken for an upstream outage.
func mapUpstreamError(repository string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		retry := time.Until(rateErr.Rate.Reset.Time)
		if retry < 0 {
			retry = 0
		}
		return &apperrors.RateLimitedError{RetryAfter: retry}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		var retry time.Duration
		if abuseErr.RetryAfter != nil {
			retry = *abuseErr.RetryAfter
		}
		return &apperrors.RateLimitedError{RetryAfter: retry}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return &apperrors.NotFoundError{Repository: repository}
		case http.StatusUnauthorized:
			return &apperrors.UnauthorizedError{Message: respErr.Message}
		case http.StatusForbidden, http.StatusTooManyRequests:
			return &apperrors.RateLimitedError{RetryAfter: retryAfterHint(respErr.Response)}
		}
	}

	return &apperrors.UpstreamUnavailableError{Err: err}
}

// retryAfterHint reads a retry hint from Retry-After or the rate-limit
// reset header. Zero when GitHub supplied neither.
func retryAfterHint(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			if retry := time.Until(time.Unix(epoch, 0)); retry > 0 {
				return retry
			}
		}
	}
	return 0
}

// ParseRepository splits an "owner/name" identifier, rejecting anything
// else before a request is issued.
func ParseRepository(repository string) (string, string, error) {
	trimmed := strings.TrimSpace(repository)
	if strings.Count(trimmed, "/") != 1 {
		return "", "", &apperrors.InvalidRepositoryError{Repository: repository}
	}
	owner, name, _ := strings.Cut(trimmed, "/")
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)
	if owner == "" || name == "" {
		return "", "", &apperrors.InvalidRepositoryError{Repository: repository}
	}
	return owner, name, nil
}
