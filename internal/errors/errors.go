// Package errors defines the typed failures the fetch pipeline can surface.
// The HTTP layer maps each of them to a transport status code.
package errors

import (
	"fmt"
	"time"
)

// InvalidRepositoryError reports a repository identifier that is not in
// "owner/name" form. It is raised before any network call.
type InvalidRepositoryError struct {
	Repository string
}

func (e *InvalidRepositoryError) Error() string {
	return fmt.Sprintf("invalid repository %q: must be in the form 'owner/name'", e.Repository)
}

// NotFoundError reports a repository that does not exist or is not
// accessible with the current credentials. GitHub hides private
// repositories behind 404, so the two cases are deliberately conflated.
type NotFoundError struct {
	Repository string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("repository %q not found", e.Repository)
}

// UnauthorizedError reports rejected credentials (HTTP 401).
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unauthorized: %s", e.Message)
	}
	return "unauthorized: check your GitHub token"
}

// RateLimitedError reports an upstream 403/429. RetryAfter is zero when
// GitHub supplied no reset hint.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("github rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return "github rate limit exceeded"
}

// UpstreamUnavailableError reports a transport failure, timeout or
// unparseable response from GitHub.
type UpstreamUnavailableError struct {
	Err error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("github unavailable: %v", e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

// MalformedRecordError reports a pull request record missing a required
// field. A single malformed record fails the whole fetch; a silently
// truncated result set is worse than a visible error.
type MalformedRecordError struct {
	Field string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed pull request record: missing or invalid %q", e.Field)
}
