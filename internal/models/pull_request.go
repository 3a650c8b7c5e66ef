package models

import (
	"time"

	"github.com/google/go-github/v57/github"

	apperrors "github.com/pullboard/pullboard/internal/errors"
)

// PullRequest is the stable shape a raw GitHub pull request is normalized
// into. Immutable once constructed.
type PullRequest struct {
	Number          int       `json:"number"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	AuthorAvatarURL string    `json:"author_avatar"`
	HTMLURL         string    `json:"html_url"`
	Labels          []string  `json:"labels"`
	IsDraft         bool      `json:"is_draft"`
	State           string    `json:"state"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Body            string    `json:"body"`
}

// FetchResult is the outcome of one open-PR fetch for a repository.
// Items preserve upstream order (newest-updated first).
type FetchResult struct {
	Items        []PullRequest `json:"items"`
	PagesFetched int           `json:"pages_fetched"`
	FromCache    bool          `json:"from_cache"`
	Repository   string        `json:"repository"`
}

// PullRequestFromGitHub normalizes a raw GitHub record. Number, title,
// author identity and creation time are required; anything else defaults.
func PullRequestFromGitHub(raw *github.PullRequest) (*PullRequest, error) {
	if raw == nil {
		return nil, &apperrors.MalformedRecordError{Field: "record"}
	}
	if raw.Number == nil || raw.GetNumber() <= 0 {
		return nil, &apperrors.MalformedRecordError{Field: "number"}
	}
	if raw.Title == nil {
		return nil, &apperrors.MalformedRecordError{Field: "title"}
	}
	if raw.User == nil || raw.User.GetLogin() == "" {
		return nil, &apperrors.MalformedRecordError{Field: "user"}
	}
	if raw.CreatedAt == nil {
		return nil, &apperrors.MalformedRecordError{Field: "created_at"}
	}

	labels := make([]string, 0, len(raw.Labels))
	for _, label := range raw.Labels {
		if name := label.GetName(); name != "" {
			labels = append(labels, name)
		}
	}

	state := raw.GetState()
	if state == "" {
		state = "unknown"
	}

	updatedAt := raw.GetCreatedAt().Time
	if raw.UpdatedAt != nil {
		updatedAt = raw.GetUpdatedAt().Time
	}

	return &PullRequest{
		Number:          raw.GetNumber(),
		Title:           raw.GetTitle(),
		Author:          raw.User.GetLogin(),
		AuthorAvatarURL: raw.User.GetAvatarURL(),
		HTMLURL:         raw.GetHTMLURL(),
		Labels:          labels,
		IsDraft:         raw.GetDraft(),
		State:           state,
		CreatedAt:       raw.GetCreatedAt().Time,
		UpdatedAt:       updatedAt,
		Body:            raw.GetBody(),
	}, nil
}
