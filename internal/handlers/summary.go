package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pullboard/pullboard/internal/models"
)

// PullRequestSummarizer generates a natural-language summary of one PR.
type PullRequestSummarizer interface {
	Configured() bool
	SummarizePullRequest(ctx context.Context, pr *models.PullRequest) (string, error)
}

type SummaryHandler struct {
	pullRequests OpenPullRequestGetter
	summarizer   PullRequestSummarizer
	maxPages     int
	serverToken  string
}

func NewSummaryHandler(pullRequests OpenPullRequestGetter, summarizer PullRequestSummarizer, maxPages int, serverToken string) *SummaryHandler {
	if maxPages < minMaxPages || maxPages > maxMaxPages {
		maxPages = 3
	}
	return &SummaryHandler{
		pullRequests: pullRequests,
		summarizer:   summarizer,
		maxPages:     maxPages,
		serverToken:  serverToken,
	}
}

// SummarizePullRequest handles GET /api/pr/:number/summary. The PR is
// located in the repository's open list; closed PRs are not summarized.
func (h *SummaryHandler) SummarizePullRequest(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "pull request number must be a positive integer"})
		return
	}

	repository := strings.TrimSpace(c.Query("repository"))
	if repository == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "repository query parameter is required"})
		return
	}

	if !h.summarizer.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "AI summarization is not configured"})
		return
	}

	result, err := h.pullRequests.GetOpenPullRequests(c.Request.Context(), repository, h.maxPages, false, h.token(c))
	if err != nil {
		writeError(c, err)
		return
	}

	var target *models.PullRequest
	for i := range result.Items {
		if result.Items[i].Number == number {
			target = &result.Items[i]
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "pull request not found in open list"})
		return
	}

	summary, err := h.summarizer.SummarizePullRequest(c.Request.Context(), target)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *SummaryHandler) token(c *gin.Context) string {
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		return token
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")); token != "" {
			return token
		}
	}
	return h.serverToken
}
