package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pullboard/pullboard/internal/models"
)

const (
	minMaxPages = 1
	maxMaxPages = 10
)

// OpenPullRequestGetter is the coordinator surface the handler depends
// on; tests substitute a stub.
type OpenPullRequestGetter interface {
	GetOpenPullRequests(ctx context.Context, repository string, maxPages int, bypassCache bool, token string) (*models.FetchResult, error)
}

// PullRequestExporter renders a fetch result as a downloadable workbook.
type PullRequestExporter interface {
	Workbook(result *models.FetchResult) (*bytes.Buffer, error)
}

type PullRequestHandler struct {
	pullRequests    OpenPullRequestGetter
	exporter        PullRequestExporter
	defaultMaxPages int
	serverToken     string
}

func NewPullRequestHandler(pullRequests OpenPullRequestGetter, exporter PullRequestExporter, defaultMaxPages int, serverToken string) *PullRequestHandler {
	if defaultMaxPages < minMaxPages || defaultMaxPages > maxMaxPages {
		defaultMaxPages = 3
	}
	return &PullRequestHandler{
		pullRequests:    pullRequests,
		exporter:        exporter,
		defaultMaxPages: defaultMaxPages,
		serverToken:     serverToken,
	}
}

// ListOpenPullRequests handles GET /api/pull-requests
func (h *PullRequestHandler) ListOpenPullRequests(c *gin.Context) {
	repository := strings.TrimSpace(c.Query("repository"))
	if repository == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "repository query parameter is required"})
		return
	}

	result, err := h.pullRequests.GetOpenPullRequests(
		c.Request.Context(),
		repository,
		h.maxPages(c),
		h.bypassCache(c),
		h.token(c),
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportOpenPullRequests handles GET /api/pull-requests/export
func (h *PullRequestHandler) ExportOpenPullRequests(c *gin.Context) {
	repository := strings.TrimSpace(c.Query("repository"))
	if repository == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "repository query parameter is required"})
		return
	}

	result, err := h.pullRequests.GetOpenPullRequests(
		c.Request.Context(),
		repository,
		h.maxPages(c),
		h.bypassCache(c),
		h.token(c),
	)
	if err != nil {
		writeError(c, err)
		return
	}

	workbook, err := h.exporter.Workbook(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	filename := strings.ReplaceAll(repository, "/", "-") + "-open-prs.xlsx"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		workbook.Bytes())
}

// maxPages reads max_pages, clamped to 1..10, defaulting when absent or
// unparseable.
func (h *PullRequestHandler) maxPages(c *gin.Context) int {
	raw := c.Query("max_pages")
	if raw == "" {
		return h.defaultMaxPages
	}
	pages, err := strconv.Atoi(raw)
	if err != nil {
		return h.defaultMaxPages
	}
	if pages < minMaxPages {
		return minMaxPages
	}
	if pages > maxMaxPages {
		return maxMaxPages
	}
	return pages
}

func (h *PullRequestHandler) bypassCache(c *gin.Context) bool {
	bypass, err := strconv.ParseBool(c.DefaultQuery("bypass_cache", "false"))
	return err == nil && bypass
}

// token resolves the GitHub token: query parameter first, then the
// Authorization header, then the server-configured fallback.
func (h *PullRequestHandler) token(c *gin.Context) string {
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
