package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pullboard/pullboard/internal/models"
)

const maxUserRepositories = 100

// RepositoryLister lists repositories visible to a token's user.
type RepositoryLister interface {
	ListUserRepositories(ctx context.Context, token string, maxItems int) ([]models.RepositorySummary, error)
}

type RepositoryHandler struct {
	repositories RepositoryLister
	serverToken  string
}

func NewRepositoryHandler(repositories RepositoryLister, serverToken string) *RepositoryHandler {
	return &RepositoryHandler{
		repositories: repositories,
		serverToken:  serverToken,
	}
}

// ListUserRepositories handles GET /api/user/repos
func (h *RepositoryHandler) ListUserRepositories(c *gin.Context) {
	token := h.token(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "GitHub Token is required to list user repositories."})
		return
	}

	repos, err := h.repositories.ListUserRepositories(c.Request.Context(), token, maxUserRepositories)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, repos)
}

func (h *RepositoryHandler) token(c *gin.Context) string {
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
