package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ToolDefinition describes one tool in MCP (Model Context Protocol)
// format, so AI agents can discover this API's capabilities.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

type ToolsHandler struct{}

func NewToolsHandler() *ToolsHandler {
	return &ToolsHandler{}
}

// ListTools handles GET /api/agent/tools
func (h *ToolsHandler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, []ToolDefinition{
		{
			Name:        "list_pull_requests",
			Description: "Fetch open pull requests for a specific GitHub repository. Use this to get the status of PRs.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"repository": map[string]interface{}{
						"type":        "string",
						"description": "The repository name in 'owner/name' format (e.g., 'vercel/next.js').",
					},
					"max_pages": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of pages to fetch (default: 3).",
						"default":     3,
					},
					"bypass_cache": map[string]interface{}{
						"type":        "boolean",
						"description": "Set to true to force a fresh fetch from GitHub.",
						"default":     false,
					},
				},
				"required": []string{"repository"},
			},
		},
		{
			Name:        "list_user_repositories",
			Description: "List repositories that the authenticated user has access to. Requires a token.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	})
}
