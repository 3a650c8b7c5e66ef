package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pullboard/pullboard/internal/models"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com"

// SummaryService produces a natural-language summary of a pull request
// through the Gemini generateContent API.
type SummaryService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewSummaryService(apiKey, model string) *SummaryService {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &SummaryService{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether an API key is available.
func (s *SummaryService) Configured() bool {
	return s.apiKey != ""
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// SummarizePullRequest asks Gemini for a concise markdown summary of the
// pull request's title and description.
func (s *SummaryService) SummarizePullRequest(ctx context.Context, pr *models.PullRequest) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("gemini api key is not configured")
	}

	prompt := fmt.Sprintf(
		"You are an expert software engineer. Please summarize the following Pull Request.\n\n"+
			"Title: %s\n\nDescription:\n%s\n\n"+
			"Provide a concise summary of the changes, the intent, and any potential risks. "+
			"Format your response in Markdown.",
		pr.Title, pr.Body,
	)

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(s.baseURL, "/"), s.model, url.QueryEscape(s.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
