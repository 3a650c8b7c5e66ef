package models

// RepositorySummary is the trimmed repository payload served to the
// frontend by the "list my repositories" endpoint.
type RepositorySummary struct {
	FullName    string `json:"full_name"`
	Private     bool   `json:"private"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}
