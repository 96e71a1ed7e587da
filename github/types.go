package github

import "time"

type Owner struct {
	Login string `json:"login"`
}

type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    Owner  `json:"owner"`
	HTMLURL  string `json:"html_url"`
}

// SearchItem is a single code search hit.
type SearchItem struct {
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	HTMLURL    string     `json:"html_url"`
	Repository Repository `json:"repository"`
}

type searchResponse struct {
	TotalCount        int          `json:"total_count"`
	IncompleteResults bool         `json:"incomplete_results"`
	Items             []SearchItem `json:"items"`
}

// SearchPage is one page of code search results. NextPage is zero on the
// last page.
type SearchPage struct {
	Items      []SearchItem
	Page       int
	NextPage   int
	TotalCount int
}

func (p SearchPage) HasNextPage() bool {
	return p.NextPage > 0
}

type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// RunSummary is the part of a workflow run the scanner reports.
type RunSummary struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	HeadBranch string    `json:"head_branch"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion"`
	HTMLURL    string    `json:"html_url"`
	RunNumber  int       `json:"run_number"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type workflowRunsResponse struct {
	TotalCount   int          `json:"total_count"`
	WorkflowRuns []RunSummary `json:"workflow_runs"`
}

// JobSummary is a single job of a workflow run.
type JobSummary struct {
	ID          int64      `json:"id"`
	RunID       int64      `json:"run_id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Conclusion  string     `json:"conclusion"`
	HTMLURL     string     `json:"html_url"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

type jobsResponse struct {
	TotalCount int          `json:"total_count"`
	Jobs       []JobSummary `json:"jobs"`
}
