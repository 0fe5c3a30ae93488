package model

type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
)

// Run is a workflow run as returned by the run-listing endpoint.
//
// RunStartedAt is kept as the raw ISO-8601 string so that a malformed
// value surfaces for that single run instead of failing the whole page.
type Run struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DisplayTitle string    `json:"display_title"`
	Status       RunStatus `json:"status"`
	Conclusion   string    `json:"conclusion"`
	RunNumber    int       `json:"run_number"`
	RunAttempt   int       `json:"run_attempt"`
	Event        string    `json:"event"`
	HeadBranch   string    `json:"head_branch"`
	CreatedAt    string    `json:"created_at"`
	RunStartedAt string    `json:"run_started_at"`
	HTMLURL      string    `json:"html_url"`
}

type RunsResponse struct {
	TotalCount int   `json:"total_count"`
	Runs       []Run `json:"workflow_runs"`
}
