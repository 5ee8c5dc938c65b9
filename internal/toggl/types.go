package toggl

import "time"

// Me is the authenticated Toggl user.
type Me struct {
	ID                 int64  `json:"id"`
	Email              string `json:"email"`
	Fullname           string `json:"fullname"`
	DefaultWorkspaceID int64  `json:"default_workspace_id"`
}

// Workspace is a Toggl workspace.
type Workspace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Project is a Toggl project. Name usually starts with a project ID.
type Project struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
	IsPrivate   bool   `json:"is_private"`
	Color       string `json:"color"`
}

// TimeEntry is one tracked interval. Duration is in seconds and negative
// while the timer is still running.
type TimeEntry struct {
	ID          int64      `json:"id"`
	WorkspaceID int64      `json:"workspace_id"`
	ProjectID   int64      `json:"project_id"`
	Description string     `json:"description"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop"`
	Duration    int64      `json:"duration"`
}

// Running reports whether the timer for e is still going.
func (e TimeEntry) Running() bool { return e.Duration < 0 }

type createProjectRequest struct {
	Name          string `json:"name"`
	Active        bool   `json:"active"`
	AutoEstimates bool   `json:"auto_estimates"`
	IsPrivate     bool   `json:"is_private"`
	Color         string `json:"color"`
}
