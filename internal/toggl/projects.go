package toggl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projctl/internal/logging"
	"github.com/fyrsmithlabs/projctl/internal/project"
)

const (
	projectColor = "#2da608"
	pageSize     = 200
)

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*Me, error) {
	var me Me
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// Workspaces lists the user's workspaces.
func (c *Client) Workspaces(ctx context.Context) ([]Workspace, error) {
	var ws []Workspace
	if err := c.do(ctx, http.MethodGet, "/me/workspaces", nil, nil, &ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// WorkspaceIDByName finds a workspace by exact name. An empty name selects
// the first workspace.
func (c *Client) WorkspaceIDByName(ctx context.Context, name string) (int64, error) {
	ws, err := c.Workspaces(ctx)
	if err != nil {
		return 0, err
	}
	for _, w := range ws {
		if name == "" || w.Name == name {
			return w.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrWorkspaceNotFound, name)
}

// Projects lists every project in a workspace, following pagination.
func (c *Client) Projects(ctx context.Context, workspaceID int64) ([]Project, error) {
	path := "/workspaces/" + strconv.FormatInt(workspaceID, 10) + "/projects"

	var all []Project
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(pageSize))
		q.Set("page", strconv.Itoa(page))

		var batch []Project
		if err := c.do(ctx, http.MethodGet, path, q, nil, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			return all, nil
		}
	}
}

// MeProjects lists the projects visible to the user across workspaces.
func (c *Client) MeProjects(ctx context.Context) ([]Project, error) {
	var ps []Project
	if err := c.do(ctx, http.MethodGet, "/me/projects", nil, nil, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// ProjectIDs returns the sorted project IDs found in a workspace's project names.
func (c *Client) ProjectIDs(ctx context.Context, workspaceID int64) ([]string, error) {
	ps, err := c.Projects(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return project.FindProjectIDs(names), nil
}

// FindProject returns the first project whose name contains projectID.
func (c *Client) FindProject(ctx context.Context, workspaceID int64, projectID string) (*Project, error) {
	ps, err := c.Projects(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	for i := range ps {
		if strings.Contains(ps[i].Name, projectID) {
			return &ps[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
}

// CreateProject creates a public, active project titled with DisplayName.
// If a project containing the ID already exists it is returned instead and
// created is false.
func (c *Client) CreateProject(ctx context.Context, workspaceID int64, p project.Identifier) (proj *Project, created bool, err error) {
	existing, err := c.FindProject(ctx, workspaceID, p.ID())
	if err == nil {
		logging.FromContext(ctx).Info(ctx, "toggl project exists, skipping",
			zap.String("project_id", p.ID()),
			zap.Int64("toggl_id", existing.ID))
		return existing, false, nil
	}
	if !errors.Is(err, ErrProjectNotFound) {
		return nil, false, err
	}

	req := createProjectRequest{
		Name:   project.DisplayName(p),
		Active: true,
		Color:  projectColor,
	}
	path := "/workspaces/" + strconv.FormatInt(workspaceID, 10) + "/projects"

	var out Project
	if err := c.do(ctx, http.MethodPost, path, nil, req, &out); err != nil {
		return nil, false, fmt.Errorf("failed to create toggl project %s: %w", p.ID(), err)
	}

	logging.FromContext(ctx).Info(ctx, "toggl project created",
		zap.String("project_id", p.ID()),
		zap.Int64("toggl_id", out.ID))
	return &out, true, nil
}

// TimeEntries returns the user's entries that started in [start, end).
func (c *Client) TimeEntries(ctx context.Context, start, end time.Time) ([]TimeEntry, error) {
	q := url.Values{}
	q.Set("start_date", start.Format(time.RFC3339))
	q.Set("end_date", end.Format(time.RFC3339))

	var entries []TimeEntry
	if err := c.do(ctx, http.MethodGet, "/me/time_entries", q, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
