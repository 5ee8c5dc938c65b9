package asana

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projctl/internal/logging"
	"github.com/fyrsmithlabs/projctl/internal/project"
)

// Resource is the gid/name pair Asana uses for compact records.
type Resource struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// User is the authenticated Asana user.
type User struct {
	GID        string     `json:"gid"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Workspaces []Resource `json:"workspaces"`
}

type createProjectRequest struct {
	Name      string `json:"name"`
	Workspace string `json:"workspace,omitempty"`
	Team      string `json:"team"`
	Public    bool   `json:"public"`
}

type instantiateResponse struct {
	GID        string   `json:"gid"`
	NewProject Resource `json:"new_project"`
}

// Me returns the authenticated user with their workspaces.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// WorkspaceIDByName finds one of the user's workspaces by exact name.
func (c *Client) WorkspaceIDByName(ctx context.Context, name string) (string, error) {
	me, err := c.Me(ctx)
	if err != nil {
		return "", err
	}
	if gid, ok := findByName(me.Workspaces, name); ok {
		return gid, nil
	}
	return "", fmt.Errorf("%w: %q", ErrWorkspaceNotFound, name)
}

// Teams lists the user's teams in a workspace.
func (c *Client) Teams(ctx context.Context, workspaceID string) ([]Resource, error) {
	q := url.Values{}
	q.Set("workspace", workspaceID)

	var teams []Resource
	if err := c.do(ctx, http.MethodGet, "/users/me/teams", q, nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// TeamIDByName finds a team in a workspace by exact name.
func (c *Client) TeamIDByName(ctx context.Context, workspaceID, name string) (string, error) {
	teams, err := c.Teams(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	if gid, ok := findByName(teams, name); ok {
		return gid, nil
	}
	return "", fmt.Errorf("%w: %q", ErrTeamNotFound, name)
}

// TeamProjects lists a team's projects.
func (c *Client) TeamProjects(ctx context.Context, teamID string) ([]Resource, error) {
	var ps []Resource
	if err := c.do(ctx, http.MethodGet, "/teams/"+url.PathEscape(teamID)+"/projects", nil, nil, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// TeamProjectIDs returns the sorted project IDs found in a team's project names.
func (c *Client) TeamProjectIDs(ctx context.Context, teamID string) ([]string, error) {
	ps, err := c.TeamProjects(ctx, teamID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return project.FindProjectIDs(names), nil
}

// FindProject returns the first team project whose name contains projectID.
func (c *Client) FindProject(ctx context.Context, teamID, projectID string) (*Resource, error) {
	ps, err := c.TeamProjects(ctx, teamID)
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

// Templates lists a team's project templates.
func (c *Client) Templates(ctx context.Context, teamID string) ([]Resource, error) {
	var ts []Resource
	if err := c.do(ctx, http.MethodGet, "/teams/"+url.PathEscape(teamID)+"/project_templates", nil, nil, &ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// TemplateIDByName finds a team's project template by exact name.
func (c *Client) TemplateIDByName(ctx context.Context, teamID, name string) (string, error) {
	ts, err := c.Templates(ctx, teamID)
	if err != nil {
		return "", err
	}
	if gid, ok := findByName(ts, name); ok {
		return gid, nil
	}
	return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

// CreateProject creates a public project named after the project ID. With
// a templateID the project is instantiated from that template, otherwise
// it starts empty. Returns the new project's gid.
func (c *Client) CreateProject(ctx context.Context, p project.Identifier, workspaceID, teamID, templateID string) (string, error) {
	req := createProjectRequest{
		Name:   p.ID(),
		Team:   teamID,
		Public: true,
	}

	var gid string
	if templateID != "" {
		var out instantiateResponse
		path := "/project_templates/" + url.PathEscape(templateID) + "/instantiateProject"
		if err := c.do(ctx, http.MethodPost, path, nil, req, &out); err != nil {
			return "", fmt.Errorf("failed to instantiate asana template for %s: %w", p.ID(), err)
		}
		gid = out.NewProject.GID
	} else {
		req.Workspace = workspaceID
		var out Resource
		if err := c.do(ctx, http.MethodPost, "/projects", nil, req, &out); err != nil {
			return "", fmt.Errorf("failed to create asana project %s: %w", p.ID(), err)
		}
		gid = out.GID
	}

	logging.FromContext(ctx).Info(ctx, "asana project created",
		zap.String("project_id", p.ID()),
		zap.String("asana_gid", gid),
		zap.Bool("from_template", templateID != ""))
	return gid, nil
}

func findByName(rs []Resource, name string) (string, bool) {
	for _, r := range rs {
		if r.Name == name {
			return r.GID, true
		}
	}
	return "", false
}
