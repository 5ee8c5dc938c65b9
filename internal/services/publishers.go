package services

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projctl/internal/asana"
	"github.com/fyrsmithlabs/projctl/internal/logging"
	"github.com/fyrsmithlabs/projctl/internal/notion"
	"github.com/fyrsmithlabs/projctl/internal/project"
	"github.com/fyrsmithlabs/projctl/internal/registry"
	"github.com/fyrsmithlabs/projctl/internal/toggl"
)

// Publisher creates a project on one external service.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, p project.Identifier, user *registry.User) (Result, error)
}

// Result describes what a publisher did.
type Result struct {
	Service    string `json:"service"`
	ExternalID string `json:"external_id"`
	Created    bool   `json:"created"`
	URL        string `json:"url,omitempty"`
}

type togglPublisher struct {
	client    *toggl.Client
	workspace string
}

func (t *togglPublisher) Name() string { return "toggl" }

func (t *togglPublisher) Publish(ctx context.Context, p project.Identifier, _ *registry.User) (Result, error) {
	wsID, err := t.client.WorkspaceIDByName(ctx, t.workspace)
	if err != nil {
		return Result{}, err
	}
	proj, created, err := t.client.CreateProject(ctx, wsID, p)
	if err != nil {
		return Result{}, err
	}
	return Result{ExternalID: strconv.FormatInt(proj.ID, 10), Created: created}, nil
}

type asanaPublisher struct {
	client    *asana.Client
	workspace string
	team      string
	template  string
}

func (a *asanaPublisher) Name() string { return "asana" }

func (a *asanaPublisher) Publish(ctx context.Context, p project.Identifier, _ *registry.User) (Result, error) {
	wsID, err := a.client.WorkspaceIDByName(ctx, a.workspace)
	if err != nil {
		return Result{}, err
	}
	teamID, err := a.client.TeamIDByName(ctx, wsID, a.team)
	if err != nil {
		return Result{}, err
	}

	existing, err := a.client.FindProject(ctx, teamID, p.ID())
	if err == nil {
		return Result{ExternalID: existing.GID}, nil
	}
	if !errors.Is(err, asana.ErrProjectNotFound) {
		return Result{}, err
	}

	var templateID string
	if a.template != "" {
		if templateID, err = a.client.TemplateIDByName(ctx, teamID, a.template); err != nil {
			return Result{}, err
		}
	}

	gid, err := a.client.CreateProject(ctx, p, wsID, teamID, templateID)
	if err != nil {
		return Result{}, err
	}
	return Result{ExternalID: gid, Created: true}, nil
}

type notionPublisher struct {
	client     *notion.Client
	clientsDB  string
	projectsDB string
}

func (n *notionPublisher) Name() string { return "notion" }

func (n *notionPublisher) Publish(ctx context.Context, p project.Identifier, user *registry.User) (Result, error) {
	var clientPage string
	if n.clientsDB != "" && user != nil {
		id, err := n.client.FindClientPage(ctx, n.clientsDB, user.UserID)
		switch {
		case err == nil:
			clientPage = id
		case errors.Is(err, notion.ErrClientNotFound):
			logging.FromContext(ctx).Warn(ctx, "no notion client page, creating unlinked project",
				zap.String("user_id", user.UserID))
		default:
			return Result{}, err
		}
	}

	page, err := n.client.CreateProject(ctx, n.projectsDB, p, clientPage)
	if err != nil {
		return Result{}, err
	}
	return Result{ExternalID: page.ID, Created: true, URL: page.URL}, nil
}
