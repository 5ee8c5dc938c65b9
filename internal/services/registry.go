package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projctl/internal/asana"
	"github.com/fyrsmithlabs/projctl/internal/config"
	"github.com/fyrsmithlabs/projctl/internal/logging"
	"github.com/fyrsmithlabs/projctl/internal/notion"
	"github.com/fyrsmithlabs/projctl/internal/project"
	"github.com/fyrsmithlabs/projctl/internal/registry"
	"github.com/fyrsmithlabs/projctl/internal/toggl"
)

// Registry provides access to the configured service clients.
// Accessors return nil for services that are not configured.
type Registry interface {
	Toggl() *toggl.Client
	Asana() *asana.Client
	Notion() *notion.Client
	Publishers() []Publisher
	Publish(ctx context.Context, p project.Identifier, user *registry.User) ([]Result, error)
}

// Options configures the registry with client instances and placement.
type Options struct {
	Toggl          *toggl.Client
	TogglWorkspace string

	Asana          *asana.Client
	AsanaWorkspace string
	AsanaTeam      string
	AsanaTemplate  string

	Notion           *notion.Client
	NotionClientsDB  string
	NotionProjectsDB string

	// Extra publishers run after the built-in ones.
	Extra []Publisher
}

// container is the concrete implementation of Registry.
type container struct {
	toggl      *toggl.Client
	asana      *asana.Client
	notion     *notion.Client
	publishers []Publisher
}

// NewRegistry creates a new service registry.
func NewRegistry(opts Options) Registry {
	c := &container{
		toggl:  opts.Toggl,
		asana:  opts.Asana,
		notion: opts.Notion,
	}
	if opts.Toggl != nil {
		c.publishers = append(c.publishers, &togglPublisher{client: opts.Toggl, workspace: opts.TogglWorkspace})
	}
	if opts.Asana != nil {
		c.publishers = append(c.publishers, &asanaPublisher{
			client:    opts.Asana,
			workspace: opts.AsanaWorkspace,
			team:      opts.AsanaTeam,
			template:  opts.AsanaTemplate,
		})
	}
	if opts.Notion != nil {
		c.publishers = append(c.publishers, &notionPublisher{
			client:     opts.Notion,
			clientsDB:  opts.NotionClientsDB,
			projectsDB: opts.NotionProjectsDB,
		})
	}
	c.publishers = append(c.publishers, opts.Extra...)
	return c
}

// FromConfig builds clients for every service with an API token set.
func FromConfig(ctx context.Context, cfg *config.Config) (Registry, error) {
	timeout := cfg.HTTP.Timeout.Duration()
	opts := Options{}

	if cfg.Toggl.Enabled() {
		c, err := toggl.NewClient(toggl.Options{
			Token:     cfg.Toggl.APIToken,
			BaseURL:   cfg.Toggl.BaseURL,
			Timeout:   timeout,
			RateLimit: cfg.HTTP.RateLimit,
			Burst:     cfg.HTTP.Burst,
		})
		if err != nil {
			return nil, fmt.Errorf("toggl: %w", err)
		}
		opts.Toggl = c
		opts.TogglWorkspace = cfg.Toggl.Workspace
	}

	if cfg.Asana.Enabled() {
		c, err := asana.NewClient(asana.Options{
			Token:     cfg.Asana.APIToken,
			BaseURL:   cfg.Asana.BaseURL,
			Timeout:   timeout,
			RateLimit: cfg.HTTP.RateLimit,
			Burst:     cfg.HTTP.Burst,
		})
		if err != nil {
			return nil, fmt.Errorf("asana: %w", err)
		}
		opts.Asana = c
		opts.AsanaWorkspace = cfg.Asana.Workspace
		opts.AsanaTeam = cfg.Asana.Team
		opts.AsanaTemplate = cfg.Asana.Template
	}

	if cfg.Notion.Enabled() {
		c, err := notion.NewClient(ctx, notion.Options{
			Token:     cfg.Notion.APIToken,
			BaseURL:   cfg.Notion.BaseURL,
			Timeout:   timeout,
			RateLimit: cfg.HTTP.RateLimit,
			Burst:     cfg.HTTP.Burst,
		})
		if err != nil {
			return nil, fmt.Errorf("notion: %w", err)
		}
		opts.Notion = c
		opts.NotionClientsDB = cfg.Notion.ClientsDB
		opts.NotionProjectsDB = cfg.Notion.ProjectsDB
	}

	return NewRegistry(opts), nil
}

func (c *container) Toggl() *toggl.Client    { return c.toggl }
func (c *container) Asana() *asana.Client    { return c.asana }
func (c *container) Notion() *notion.Client  { return c.notion }
func (c *container) Publishers() []Publisher { return c.publishers }

// Publish creates p on every configured service. A failure on one service
// does not stop the others; all failures are joined into the returned
// error and the successful results are still returned.
func (c *container) Publish(ctx context.Context, p project.Identifier, user *registry.User) ([]Result, error) {
	log := logging.FromContext(ctx)

	var (
		results []Result
		errs    []error
	)
	for _, pub := range c.publishers {
		res, err := pub.Publish(ctx, p, user)
		if err != nil {
			log.Error(ctx, "publish failed",
				zap.String("service", pub.Name()),
				zap.String("project_id", p.ID()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", pub.Name(), err))
			continue
		}
		res.Service = pub.Name()
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
