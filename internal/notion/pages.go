package notion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projctl/internal/logging"
	"github.com/fyrsmithlabs/projctl/internal/project"
)

// Property names expected in the clients and projects databases.
const (
	PropName      = "Name"
	PropUserID    = "User ID"
	PropProjectID = "Project ID"
	PropGrantCode = "Grant Code"
	PropUUID      = "UUID"
	PropClient    = "Client"
)

// Page is the subset of a Notion page projctl reads back.
type Page struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type queryRequest struct {
	Filter   propertyFilter `json:"filter"`
	PageSize int            `json:"page_size"`
}

type propertyFilter struct {
	Property string     `json:"property"`
	RichText textFilter `json:"rich_text"`
}

type textFilter struct {
	Equals string `json:"equals"`
}

type queryResponse struct {
	Results []Page `json:"results"`
}

type createPageRequest struct {
	Parent     parent              `json:"parent"`
	Properties map[string]property `json:"properties"`
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

type property struct {
	Title    []richText `json:"title,omitempty"`
	RichText []richText `json:"rich_text,omitempty"`
	Relation []relation `json:"relation,omitempty"`
}

type richText struct {
	Text textContent `json:"text"`
}

type textContent struct {
	Content string `json:"content"`
}

type relation struct {
	ID string `json:"id"`
}

func textProp(s string) property {
	return property{RichText: []richText{{Text: textContent{Content: s}}}}
}

// FindClientPage returns the ID of the page in clientsDB whose "User ID"
// property equals userID.
func (c *Client) FindClientPage(ctx context.Context, clientsDB, userID string) (string, error) {
	req := queryRequest{
		Filter:   propertyFilter{Property: PropUserID, RichText: textFilter{Equals: userID}},
		PageSize: 1,
	}

	var out queryResponse
	if err := c.do(ctx, http.MethodPost, "/databases/"+url.PathEscape(clientsDB)+"/query", req, &out); err != nil {
		return "", err
	}
	if len(out.Results) == 0 {
		return "", fmt.Errorf("%w: %s", ErrClientNotFound, userID)
	}
	return out.Results[0].ID, nil
}

// CreateProject adds a page for p to projectsDB. The title is the project
// name, or the ID when the project has no name. clientPageID may be empty.
func (c *Client) CreateProject(ctx context.Context, projectsDB string, p project.Identifier, clientPageID string) (*Page, error) {
	title := p.Name()
	if title == "" {
		title = p.ID()
	}

	props := map[string]property{
		PropName:      {Title: []richText{{Text: textContent{Content: title}}}},
		PropProjectID: textProp(p.ID()),
		PropUUID:      textProp(p.UUID()),
	}
	if p.GrantCode() != "" {
		props[PropGrantCode] = textProp(p.GrantCode())
	}
	if clientPageID != "" {
		props[PropClient] = property{Relation: []relation{{ID: clientPageID}}}
	}

	req := createPageRequest{
		Parent:     parent{DatabaseID: projectsDB},
		Properties: props,
	}

	var page Page
	if err := c.do(ctx, http.MethodPost, "/pages", req, &page); err != nil {
		return nil, fmt.Errorf("failed to create notion page for %s: %w", p.ID(), err)
	}

	logging.FromContext(ctx).Info(ctx, "notion project created",
		zap.String("project_id", p.ID()),
		zap.String("page_id", page.ID),
		zap.Bool("linked_client", clientPageID != ""))
	return &page, nil
}
