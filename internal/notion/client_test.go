package notion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/projctl/internal/project"
)

const testUUID = "8c4d5a1e-2b3f-4a6c-9d7e-0f1a2b3c4d5e"

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret_test", r.Header.Get("Authorization"))
		assert.Equal(t, APIVersion, r.Header.Get("Notion-Version"))
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Options{
		Token:     "secret_test",
		BaseURL:   srv.URL,
		RateLimit: 1000,
		Burst:     100,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_MissingToken(t *testing.T) {
	_, err := NewClient(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestClient_FindClientPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/databases/clients/query", func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, PropUserID, req.Filter.Property)

		if req.Filter.RichText.Equals == "CRD" {
			w.Write([]byte(`{"object":"list","results":[{"id":"page-crd","url":"https://notion.so/page-crd"}]}`))
			return
		}
		w.Write([]byte(`{"object":"list","results":[]}`))
	})
	c := newTestClient(t, mux)

	id, err := c.FindClientPage(context.Background(), "clients", "CRD")
	require.NoError(t, err)
	assert.Equal(t, "page-crd", id)

	_, err = c.FindClientPage(context.Background(), "clients", "ZZZ")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestClient_CreateProject(t *testing.T) {
	var got map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/pages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"object":"page","id":"page-new","url":"https://notion.so/page-new"}`))
	})
	c := newTestClient(t, mux)

	p, err := project.NewProject(project.Options{
		ID:        "P2024-CRD-FZLL",
		Name:      "Finch beaks",
		GrantCode: "R12345",
		UUID:      testUUID,
	})
	require.NoError(t, err)

	page, err := c.CreateProject(context.Background(), "projects", p, "page-crd")
	require.NoError(t, err)
	assert.Equal(t, "page-new", page.ID)

	assert.Equal(t, map[string]any{"database_id": "projects"}, got["parent"])
	props := got["properties"].(map[string]any)
	assert.Contains(t, props, PropName)
	assert.Contains(t, props, PropProjectID)
	assert.Contains(t, props, PropGrantCode)
	assert.Contains(t, props, PropUUID)

	rel := props[PropClient].(map[string]any)["relation"].([]any)
	assert.Equal(t, "page-crd", rel[0].(map[string]any)["id"])

	title := props[PropName].(map[string]any)["title"].([]any)
	assert.Equal(t, "Finch beaks", title[0].(map[string]any)["text"].(map[string]any)["content"])
}

func TestClient_CreateProjectWithoutClient(t *testing.T) {
	var got createPageRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/pages", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"page-new"}`))
	})
	c := newTestClient(t, mux)

	p, err := project.NewProject(project.Options{ID: "P2024-CRD-FZLL", UUID: testUUID})
	require.NoError(t, err)

	_, err = c.CreateProject(context.Background(), "projects", p, "")
	require.NoError(t, err)

	assert.NotContains(t, got.Properties, PropClient)
	assert.NotContains(t, got.Properties, PropGrantCode)
	assert.Equal(t, "P2024-CRD-FZLL", got.Properties[PropName].Title[0].Text.Content)
	assert.Equal(t, testUUID, got.Properties[PropUUID].RichText[0].Text.Content)
}

func TestClient_APIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"object":"error","status":400,"code":"validation_error","message":"Project ID is not a property that exists."}`))
	})
	c := newTestClient(t, mux)

	p, err := project.NewProject(project.Options{ID: "P2024-CRD-FZLL"})
	require.NoError(t, err)

	_, err = c.CreateProject(context.Background(), "projects", p, "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.Contains(t, apiErr.Message, "Project ID")
}
