package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/me/adminportal/pkg/model"
)

// TagsClient manages /api/tags.
type TagsClient struct {
	c *Client
}

// NewTagsClient returns a TagsClient on a session-bound client.
func NewTagsClient(c *Client) *TagsClient {
	return &TagsClient{c: c}
}

// List returns every tag.
func (tc *TagsClient) List(ctx context.Context) ([]model.Tag, error) {
	var raw []backendTag
	if err := tc.c.do(ctx, http.MethodGet, "/api/tags", nil, &raw); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	out := make([]model.Tag, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toModel())
	}
	return out, nil
}

// Create adds a tag.
func (tc *TagsClient) Create(ctx context.Context, req model.CreateTagRequest) (model.Tag, error) {
	var raw backendTag
	if err := tc.c.do(ctx, http.MethodPost, "/api/tags", req, &raw); err != nil {
		return model.Tag{}, fmt.Errorf("create tag: %w", err)
	}
	return raw.toModel(), nil
}

// Update renames tag id.
func (tc *TagsClient) Update(ctx context.Context, id string, req model.UpdateTagRequest) (model.Tag, error) {
	var raw backendTag
	if err := tc.c.do(ctx, http.MethodPut, "/api/tags/"+url.PathEscape(id), req, &raw); err != nil {
		return model.Tag{}, fmt.Errorf("update tag %s: %w", id, err)
	}
	return raw.toModel(), nil
}
