package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/me/adminportal/pkg/model"
)

// CategoriesClient manages /api/categories.
type CategoriesClient struct {
	c *Client
}

// NewCategoriesClient returns a CategoriesClient on a session-bound client.
func NewCategoriesClient(c *Client) *CategoriesClient {
	return &CategoriesClient{c: c}
}

// List returns every category.
func (cc *CategoriesClient) List(ctx context.Context) ([]model.Category, error) {
	var raw []backendCategory
	if err := cc.c.do(ctx, http.MethodGet, "/api/categories", nil, &raw); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]model.Category, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toModel())
	}
	return out, nil
}

// Create adds a category.
func (cc *CategoriesClient) Create(ctx context.Context, req model.CreateCategoryRequest) (model.Category, error) {
	var raw backendCategory
	if err := cc.c.do(ctx, http.MethodPost, "/api/categories", req, &raw); err != nil {
		return model.Category{}, fmt.Errorf("create category: %w", err)
	}
	return raw.toModel(), nil
}

// Update changes category id.
func (cc *CategoriesClient) Update(ctx context.Context, id string, req model.UpdateCategoryRequest) (model.Category, error) {
	var raw backendCategory
	if err := cc.c.do(ctx, http.MethodPut, "/api/categories/"+url.PathEscape(id), req, &raw); err != nil {
		return model.Category{}, fmt.Errorf("update category %s: %w", id, err)
	}
	return raw.toModel(), nil
}
