package devapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/me/adminportal/internal/validate"
	"github.com/me/adminportal/pkg/model"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]categoryRecord, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	s.mu.RUnlock()

	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidation(w, err)
		return
	}

	c := &categoryRecord{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedAt:   s.timestamp(),
	}
	s.mu.Lock()
	s.categories = append(s.categories, c)
	rec := *c
	s.mu.Unlock()

	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.UpdateCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidation(w, err)
		return
	}

	s.mu.Lock()
	c := s.categoryByIDLocked(id)
	if c == nil {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, model.NewNotFoundError("category", id))
		return
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	rec := *c
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]tagRecord, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, *t)
	}
	s.mu.RUnlock()

	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidation(w, err)
		return
	}

	t := &tagRecord{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: s.timestamp(),
	}
	s.mu.Lock()
	s.tags = append(s.tags, t)
	rec := *t
	s.mu.Unlock()

	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.UpdateTagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidation(w, err)
		return
	}

	s.mu.Lock()
	t := s.tagByIDLocked(id)
	if t == nil {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, model.NewNotFoundError("tag", id))
		return
	}
	t.Name = strings.TrimSpace(req.Name)
	rec := *t
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, rec)
}
