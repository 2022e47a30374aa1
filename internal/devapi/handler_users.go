package devapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/me/adminportal/internal/validate"
	"github.com/me/adminportal/pkg/model"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]userRecord, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	s.mu.RUnlock()

	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidation(w, err)
		return
	}

	id, err := s.AddUser(req.Email, req.Password, req.Role)
	if errors.Is(err, errDuplicateEmail) {
		respondError(w, http.StatusConflict, &model.APIError{Code: model.ErrConflict, Message: err.Error()})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, &model.APIError{Code: model.ErrInternal, Message: err.Error()})
		return
	}

	s.mu.RLock()
	_, u := s.userByIDLocked(id)
	rec := *u
	s.mu.RUnlock()

	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.UpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidation(w, err)
		return
	}

	var hash []byte
	if req.Password != nil {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(*req.Password), s.cfg.HashCost)
		if err != nil {
			respondError(w, http.StatusInternalServerError, &model.APIError{Code: model.ErrInternal, Message: "hash password"})
			return
		}
	}

	s.mu.Lock()
	_, u := s.userByIDLocked(id)
	if u == nil {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, model.NewNotFoundError("user", id))
		return
	}
	if req.Email != nil {
		if other := s.userByEmailLocked(*req.Email); other != nil && other.ID != id {
			s.mu.Unlock()
			respondError(w, http.StatusConflict, &model.APIError{Code: model.ErrConflict, Message: errDuplicateEmail.Error()})
			return
		}
		u.Email = strings.TrimSpace(*req.Email)
	}
	if req.Role != nil {
		u.Role = string(*req.Role)
	}
	if hash != nil {
		u.PasswordHash = string(hash)
	}
	rec := *u
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	i, u := s.userByIDLocked(id)
	if u == nil {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, model.NewNotFoundError("user", id))
		return
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

// respondValidation answers 400 with one detail per invalid field.
func respondValidation(w http.ResponseWriter, err error) {
	var details []model.FieldError
	var ve validate.Errors
	if errors.As(err, &ve) {
		for field, msg := range ve {
			details = append(details, model.FieldError{Field: field, Message: msg})
		}
	}
	respondError(w, http.StatusBadRequest, model.NewValidationError(err.Error(), details...))
}
