package devapi

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/me/adminportal/internal/validate"
	"github.com/me/adminportal/pkg/model"
)

// loginUser is the user object embedded in the login response.
type loginUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		respondUnauthorized(w, "invalid credentials")
		return
	}

	s.mu.RLock()
	u := s.userByEmailLocked(req.Email)
	var rec userRecord
	if u != nil {
		rec = *u
	}
	s.mu.RUnlock()

	if u == nil || bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(req.Password)) != nil {
		s.logger.Info("login failed", "email", req.Email)
		respondUnauthorized(w, "invalid credentials")
		return
	}

	token, err := s.issueToken(&rec)
	if err != nil {
		s.logger.Error("issue token", "error", err)
		respondError(w, http.StatusInternalServerError, &model.APIError{Code: model.ErrInternal, Message: "could not issue token"})
		return
	}

	s.logger.Info("login", "email", rec.Email, "role", rec.Role)
	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  loginUser{ID: rec.ID, Email: rec.Email, Role: rec.Role},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	c := callerFromContext(r.Context())
	s.revoke(c.tokenID)
	s.logger.Info("logout", "email", c.user.Email)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	c := callerFromContext(r.Context())
	respondJSON(w, http.StatusOK, c.user)
}
