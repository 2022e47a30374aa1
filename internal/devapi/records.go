package devapi

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/me/adminportal/pkg/model"
)

// Stored records, serialized with the backend's capitalized keys.

type userRecord struct {
	ID           string `json:"ID"`
	Email        string `json:"Email"`
	Role         string `json:"Role"`
	CreatedAt    string `json:"CreatedAt"`
	PasswordHash string `json:"PasswordHash"`
}

type categoryRecord struct {
	ID          string `json:"ID"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
	CreatedAt   string `json:"CreatedAt"`
}

type tagRecord struct {
	ID        string `json:"ID"`
	Name      string `json:"Name"`
	CreatedAt string `json:"CreatedAt"`
}

// errDuplicateEmail is returned when an email is already registered.
var errDuplicateEmail = fmt.Errorf("email already registered")

// AddUser registers an account and returns its ID.
func (s *Server) AddUser(email, password string, role model.UserRole) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.HashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userByEmailLocked(email) != nil {
		return "", errDuplicateEmail
	}
	u := &userRecord{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(email),
		Role:         string(role),
		CreatedAt:    s.timestamp(),
		PasswordHash: string(hash),
	}
	s.users = append(s.users, u)
	return u.ID, nil
}

// caller holds mu.
func (s *Server) userByEmailLocked(email string) *userRecord {
	email = strings.TrimSpace(email)
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// caller holds mu.
func (s *Server) userByIDLocked(id string) (int, *userRecord) {
	for i, u := range s.users {
		if u.ID == id {
			return i, u
		}
	}
	return -1, nil
}

// caller holds mu.
func (s *Server) categoryByIDLocked(id string) *categoryRecord {
	for _, c := range s.categories {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// caller holds mu.
func (s *Server) tagByIDLocked(id string) *tagRecord {
	for _, t := range s.tags {
		if t.ID == id {
			return t
		}
	}
	return nil
}
