package api

import (
	"github.com/me/adminportal/pkg/model"
)

// Backend records use capitalized keys. encoding/json matches keys
// case-insensitively, so the same types also decode lower-case bodies such
// as the user embedded in the login response.

type backendUser struct {
	ID           string `json:"ID"`
	Email        string `json:"Email"`
	Role         string `json:"Role"`
	CreatedAt    string `json:"CreatedAt"`
	PasswordHash string `json:"PasswordHash"`
}

// toModel drops PasswordHash. An unknown role is kept verbatim so that
// IsAdmin stays false for it.
func (u backendUser) toModel() model.User {
	role, err := model.ParseRole(u.Role)
	if err != nil {
		role = model.UserRole(u.Role)
	}
	return model.User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      role,
		CreatedAt: u.CreatedAt,
	}
}

type backendCategory struct {
	ID          string `json:"ID"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
	CreatedAt   string `json:"CreatedAt"`
}

func (c backendCategory) toModel() model.Category {
	return model.Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

type backendTag struct {
	ID        string `json:"ID"`
	Name      string `json:"Name"`
	CreatedAt string `json:"CreatedAt"`
}

func (t backendTag) toModel() model.Tag {
	return model.Tag{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
}
