package model

import (
	"fmt"
	"strings"
)

// UserRole represents the role of a console user.
type UserRole string

const (
	// RoleUser is a standard authenticated user. It may log in but cannot
	// open the management views.
	RoleUser UserRole = "user"
	// RoleAdmin may manage users, categories and tags.
	RoleAdmin UserRole = "admin"
)

// ParseRole converts a backend role string to a UserRole.
func ParseRole(s string) (UserRole, error) {
	switch UserRole(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User is the frontend view of a backend user account.
// The backend password hash is never carried here.
type User struct {
	ID        string   `json:"id" yaml:"id"`
	Email     string   `json:"email" yaml:"email"`
	Role      UserRole `json:"role" yaml:"role"`
	CreatedAt string   `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
