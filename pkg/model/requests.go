package model

// Request payloads sent by the console. Field names follow the backend's
// request contract (lower camel case); validate tags are checked on the
// client before anything is sent.

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"notblank,email"`
	Password string `json:"password" validate:"required"`
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Email    string   `json:"email" validate:"notblank,email"`
	Password string   `json:"password" validate:"required"`
	Role     UserRole `json:"role" validate:"required,oneof=admin user"`
}

// UpdateUserRequest is the body of PUT /api/users/:id. Nil fields are left
// unchanged by the backend.
type UpdateUserRequest struct {
	Email    *string   `json:"email,omitempty" validate:"omitempty,notblank,email"`
	Password *string   `json:"password,omitempty" validate:"omitempty,min=1"`
	Role     *UserRole `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
}

// CreateCategoryRequest is the body of POST /api/categories.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description"`
}

// UpdateCategoryRequest is the body of PUT /api/categories/:id.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,notblank"`
	Description *string `json:"description,omitempty"`
}

// CreateTagRequest is the body of POST /api/tags.
type CreateTagRequest struct {
	Name string `json:"name" validate:"notblank"`
}

// UpdateTagRequest is the body of PUT /api/tags/:id.
type UpdateTagRequest struct {
	Name string `json:"name" validate:"notblank"`
}
