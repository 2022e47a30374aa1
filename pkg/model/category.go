package model

// Category groups content under a named heading.
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	CreatedAt   string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// Tag is a flat label.
type Tag struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	CreatedAt string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}
