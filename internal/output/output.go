// Package output prints records as tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/me/adminportal/pkg/model"
)

// Formats accepted by Write.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ParseFormat normalizes a --output value.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (table, json, yaml)", s)
	}
}

// Write prints v in format. v must be a model.User, model.Category or
// model.Tag, or a slice of one of them, for the table format.
func Write(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	switch x := v.(type) {
	case []model.User:
		Users(w, x)
	case model.User:
		Users(w, []model.User{x})
	case []model.Category:
		Categories(w, x)
	case model.Category:
		Categories(w, []model.Category{x})
	case []model.Tag:
		Tags(w, x)
	case model.Tag:
		Tags(w, []model.Tag{x})
	default:
		return fmt.Errorf("no table layout for %T", v)
	}
	return nil
}

// Users prints a user table.
func Users(w io.Writer, users []model.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-32s  %-6s  %s\n", "ID", "EMAIL", "ROLE", "CREATED")
	fmt.Fprintf(w, "%-36s  %-32s  %-6s  %s\n", "--", "-----", "----", "-------")
	for _, u := range users {
		fmt.Fprintf(w, "%-36s  %-32s  %-6s  %s\n", u.ID, u.Email, u.Role, u.CreatedAt)
	}
}

// Categories prints a category table.
func Categories(w io.Writer, cats []model.Category) {
	if len(cats) == 0 {
		fmt.Fprintln(w, "No categories found.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-24s  %-40s  %s\n", "ID", "NAME", "DESCRIPTION", "CREATED")
	fmt.Fprintf(w, "%-36s  %-24s  %-40s  %s\n", "--", "----", "-----------", "-------")
	for _, c := range cats {
		fmt.Fprintf(w, "%-36s  %-24s  %-40s  %s\n", c.ID, c.Name, truncate(c.Description, 40), c.CreatedAt)
	}
}

// Tags prints a tag table.
func Tags(w io.Writer, tags []model.Tag) {
	if len(tags) == 0 {
		fmt.Fprintln(w, "No tags found.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-24s  %s\n", "ID", "NAME", "CREATED")
	fmt.Fprintf(w, "%-36s  %-24s  %s\n", "--", "----", "-------")
	for _, t := range tags {
		fmt.Fprintf(w, "%-36s  %-24s  %s\n", t.ID, t.Name, t.CreatedAt)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
