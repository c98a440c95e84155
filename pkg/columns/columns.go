// Package columns describes the fixed output layout of a merged table.
package columns

import (
	"strings"

	"github.com/agentstation/tablemerge/pkg/errors"
)

// Column maps a record field to an output header.
type Column struct {
	// ID is the record field name written in this column.
	ID string `json:"id" yaml:"id" mapstructure:"id"`
	// Title is the header text. An empty Title means ID.
	Title string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
}

// Header returns the column's header text.
func (c Column) Header() string {
	if c.Title == "" {
		return c.ID
	}
	return c.Title
}

// String returns the column in "id:title" form.
func (c Column) String() string {
	if c.Title == "" || c.Title == c.ID {
		return c.ID
	}
	return c.ID + ":" + c.Title
}

// Default returns the layout of the merged contact table.
func Default() []Column {
	ids := []string{
		"email",
		"name",
		"profile_id",
		"total_exp",
		"highest qualification",
		"company_name",
		"skills",
		"created_at",
	}
	cols := make([]Column, len(ids))
	for i, id := range ids {
		cols[i] = Column{ID: id, Title: id}
	}
	return cols
}

// Parse converts "id[:title]" specs into columns.
func Parse(specs ...string) ([]Column, error) {
	cols := make([]Column, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		id, title, _ := strings.Cut(spec, ":")
		id = strings.TrimSpace(id)
		title = strings.TrimSpace(title)
		if id == "" {
			return nil, &errors.ValidationError{
				Field:   "columns",
				Value:   spec,
				Message: "column id cannot be empty",
			}
		}
		if seen[id] {
			return nil, &errors.ValidationError{
				Field:   "columns",
				Value:   spec,
				Message: "duplicate column " + id,
			}
		}
		seen[id] = true
		if title == "" {
			title = id
		}
		cols = append(cols, Column{ID: id, Title: title})
	}
	return cols, nil
}

// Validate checks that cols is non-empty and every column has a unique ID.
func Validate(cols []Column) error {
	if len(cols) == 0 {
		return &errors.ValidationError{Field: "columns", Message: "at least one column is required"}
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if c.ID == "" {
			return &errors.ValidationError{Field: "columns", Value: c, Message: "column id cannot be empty"}
		}
		if seen[c.ID] {
			return &errors.ValidationError{Field: "columns", Value: c, Message: "duplicate column " + c.ID}
		}
		seen[c.ID] = true
	}
	return nil
}

// Headers returns the header text of every column.
func Headers(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header()
	}
	return out
}
