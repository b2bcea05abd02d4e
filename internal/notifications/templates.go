package notifications

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/wildhaven/parkops-backend/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

func NewEmailLookupFunc(queries *store.Store) EmailLookupFunc {
	return func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
		users, err := queries.ListUsersByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		result := make(map[uuid.UUID]string, len(users))
		for _, u := range users {
			result[u.ID] = u.Email
		}
		return result, nil
	}
}

// DefaultTemplates parses the embedded email templates. Each .html
// file defines {{define "name:subject"}} and {{define "name:body"}}
// blocks, where name matches the filename without extension.
func DefaultTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded email templates: %w", err)
	}
	return tmpl, nil
}

// LoadTemplates parses templates from a directory, for deployments
// that override the embedded set.
func LoadTemplates(dir string) (*template.Template, error) {
	pattern := filepath.Join(dir, "*.html")
	tmpl, err := template.ParseGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates from %s: %w", dir, err)
	}
	return tmpl, nil
}
