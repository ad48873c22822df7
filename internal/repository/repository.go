// Package repository persists whole templates and host users. Every store is
// storage-medium agnostic behind the same interface; the last save wins.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type TemplateStore interface {
	Save(ctx context.Context, tpl *models.Template) error
	Load(ctx context.Context, id string) (*models.Template, error)
	List(ctx context.Context) ([]models.TemplateListItem, error)
	Delete(ctx context.Context, id string) error
}

type UserRepo interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

func encodeTemplate(tpl *models.Template) ([]byte, error) {
	if tpl.Metadata.ID == "" {
		return nil, errors.New("template id cannot be empty")
	}
	data, err := json.Marshal(tpl)
	if err != nil {
		return nil, fmt.Errorf("marshal template %s: %w", tpl.Metadata.ID, err)
	}
	return data, nil
}

func decodeTemplate(data []byte) (*models.Template, error) {
	var tpl models.Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("unmarshal template: %w", err)
	}
	return &tpl, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// sortListItems orders newest first, then by id for a stable listing.
func sortListItems(items []models.TemplateListItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].UpdatedAt.Equal(items[j].UpdatedAt) {
			return items[i].UpdatedAt.After(items[j].UpdatedAt)
		}
		return items[i].ID < items[j].ID
	})
}
