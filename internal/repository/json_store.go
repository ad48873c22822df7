package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

// JSONTemplateStore keeps one JSON file per template under BasePath.
type JSONTemplateStore struct {
	BasePath string
	logger   *zap.Logger
}

func NewJSONTemplateStore(basePath string, logger *zap.Logger) (*JSONTemplateStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory '%s': %w", basePath, err)
	}
	return &JSONTemplateStore{BasePath: basePath, logger: logger}, nil
}

func (s *JSONTemplateStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid template id %q", id)
	}
	return filepath.Join(s.BasePath, id+".json"), nil
}

func (s *JSONTemplateStore) Save(ctx context.Context, tpl *models.Template) error {
	data, err := encodeTemplate(tpl)
	if err != nil {
		return err
	}
	p, err := s.path(tpl.Metadata.ID)
	if err != nil {
		return err
	}
	// Write to a sibling temp file first so a crash never leaves a torn template.
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write template file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("failed to replace template file %s: %w", p, err)
	}
	s.logger.Debug("template saved", zap.String("path", p))
	return nil
}

func (s *JSONTemplateStore) Load(ctx context.Context, id string) (*models.Template, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound("template", id)
		}
		return nil, fmt.Errorf("failed to read template file %s: %w", p, err)
	}
	return decodeTemplate(data)
}

func (s *JSONTemplateStore) List(ctx context.Context) ([]models.TemplateListItem, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.TemplateListItem{}, nil
		}
		return nil, fmt.Errorf("failed to read storage directory %s: %w", s.BasePath, err)
	}
	items := make([]models.TemplateListItem, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		tpl, err := s.Load(ctx, strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			s.logger.Warn("skipping unreadable template", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		items = append(items, tpl.ListItem())
	}
	sortListItems(items)
	return items, nil
}

func (s *JSONTemplateStore) Delete(ctx context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return notFound("template", id)
		}
		return fmt.Errorf("failed to delete template file %s: %w", p, err)
	}
	return nil
}
