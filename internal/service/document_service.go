package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/document"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

const maxDocumentSize = 25 << 20

var ErrDocumentNotFound = errors.New("document not found")

// StoredDocument is an uploaded document ready to be bound to a template.
type StoredDocument struct {
	Source      string         `json:"source"`
	FileName    string         `json:"fileName"`
	ContentType string         `json:"contentType"`
	Info        *document.Info `json:"info"`
}

// DocumentService keeps uploaded documents on disk, one directory per
// tenant, under the same root the loader's FileFetcher reads from.
type DocumentService struct {
	root      string
	inspector document.Inspector
	logger    *zap.Logger
}

func NewDocumentService(root string, inspector document.Inspector, logger *zap.Logger) *DocumentService {
	return &DocumentService{root: root, inspector: inspector, logger: logger}
}

// Upload inspects data and stores it only when it is a readable document.
func (s *DocumentService) Upload(ctx context.Context, actor Actor, fileName string, data []byte) (*StoredDocument, error) {
	if len(data) == 0 {
		return nil, models.NewValidationError("file data is empty")
	}
	if len(data) > maxDocumentSize {
		return nil, models.NewValidationError(fmt.Sprintf("file exceeds %d MB", maxDocumentSize>>20))
	}
	info, err := s.inspector.Inspect(data)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	dir := filepath.Join(s.root, actor.TenantID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	key := uuid.New().String() + documentExt(fileName, info.ContentType)
	if err := os.WriteFile(filepath.Join(dir, key), data, 0644); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	s.logger.Info("document stored",
		zap.String("tenant_id", actor.TenantID),
		zap.String("key", key),
		zap.Int("pages", info.PageCount),
	)
	return &StoredDocument{
		Source:      "file://" + actor.TenantID + "/" + key,
		FileName:    fileName,
		ContentType: info.ContentType,
		Info:        info,
	}, nil
}

func (s *DocumentService) Download(ctx context.Context, actor Actor, key string) ([]byte, string, error) {
	p, err := s.path(actor, key)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrDocumentNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("read document: %w", err)
	}
	return data, detectContentType(key), nil
}

func (s *DocumentService) Delete(ctx context.Context, actor Actor, key string) error {
	p, err := s.path(actor, key)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		return ErrDocumentNotFound
	}
	return err
}

func (s *DocumentService) path(actor Actor, key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", models.NewValidationError(fmt.Sprintf("invalid document key %q", key))
	}
	return filepath.Join(s.root, actor.TenantID, key), nil
}

func documentExt(fileName, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" && detectContentType(ext) != "application/octet-stream" {
		return ext
	}
	switch contentType {
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	}
	return ""
}

func detectContentType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	types := map[string]string{
		".pdf":  "application/pdf",
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".gif":  "image/gif",
	}
	if ct, ok := types[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
