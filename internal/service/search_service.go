package service

import (
	"context"
	"strings"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

// SearchService filters a tenant's templates by type, status, merge token and
// free text over name and terms.
type SearchService struct {
	templates *TemplateService
}

func NewSearchService(templates *TemplateService) *SearchService {
	return &SearchService{templates: templates}
}

type SearchRequest struct {
	Type       models.TemplateType `json:"type,omitempty"`
	Status     models.Status       `json:"status,omitempty"`
	MergeField string              `json:"mergeField,omitempty"`
	TextQuery  string              `json:"textQuery,omitempty"`
	Skip       int                 `json:"skip"`
	Limit      int                 `json:"limit"`
}

type SearchResult struct {
	Templates []models.TemplateListItem `json:"templates"`
	Total     int                       `json:"total"`
	Mode      string                    `json:"mode"`
}

func (s *SearchService) Search(ctx context.Context, actor Actor, req SearchRequest) (*SearchResult, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Skip < 0 {
		req.Skip = 0
	}

	items, err := s.templates.List(ctx, actor)
	if err != nil {
		return nil, err
	}

	text := strings.ToLower(strings.TrimSpace(req.TextQuery))
	// Terms and merge tokens are only in the full template; load it only when
	// the list item alone cannot decide.
	needBody := text != "" || req.MergeField != ""
	mode := "structured"
	if needBody {
		mode = "text"
	}

	matched := make([]models.TemplateListItem, 0, len(items))
	for _, item := range items {
		if req.Type != "" && item.Type != req.Type {
			continue
		}
		if req.Status != "" && item.Status != req.Status {
			continue
		}
		if needBody {
			tpl, err := s.templates.Get(ctx, actor, item.ID)
			if err != nil {
				continue
			}
			if req.MergeField != "" && !usesToken(tpl, req.MergeField) {
				continue
			}
			if text != "" && !strings.Contains(strings.ToLower(tpl.Metadata.Name), text) &&
				!strings.Contains(strings.ToLower(tpl.Terms), text) {
				continue
			}
		}
		matched = append(matched, item)
	}

	total := len(matched)
	start := min(req.Skip, total)
	end := min(start+req.Limit, total)
	return &SearchResult{Templates: matched[start:end], Total: total, Mode: mode}, nil
}

func usesToken(tpl *models.Template, key string) bool {
	for _, k := range tpl.MergeFields {
		if k == key {
			return true
		}
	}
	for _, f := range tpl.Fields {
		if f.MergeField == key {
			return true
		}
	}
	return false
}
