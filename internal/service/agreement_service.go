package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/repository"
)

// AgreementService finalizes templates into stored agreements.
type AgreementService struct {
	agreements repository.AgreementStore
	templates  *TemplateService
	logger     *zap.Logger
}

func NewAgreementService(agreements repository.AgreementStore, templates *TemplateService, logger *zap.Logger) *AgreementService {
	return &AgreementService{agreements: agreements, templates: templates, logger: logger}
}

// Create finalizes templateID with values and records the agreement. Nothing
// is stored when required values are missing.
func (s *AgreementService) Create(ctx context.Context, actor Actor, templateID string, values map[string]string) (*models.Agreement, error) {
	agreement, err := s.templates.Finalize(ctx, actor, templateID, values)
	if err != nil {
		return nil, err
	}
	agreement.TenantID = actor.TenantID
	if err := s.agreements.Create(ctx, agreement); err != nil {
		return nil, err
	}
	s.logger.Info("agreement finalized",
		zap.String("agreement_id", agreement.ID),
		zap.String("template_id", templateID),
		zap.Int("template_version", agreement.TemplateVersion),
	)
	return agreement, nil
}

func (s *AgreementService) List(ctx context.Context, actor Actor, templateID string) ([]models.Agreement, error) {
	if _, err := s.templates.Get(ctx, actor, templateID); err != nil {
		return nil, err
	}
	return s.agreements.FindByTemplate(ctx, templateID)
}

func (s *AgreementService) Get(ctx context.Context, actor Actor, id string) (*models.Agreement, error) {
	a, err := s.agreements.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.TenantID != actor.TenantID {
		return nil, ErrForbidden
	}
	return a, nil
}

func (s *AgreementService) CountByTemplate(ctx context.Context, templateID string) (int, error) {
	return s.agreements.CountByTemplate(ctx, templateID)
}
