package handler

import (
	"net/http"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/service"
)

type DashboardHandler struct {
	templates  *service.TemplateService
	agreements *service.AgreementService
}

func NewDashboardHandler(templates *service.TemplateService, agreements *service.AgreementService) *DashboardHandler {
	return &DashboardHandler{templates: templates, agreements: agreements}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	items, err := h.templates.List(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	byStatus := map[models.Status]int{
		models.StatusDraft:    0,
		models.StatusActive:   0,
		models.StatusArchived: 0,
	}
	totalAgreements := 0
	stats := make([]map[string]any, 0, len(items))
	for _, it := range items {
		byStatus[it.Status]++
		count, _ := h.agreements.CountByTemplate(r.Context(), it.ID)
		totalAgreements += count
		stats = append(stats, map[string]any{
			"id":             it.ID,
			"name":           it.Name,
			"type":           it.Type,
			"status":         it.Status,
			"fieldCount":     it.FieldCount,
			"agreementCount": count,
			"updatedAt":      it.UpdatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"templateCount":  len(items),
		"byStatus":       byStatus,
		"agreementCount": totalAgreements,
		"templates":      stats,
	})
}
