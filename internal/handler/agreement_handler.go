package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/service"
)

type AgreementHandler struct {
	svc *service.AgreementService
}

func NewAgreementHandler(svc *service.AgreementService) *AgreementHandler {
	return &AgreementHandler{svc: svc}
}

func (h *AgreementHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), actor(r), chi.URLParam(r, "templateId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"agreements": list, "total": len(list)})
}

// Create finalizes the template with the posted values and stores the
// resulting agreement.
func (h *AgreementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req valuesRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := h.svc.Create(r.Context(), actor(r), chi.URLParam(r, "templateId"), req.Values)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AgreementHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), actor(r), chi.URLParam(r, "agreementId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
