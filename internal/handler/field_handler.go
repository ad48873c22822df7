package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/service"
)

// FieldHandler edits the positioned fields of a template.
type FieldHandler struct {
	svc *service.TemplateService
}

func NewFieldHandler(svc *service.TemplateService) *FieldHandler {
	return &FieldHandler{svc: svc}
}

type deltaRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func (h *FieldHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type models.FieldType `json:"type"`
		Page int              `json:"page"`
		X    float64          `json:"x"`
		Y    float64          `json:"y"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	_, f, err := h.svc.AddField(r.Context(), actor(r), chi.URLParam(r, "templateId"), req.Type, req.Page, req.X, req.Y)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *FieldHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.FieldPatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	_, f, err := h.svc.UpdateField(r.Context(), actor(r), chi.URLParam(r, "templateId"), chi.URLParam(r, "fieldId"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FieldHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req deltaRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	_, f, err := h.svc.MoveField(r.Context(), actor(r), chi.URLParam(r, "templateId"), chi.URLParam(r, "fieldId"), req.DX, req.DY)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Resize takes width and height deltas as dx and dy.
func (h *FieldHandler) Resize(w http.ResponseWriter, r *http.Request) {
	var req deltaRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	_, f, err := h.svc.ResizeField(r.Context(), actor(r), chi.URLParam(r, "templateId"), chi.URLParam(r, "fieldId"), req.DX, req.DY)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *FieldHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.RemoveField(r.Context(), actor(r), chi.URLParam(r, "templateId"), chi.URLParam(r, "fieldId")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
