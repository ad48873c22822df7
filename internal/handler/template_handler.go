package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/export"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/service"
)

type TemplateHandler struct {
	svc *service.TemplateService
}

func NewTemplateHandler(svc *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

type valuesRequest struct {
	Values map[string]string `json:"values"`
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTemplateInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tpl, err := h.svc.Create(r.Context(), actor(r), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.svc.Get(r.Context(), actor(r), chi.URLParam(r, "templateId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateTemplateInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tpl, err := h.svc.Update(r.Context(), actor(r), chi.URLParam(r, "templateId"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), actor(r), chi.URLParam(r, "templateId")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *TemplateHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	tpl, err := h.svc.Duplicate(r.Context(), actor(r), chi.URLParam(r, "templateId"), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (h *TemplateHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.Status `json:"status"`
	}
	if err := readJSON(r, &req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}
	tpl, err := h.svc.Transition(r.Context(), actor(r), chi.URLParam(r, "templateId"), req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *TemplateHandler) BindDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source string `json:"source"`
	}
	if err := readJSON(r, &req); err != nil || req.Source == "" {
		writeError(w, http.StatusBadRequest, "source is required")
		return
	}
	tpl, info, err := h.svc.BindDocument(r.Context(), actor(r), chi.URLParam(r, "templateId"), req.Source)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"template": tpl, "document": info})
}

func (h *TemplateHandler) AddMergeField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tpl, err := h.svc.AddMergeField(r.Context(), actor(r), chi.URLParam(r, "templateId"), req.Key)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *TemplateHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req valuesRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text, err := h.svc.Render(r.Context(), actor(r), chi.URLParam(r, "templateId"), req.Values)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// Preview returns the rendered terms as sanitized HTML paragraphs.
func (h *TemplateHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req valuesRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	html, err := h.svc.RenderHTML(r.Context(), actor(r), chi.URLParam(r, "templateId"), req.Values)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

func (h *TemplateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req valuesRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Validate(r.Context(), actor(r), chi.URLParam(r, "templateId"), req.Values)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if res.Missing == nil {
		res.Missing = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": res.OK(), "missing": res.Missing})
}

// ExportFields streams the field layout as an Excel workbook.
func (h *TemplateHandler) ExportFields(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.svc.Get(r.Context(), actor(r), chi.URLParam(r, "templateId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	data, err := export.FieldsWorkbook(tpl, h.svc.Registry())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+tpl.Metadata.ID+`-fields.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
