package handler

import (
	"net/http"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/repository"
)

// AdminHandler exposes cross-tenant views. Routes are gated on the admin role.
type AdminHandler struct {
	store repository.TemplateStore
}

func NewAdminHandler(store repository.TemplateStore) *AdminHandler {
	return &AdminHandler{store: store}
}

func (h *AdminHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	tenants := make(map[string]int)
	for _, it := range items {
		tenants[it.TenantID]++
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": items, "tenants": tenants})
}
