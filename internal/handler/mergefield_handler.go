package handler

import (
	"net/http"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/mergefields"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/service"
)

type MergeFieldHandler struct {
	svc *service.TemplateService
}

func NewMergeFieldHandler(svc *service.TemplateService) *MergeFieldHandler {
	return &MergeFieldHandler{svc: svc}
}

// List returns the merge field catalog grouped by category, or a single
// category when ?category= is set.
func (h *MergeFieldHandler) List(w http.ResponseWriter, r *http.Request) {
	reg := h.svc.Registry()
	if c := r.URL.Query().Get("category"); c != "" {
		fields := reg.ByCategory(mergefields.Category(c))
		if fields == nil {
			fields = []mergefields.MergeField{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"fields": fields})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": reg.Groups(), "custom": reg.Custom()})
}
