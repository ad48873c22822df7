package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/service"
)

type SearchHandler struct {
	svc *service.SearchService
}

func NewSearchHandler(svc *service.SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Search accepts the filter either as a JSON body (POST) or as query
// parameters (GET): type, status, mergeField, q, skip, limit.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req service.SearchRequest
	if r.Method == http.MethodGet {
		var ok bool
		if req, ok = searchFromQuery(r.URL.Query()); !ok {
			writeError(w, http.StatusBadRequest, "skip and limit must be integers")
			return
		}
	} else if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Search(r.Context(), actor(r), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func searchFromQuery(q url.Values) (service.SearchRequest, bool) {
	req := service.SearchRequest{
		Type:       models.TemplateType(q.Get("type")),
		Status:     models.Status(q.Get("status")),
		MergeField: q.Get("mergeField"),
		TextQuery:  q.Get("q"),
	}
	for name, dst := range map[string]*int{"skip": &req.Skip, "limit": &req.Limit} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, false
		}
		*dst = n
	}
	return req, true
}
