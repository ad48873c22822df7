package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/auth"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/document"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/repository"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/service"
)

const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize)).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		body := map[string]any{"error": ve.Error()}
		if len(ve.Missing) > 0 {
			body["missing"] = ve.Missing
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	}
	var le *document.LoadError
	if errors.As(err, &le) {
		writeError(w, http.StatusBadGateway, le.Error())
		return
	}
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, models.ErrFieldNotFound),
		errors.Is(err, service.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, service.ErrReadOnly),
		errors.Is(err, service.ErrNotActive),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func actor(r *http.Request) service.Actor {
	claims := auth.GetUser(r.Context())
	if claims == nil {
		return service.Actor{}
	}
	return service.Actor{UserID: claims.UserID, TenantID: claims.TenantID, Role: claims.Role}
}
