package handler

import (
	"net/http"
	"strings"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/auth"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// signup is the body of both self-registration and admin-created users. The
// tenant always comes from the server, never from the body.
type signup struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func readSignup(w http.ResponseWriter, r *http.Request) (signup, bool) {
	var req signup
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "email, password, and name are required")
		return req, false
	}
	return req, true
}

// Register opens a new dealership tenant owned by the caller.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := readSignup(w, r)
	if !ok {
		return
	}
	result, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// AddUser creates an account in the calling admin's tenant.
func (h *AuthHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	req, ok := readSignup(w, r)
	if !ok {
		return
	}
	user, err := h.svc.AddUser(r.Context(), actor(r), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.svc.Me(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}
