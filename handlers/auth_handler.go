package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input models.Credentials
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	result, err := h.authService.SignIn(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	principal := currentPrincipal(w, r)
	if principal == nil {
		return
	}
	if err := h.authService.SignOut(r.Context(), principal); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := currentPrincipal(w, r)
	if principal == nil {
		return
	}
	response := jsonResponse{
		"user":       principal.User,
		"expires_at": principal.ExpiresAt,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Home returns the landing view of the signed-in role.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	principal := currentPrincipal(w, r)
	if principal == nil {
		return
	}
	response := jsonResponse{
		"home": services.HomeRoute(principal.User.Role),
		"role": principal.User.Role,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
