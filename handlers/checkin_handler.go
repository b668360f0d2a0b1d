package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/services"
	"github.com/go-chi/chi/v5"
)

type CheckInHandler struct {
	checkInService services.CheckInService
}

func NewCheckInHandler(s services.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkInService: s}
}

func (h *CheckInHandler) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.checkInService.Board(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": board}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CheckInHandler) RequestStatus(w http.ResponseWriter, r *http.Request) {
	teamNumber := chi.URLParam(r, "teamNumber")
	if teamNumber == "" {
		badRequestResponse(w, r, errors.New("missing teamNumber in URL path"))
		return
	}

	var input struct {
		Status models.TeamStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.checkInService.RequestStatus(r.Context(), teamNumber, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"team":    result.Team,
		"message": result.Message,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
