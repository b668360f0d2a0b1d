package handlers

import (
	"net/http"

	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/services"
	"github.com/go-chi/chi/v5"
)

type ScoringHandler struct {
	scoringService services.ScoringService
}

func NewScoringHandler(s services.ScoringService) *ScoringHandler {
	return &ScoringHandler{scoringService: s}
}

func (h *ScoringHandler) FindTeam(w http.ResponseWriter, r *http.Request) {
	principal := currentPrincipal(w, r)
	if principal == nil {
		return
	}

	team, err := h.scoringService.FindTeam(r.Context(), chi.URLParam(r, "teamNumber"), principal.User)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"team":   team,
		"rubric": models.DefaultRubric(),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScoringHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	principal := currentPrincipal(w, r)
	if principal == nil {
		return
	}

	var input services.SubmitScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TeamNumber = chi.URLParam(r, "teamNumber")

	score, err := h.scoringService.SubmitScore(r.Context(), input, principal.User)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"score":   score,
		"message": "Score submitted successfully!",
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScoringHandler) ListScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.scoringService.ListScores(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"scores": scores}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
