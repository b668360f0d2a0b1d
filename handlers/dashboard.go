package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/bridge-judging/services"
)

type DashboardHandler struct {
	reportService    services.ReportService
	standingsService services.StandingsService
}

func NewDashboardHandler(rs services.ReportService, ss services.StandingsService) *DashboardHandler {
	return &DashboardHandler{reportService: rs, standingsService: ss}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reportService.Stats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DashboardHandler) Report(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reportService.Rows(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rows": rows}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	buf, err := h.reportService.Export(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", services.ExportContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ExportFileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		// Заголовки уже отправлены, остаётся только залогировать.
		serverErrorLog(r, err)
	}
}

func (h *DashboardHandler) Archive(w http.ResponseWriter, r *http.Request) {
	archive, err := h.reportService.Archive(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"archive": archive}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DashboardHandler) RecomputeStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.standingsService.Recompute(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
