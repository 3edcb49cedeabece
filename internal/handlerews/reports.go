package handlerews

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/openews/report-server/internal/middleware"
	"github.com/openews/report-server/internal/reports"
	"github.com/openews/report-server/internal/reportstore"
)

type listRequest struct {
	PageNumber int                `json:"pageNumber"`
	Filter     reportstore.Filter `json:"filter"`
}

type crossCheckResponse struct {
	Warnings []string `json:"warnings"`
}

func (he *HandlerEws) list(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed list request", http.StatusBadRequest)
		return
	} // .if

	viewer := middleware.ViewerFromContext(r.Context())
	page, err := he.Reports.List(r.Context(), viewer, req.PageNumber, req.Filter)
	if err != nil {
		he.logger.Error("report list failed", "error", err.Error())
		http.Error(w, "report list failed", http.StatusInternalServerError)
		return
	}

	he.writeJson(w, http.StatusOK, page)
} // .list

func (he *HandlerEws) accept(w http.ResponseWriter, r *http.Request) {
	he.crossCheck(w, r, he.Reports.Accept)
}

func (he *HandlerEws) dismiss(w http.ResponseWriter, r *http.Request) {
	he.crossCheck(w, r, he.Reports.Dismiss)
}

func (he *HandlerEws) crossCheck(w http.ResponseWriter, r *http.Request, transition func(context.Context, int, string) ([]string, error)) {
	viewer := middleware.ViewerFromContext(r.Context())
	if viewer == nil {
		http.Error(w, "viewer could not be resolved", http.StatusUnauthorized)
		return
	} // .if

	reportId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "malformed report id", http.StatusBadRequest)
		return
	}

	warnings, err := transition(r.Context(), reportId, viewer.Name)
	if err != nil {
		he.logger.Warn("report cross check rejected", "reportId", reportId, "error", err.Error())
		http.Error(w, err.Error(), crossCheckStatusCode(err))
		return
	}
	if warnings == nil {
		warnings = []string{}
	}

	he.writeJson(w, http.StatusOK, crossCheckResponse{Warnings: warnings})
} // .crossCheck

func crossCheckStatusCode(err error) int {
	switch {
	case errors.Is(err, reports.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, reports.ErrAlreadyCrossChecked):
		return http.StatusConflict
	case errors.Is(err, reports.ErrCannotCrossCheckDcpReport),
		errors.Is(err, reports.ErrCannotCrossCheckReportWithoutLocation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (he *HandlerEws) writeJson(w http.ResponseWriter, code int, v any) {
	jsonResp, err := json.Marshal(v)
	if err != nil {
		errMsg := "error marshal json for response"
		he.logger.Error(errMsg, "error", err.Error())
		http.Error(w, errMsg, http.StatusInternalServerError)
		return
	} // .if

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResp)
}
