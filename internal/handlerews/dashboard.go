package handlerews

import (
	"encoding/json"
	"net/http"

	"github.com/openews/report-server/internal/dashboard"
	"github.com/openews/report-server/internal/middleware"
	"github.com/openews/report-server/internal/reportstore"
)

type dashboardRequest struct {
	Filter      reportstore.Filter    `json:"filter"`
	Granularity dashboard.Granularity `json:"granularity"`
}

func (r dashboardRequest) granularity() dashboard.Granularity {
	if r.Granularity == dashboard.GranularityWeek {
		return dashboard.GranularityWeek
	}
	return dashboard.GranularityDay
}

func (he *HandlerEws) reportsByDate(w http.ResponseWriter, r *http.Request) {
	var req dashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed dashboard request", http.StatusBadRequest)
		return
	} // .if

	series, err := he.Dashboard.GroupByDate(r.Context(), req.Filter, req.granularity())
	if err != nil {
		he.logger.Error("dashboard by date failed", "error", err.Error())
		http.Error(w, "dashboard aggregation failed", http.StatusInternalServerError)
		return
	}
	he.writeJson(w, http.StatusOK, series)
} // .reportsByDate

func (he *HandlerEws) reportsByHealthRisk(w http.ResponseWriter, r *http.Request) {
	var req dashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed dashboard request", http.StatusBadRequest)
		return
	} // .if

	language := ""
	if viewer := middleware.ViewerFromContext(r.Context()); viewer != nil {
		language = viewer.Language
	}
	breakdown, err := he.Dashboard.GroupByHealthRisk(r.Context(), req.Filter, req.granularity(), language)
	if err != nil {
		he.logger.Error("dashboard by health risk failed", "error", err.Error())
		http.Error(w, "dashboard aggregation failed", http.StatusInternalServerError)
		return
	}
	he.writeJson(w, http.StatusOK, breakdown)
} // .reportsByHealthRisk

func (he *HandlerEws) reportsByVillage(w http.ResponseWriter, r *http.Request) {
	var req dashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed dashboard request", http.StatusBadRequest)
		return
	} // .if

	breakdown, err := he.Dashboard.GroupByVillage(r.Context(), req.Filter, req.granularity())
	if err != nil {
		he.logger.Error("dashboard by village failed", "error", err.Error())
		http.Error(w, "dashboard aggregation failed", http.StatusInternalServerError)
		return
	}
	he.writeJson(w, http.StatusOK, breakdown)
} // .reportsByVillage
