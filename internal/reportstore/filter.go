package reportstore

import (
	"sort"
	"time"

	"github.com/openews/report-server/internal/models"
)

type AreaType string

const (
	AreaRegion   AreaType = "Region"
	AreaDistrict AreaType = "District"
	AreaVillage  AreaType = "Village"
	AreaZone     AreaType = "Zone"
)

type Area struct {
	Type AreaType `json:"type"`
	Id   int      `json:"id"`
}

// Filter is an immutable query specification shared by the list and dashboard
// views so both always see the same report set. Zero values are pass-through.
type Filter struct {
	NationalSocietyId int                       `json:"national_society_id,omitempty"`
	ProjectId         int                       `json:"project_id,omitempty"`
	Statuses          []models.ReportStatus     `json:"statuses,omitempty"`
	KnownSendersOnly  bool                      `json:"known_senders_only,omitempty"`
	UnknownSenders    bool                      `json:"unknown_senders,omitempty"`
	Area              *Area                     `json:"area,omitempty"`
	DataCollectorType *models.DataCollectorType `json:"data_collector_type,omitempty"`
	OrganizationId    *int                      `json:"organization_id,omitempty"`
	StartDate         time.Time                 `json:"start_date,omitempty"`
	EndDate           time.Time                 `json:"end_date,omitempty"`
	UtcOffset         int                       `json:"utc_offset,omitempty"`
	HealthRisks       []int                     `json:"health_risks,omitempty"`
	TrainingStatus    *bool                     `json:"training_status,omitempty"`
	ErrorType         *string                   `json:"error_type,omitempty"`
	IsCorrected       *bool                     `json:"is_corrected,omitempty"`
	Descending        bool                      `json:"descending,omitempty"`
	HealthRiskTypes   []models.HealthRiskType   `json:"health_risk_types,omitempty"`
}

// AdjustedReceivedAt shifts a report timestamp into the caller's local clock.
func (f Filter) AdjustedReceivedAt(t time.Time) time.Time {
	return t.UTC().Add(time.Duration(f.UtcOffset) * time.Hour)
}

// Matches applies the filter predicates in a fixed order: report status,
// known-data-collector, area, data collector type, organization,
// project/national-society scope, date range, health risks, training mode,
// error type, corrected state. The predicates are commutative; keeping the
// order fixed aids testability. orgId is the report's owning organization,
// resolved per row through the supervisor links, zero when unresolved.
func (f Filter) Matches(r models.Report, orgId int) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if r.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.KnownSendersOnly && senderUnknown(r) {
		return false
	}
	if f.UnknownSenders && !senderUnknown(r) {
		return false
	}

	if f.Area != nil && !matchesArea(r, *f.Area) {
		return false
	}

	if f.DataCollectorType != nil {
		if r.DataCollector == nil || r.DataCollector.Type != *f.DataCollectorType {
			return false
		}
	}

	if f.OrganizationId != nil && orgId != *f.OrganizationId {
		return false
	}

	// reports from unmatched senders have no project linkage yet, so the
	// unknown-sender view scopes by national society instead
	if f.UnknownSenders || f.ProjectId == 0 {
		if f.NationalSocietyId != 0 && r.NationalSocietyId != f.NationalSocietyId {
			return false
		}
	} else if r.ProjectId != f.ProjectId {
		return false
	}

	if !f.StartDate.IsZero() || !f.EndDate.IsZero() {
		adj := f.AdjustedReceivedAt(r.ReceivedAt)
		if !f.StartDate.IsZero() && adj.Before(truncateToDate(f.StartDate)) {
			return false
		}
		if !f.EndDate.IsZero() && !adj.Before(truncateToDate(f.EndDate).AddDate(0, 0, 1)) {
			return false
		}
	}

	if len(f.HealthRisks) > 0 {
		found := false
		for _, id := range f.HealthRisks {
			if r.HealthRiskId == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.HealthRiskTypes) > 0 {
		found := false
		for _, hrt := range f.HealthRiskTypes {
			if r.HealthRiskType == hrt {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.TrainingStatus != nil && r.IsTraining != *f.TrainingStatus {
		return false
	}

	if f.ErrorType != nil && r.ErrorType != *f.ErrorType {
		return false
	}

	if f.IsCorrected != nil && r.IsCorrected != *f.IsCorrected {
		return false
	}

	return true
}

// Sort orders reports by UTC-offset-adjusted receivedAt.
func (f Filter) Sort(reports []models.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		a := f.AdjustedReceivedAt(reports[i].ReceivedAt)
		b := f.AdjustedReceivedAt(reports[j].ReceivedAt)
		if f.Descending {
			return a.After(b)
		}
		return a.Before(b)
	})
}

func senderUnknown(r models.Report) bool {
	return r.DataCollector == nil || r.DataCollector.Type == models.DataCollectorUnknownSender
}

func matchesArea(r models.Report, a Area) bool {
	if r.Location == nil {
		return false
	}
	switch a.Type {
	case AreaRegion:
		return r.Location.RegionId == a.Id
	case AreaDistrict:
		return r.Location.DistrictId == a.Id
	case AreaVillage:
		return r.Location.VillageId == a.Id
	case AreaZone:
		return r.Location.ZoneId == a.Id
	}
	return false
}

// OwningOrganization resolves the organization a report belongs to by matching
// the data collector's supervisor or head supervisor against the national
// society's user-organization links.
func OwningOrganization(links []models.OrganizationLink, r models.Report) (models.OrganizationLink, bool) {
	if r.DataCollector == nil {
		return models.OrganizationLink{}, false
	}
	for _, l := range links {
		if l.UserId != 0 && (l.UserId == r.DataCollector.SupervisorId || l.UserId == r.DataCollector.HeadSupervisorId) {
			return l, true
		}
	}
	return models.OrganizationLink{}, false
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
