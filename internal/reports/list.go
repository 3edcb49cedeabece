package reports

import (
	"context"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/openews/report-server/internal/localization"
	"github.com/openews/report-server/internal/models"
	"github.com/openews/report-server/internal/registration"
	"github.com/openews/report-server/internal/reportstore"
	"github.com/openews/report-server/pkg/sloger"
)

var logger *slog.Logger

func init() {
	type Empty struct{}
	pkgParts := strings.Split(reflect.TypeOf(Empty{}).PkgPath(), "/")
	// add package name to app logger
	logger = sloger.With("pkg", pkgParts[len(pkgParts)-1])
}

// Viewer is the resolved identity of the requesting user. A nil viewer means
// the identity could not be resolved; listing treats that as no access, not
// as an error.
type Viewer struct {
	UserId           int
	Name             string
	Role             models.UserRole
	OrganizationId   int
	OrganizationName string
	Language         string
}

type PaginatedList[T any] struct {
	Data        []T `json:"data"`
	Page        int `json:"page"`
	RowsPerPage int `json:"rowsPerPage"`
	TotalRows   int `json:"totalRows"`
}

// ReportRow is the list projection of one report. ReceivedAt is adjusted by
// the caller's UTC offset. HealthRiskName is nil when no localized name
// exists for the viewer's content language.
type ReportRow struct {
	Id                       int                 `json:"id"`
	ReceivedAt               time.Time           `json:"receivedAt"`
	Status                   models.ReportStatus `json:"status"`
	ReportType               models.ReportType   `json:"reportType"`
	HealthRiskId             int                 `json:"healthRiskId"`
	HealthRiskName           *string             `json:"healthRiskName"`
	ReportedCaseCount        int                 `json:"reportedCaseCount"`
	Region                   string              `json:"region,omitempty"`
	District                 string              `json:"district,omitempty"`
	Village                  string              `json:"village,omitempty"`
	Zone                     string              `json:"zone,omitempty"`
	DataCollectorDisplayName string              `json:"dataCollectorDisplayName,omitempty"`
	PhoneNumber              string              `json:"phoneNumber,omitempty"`
	OrganizationName         string              `json:"organizationName,omitempty"`
	Text                     string              `json:"text,omitempty"`
	IsAnonymized             bool                `json:"isAnonymized"`
}

type Service struct {
	Store       reportstore.Store
	Vault       *localization.Vault
	Registrar   registration.Registrar
	RowsPerPage int
}

// List builds the filtered, paginated report projection with the
// cross-organization anonymization applied to the returned page only.
func (s *Service) List(ctx context.Context, viewer *Viewer, pageNumber int, f reportstore.Filter) (PaginatedList[ReportRow], error) {
	empty := PaginatedList[ReportRow]{
		Data:        []ReportRow{},
		Page:        pageNumber,
		RowsPerPage: s.RowsPerPage,
	}
	if viewer == nil {
		// no identity means no access, not an error
		return empty, nil
	}
	if pageNumber < 1 {
		pageNumber = 1
		empty.Page = 1
	}

	if !f.UnknownSenders {
		f.KnownSendersOnly = true
	}

	all, err := s.Store.Select(ctx, f)
	if err != nil {
		return empty, err
	}

	// total count comes from the unpaginated filtered set
	total := len(all)
	start := (pageNumber - 1) * s.RowsPerPage
	if start >= total {
		empty.TotalRows = total
		return empty, nil
	}
	end := start + s.RowsPerPage
	if end > total {
		end = total
	}
	page := all[start:end]

	links, err := s.Store.OrganizationLinks(ctx, f.NationalSocietyId)
	if err != nil {
		return empty, err
	}

	lang := ""
	var names map[int]string
	if s.Vault != nil {
		lang = s.Vault.MatchLanguage(viewer.Language)
	}
	names, err = s.Store.HealthRiskNames(ctx, lang)
	if err != nil {
		return empty, err
	}

	viewerOrg := models.OrganizationLink{
		OrganizationId:   viewer.OrganizationId,
		OrganizationName: viewer.OrganizationName,
	}

	rows := make([]ReportRow, 0, len(page))
	for _, r := range page {
		row := projectRow(r, f, names)

		rowOrg, _ := reportstore.OwningOrganization(links, r)
		row.OrganizationName = rowOrg.OrganizationName

		// anonymization runs against the page, never the full set, and
		// never against the unknown sender view
		if !f.UnknownSenders {
			s.anonymize(&row, r, viewer, viewerOrg, rowOrg, lang)
		}
		rows = append(rows, row)
	}

	return PaginatedList[ReportRow]{
		Data:        rows,
		Page:        pageNumber,
		RowsPerPage: s.RowsPerPage,
		TotalRows:   total,
	}, nil
}

func (s *Service) anonymize(row *ReportRow, r models.Report, viewer *Viewer, viewerOrg, rowOrg models.OrganizationLink, lang string) {
	visibility := ResolveVisibility(viewer.Role, viewerOrg, rowOrg)
	if visibility == Full {
		return
	}

	row.IsAnonymized = true
	switch visibility {
	case AnonymizedToSupervisor:
		supervisor := ""
		if r.DataCollector != nil {
			supervisor = r.DataCollector.SupervisorName
		}
		row.DataCollectorDisplayName = s.Vault.Get(lang, localization.KeyLinkedToSupervisor, supervisor)
	case AnonymizedToOrganization:
		row.DataCollectorDisplayName = s.Vault.Get(lang, localization.KeyLinkedToOrganization, rowOrg.OrganizationName)
	}
	row.PhoneNumber = ""
	row.Zone = ""
	row.Village = ""
}

func projectRow(r models.Report, f reportstore.Filter, names map[int]string) ReportRow {
	row := ReportRow{
		Id:                r.Id,
		ReceivedAt:        f.AdjustedReceivedAt(r.ReceivedAt),
		Status:            r.Status,
		ReportType:        r.ReportType,
		HealthRiskId:      r.HealthRiskId,
		ReportedCaseCount: r.ReportedCaseCount,
		PhoneNumber:       r.Sender,
		Text:              r.Text,
	}
	if name, ok := names[r.HealthRiskId]; ok {
		row.HealthRiskName = &name
	}
	if r.Location != nil {
		row.Region = r.Location.RegionName
		row.District = r.Location.DistrictName
		row.Village = r.Location.VillageName
		row.Zone = r.Location.ZoneName
	}
	if r.DataCollector != nil {
		row.DataCollectorDisplayName = r.DataCollector.DisplayName
	}
	return row
}
