package reportstore

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/openews/report-server/internal/models"
	"github.com/openews/report-server/pkg/sloger"
)

var logger *slog.Logger

func init() {
	type Empty struct{}
	pkgParts := strings.Split(reflect.TypeOf(Empty{}).PkgPath(), "/")
	// add package name to app logger
	logger = sloger.With("pkg", pkgParts[len(pkgParts)-1])
}

var (
	ErrReportNotFound = errors.New("report not found")
	ErrStatusConflict = errors.New("report status changed concurrently")
)

// Store is the persisted report set read by the query and aggregation engines
// and written by the dequeue worker and the cross-check transitions.
type Store interface {
	// Select returns every report matching the filter, ordered by
	// UTC-offset-adjusted receivedAt ascending unless the filter requests
	// descending.
	Select(ctx context.Context, f Filter) ([]models.Report, error)
	// Get returns ErrReportNotFound when no report carries the id.
	Get(ctx context.Context, id int) (models.Report, error)
	// Save inserts the report when its id is zero, otherwise updates it.
	Save(ctx context.Context, r *models.Report) error
	// Transition updates the report only when the stored row still carries
	// the status the caller read. A row moved by a concurrent call fails
	// with ErrStatusConflict.
	Transition(ctx context.Context, r *models.Report, from models.ReportStatus) error
	// OrganizationLinks reads the user-organization links of a national
	// society. Links are read fresh for every query because membership can
	// change between requests.
	OrganizationLinks(ctx context.Context, nationalSocietyId int) ([]models.OrganizationLink, error)
	// HealthRiskNames resolves localized health risk names for one content
	// language. An id missing from the map has no localized name.
	HealthRiskNames(ctx context.Context, language string) (map[int]string, error)
}
