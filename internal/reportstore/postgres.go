package reportstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openews/report-server/internal/models"
)

// PostgresStore backs the report set with postgres via pgx. Predicates mirror
// Filter.Matches; both must stay in step so the memory store remains a valid
// stand-in for tests.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil, err
	}
	return &PostgresStore{Pool: pool}, nil
}

func (p *PostgresStore) Close() error {
	p.Pool.Close()
	return nil
}

func (p *PostgresStore) Health(ctx context.Context) (rsp models.ServiceHealthResp) {
	rsp.Service = models.REPORT_STORE
	rsp.Status = models.STATUS_UP
	rsp.HealthIssue = models.HEALTH_ISSUE_NONE

	if err := p.Pool.Ping(ctx); err != nil {
		return rsp.BuildErrorResponse(err)
	}
	return rsp
}

const reportColumns = `r.id, r.national_society_id, r.project_id, r.received_at,
	r.reported_case_count,
	r.count_males_below_five, r.count_males_at_least_five,
	r.count_females_below_five, r.count_females_at_least_five,
	r.count_unspecified_sex_and_age,
	r.status, r.report_type, r.health_risk_id, r.health_risk_type,
	r.epi_year, r.epi_week,
	r.region_id, r.region_name, r.district_id, r.district_name,
	r.village_id, r.village_name, r.zone_id, r.zone_name,
	r.data_collector_id, r.data_collector_name, r.data_collector_display_name,
	r.data_collector_type, r.supervisor_id, r.supervisor_name,
	r.head_supervisor_id, r.data_collector_deleted,
	r.sender, r.text, r.is_training, r.is_corrected, r.error_type,
	r.accepted_at, r.accepted_by, r.rejected_at, r.rejected_by,
	r.content_language`

func (p *PostgresStore) Select(ctx context.Context, f Filter) ([]models.Report, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	// same fixed predicate order as Filter.Matches
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, fmt.Sprintf("r.status = ANY(%s)", arg(statuses)))
	}
	if f.KnownSendersOnly {
		where = append(where, fmt.Sprintf("r.data_collector_id <> 0 AND r.data_collector_type <> %s", arg(string(models.DataCollectorUnknownSender))))
	}
	if f.UnknownSenders {
		where = append(where, fmt.Sprintf("(r.data_collector_id = 0 OR r.data_collector_type = %s)", arg(string(models.DataCollectorUnknownSender))))
	}
	if f.Area != nil {
		switch f.Area.Type {
		case AreaRegion:
			where = append(where, fmt.Sprintf("r.region_id = %s", arg(f.Area.Id)))
		case AreaDistrict:
			where = append(where, fmt.Sprintf("r.district_id = %s", arg(f.Area.Id)))
		case AreaVillage:
			where = append(where, fmt.Sprintf("r.village_id = %s", arg(f.Area.Id)))
		case AreaZone:
			where = append(where, fmt.Sprintf("r.zone_id = %s", arg(f.Area.Id)))
		}
	}
	if f.DataCollectorType != nil {
		where = append(where, fmt.Sprintf("r.data_collector_type = %s", arg(string(*f.DataCollectorType))))
	}
	if f.OrganizationId != nil {
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM organization_links l
			WHERE l.national_society_id = r.national_society_id
			AND l.organization_id = %s
			AND l.user_id IN (r.supervisor_id, r.head_supervisor_id))`, arg(*f.OrganizationId)))
	}
	if f.UnknownSenders || f.ProjectId == 0 {
		if f.NationalSocietyId != 0 {
			where = append(where, fmt.Sprintf("r.national_society_id = %s", arg(f.NationalSocietyId)))
		}
	} else {
		where = append(where, fmt.Sprintf("r.project_id = %s", arg(f.ProjectId)))
	}
	offset := fmt.Sprintf("interval '%d hours'", f.UtcOffset)
	if !f.StartDate.IsZero() {
		where = append(where, fmt.Sprintf("r.received_at + %s >= %s", offset, arg(truncateToDate(f.StartDate))))
	}
	if !f.EndDate.IsZero() {
		where = append(where, fmt.Sprintf("r.received_at + %s < %s", offset, arg(truncateToDate(f.EndDate).AddDate(0, 0, 1))))
	}
	if len(f.HealthRisks) > 0 {
		where = append(where, fmt.Sprintf("r.health_risk_id = ANY(%s)", arg(f.HealthRisks)))
	}
	if len(f.HealthRiskTypes) > 0 {
		types := make([]string, len(f.HealthRiskTypes))
		for i, t := range f.HealthRiskTypes {
			types[i] = string(t)
		}
		where = append(where, fmt.Sprintf("r.health_risk_type = ANY(%s)", arg(types)))
	}
	if f.TrainingStatus != nil {
		where = append(where, fmt.Sprintf("r.is_training = %s", arg(*f.TrainingStatus)))
	}
	if f.ErrorType != nil {
		where = append(where, fmt.Sprintf("r.error_type = %s", arg(*f.ErrorType)))
	}
	if f.IsCorrected != nil {
		where = append(where, fmt.Sprintf("r.is_corrected = %s", arg(*f.IsCorrected)))
	}

	query := fmt.Sprintf("SELECT %s FROM reports r", reportColumns)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	direction := "ASC"
	if f.Descending {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY r.received_at + %s %s", offset, direction)

	rows, err := p.Pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("report select failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (p *PostgresStore) Get(ctx context.Context, id int) (models.Report, error) {
	query := fmt.Sprintf("SELECT %s FROM reports r WHERE r.id = $1", reportColumns)
	rows, err := p.Pool.Query(ctx, query, id)
	if err != nil {
		return models.Report{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return models.Report{}, err
		}
		return models.Report{}, ErrReportNotFound
	}
	return scanReport(rows)
}

func (p *PostgresStore) Save(ctx context.Context, r *models.Report) error {
	loc := r.Location
	if loc == nil {
		loc = &models.Location{}
	}
	dc := r.DataCollector
	if dc == nil {
		dc = &models.DataCollector{}
	}

	if r.Id == 0 {
		err := p.Pool.QueryRow(ctx, `INSERT INTO reports (
			national_society_id, project_id, received_at, reported_case_count,
			count_males_below_five, count_males_at_least_five,
			count_females_below_five, count_females_at_least_five,
			count_unspecified_sex_and_age,
			status, report_type, health_risk_id, health_risk_type,
			epi_year, epi_week,
			region_id, region_name, district_id, district_name,
			village_id, village_name, zone_id, zone_name,
			data_collector_id, data_collector_name, data_collector_display_name,
			data_collector_type, supervisor_id, supervisor_name,
			head_supervisor_id, data_collector_deleted,
			sender, text, is_training, is_corrected, error_type,
			accepted_at, accepted_by, rejected_at, rejected_by, content_language
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,
			$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,
			$37,$38,$39,$40,$41
		) RETURNING id`,
			r.NationalSocietyId, r.ProjectId, r.ReceivedAt, r.ReportedCaseCount,
			r.ReportedCase.CountMalesBelowFive, r.ReportedCase.CountMalesAtLeastFive,
			r.ReportedCase.CountFemalesBelowFive, r.ReportedCase.CountFemalesAtLeastFive,
			r.ReportedCase.CountUnspecifiedSexAndAge,
			string(r.Status), string(r.ReportType), r.HealthRiskId, string(r.HealthRiskType),
			r.EpiYear, r.EpiWeek,
			loc.RegionId, loc.RegionName, loc.DistrictId, loc.DistrictName,
			loc.VillageId, loc.VillageName, loc.ZoneId, loc.ZoneName,
			dc.Id, dc.Name, dc.DisplayName, string(dc.Type), dc.SupervisorId,
			dc.SupervisorName, dc.HeadSupervisorId, dc.IsDeleted,
			r.Sender, r.Text, r.IsTraining, r.IsCorrected, r.ErrorType,
			r.AcceptedAt, r.AcceptedBy, r.RejectedAt, r.RejectedBy, r.ContentLanguage,
		).Scan(&r.Id)
		return err
	}

	tag, err := p.Pool.Exec(ctx, `UPDATE reports SET
		status = $2, is_corrected = $3, error_type = $4,
		accepted_at = $5, accepted_by = $6, rejected_at = $7, rejected_by = $8
		WHERE id = $1`,
		r.Id, string(r.Status), r.IsCorrected, r.ErrorType,
		r.AcceptedAt, r.AcceptedBy, r.RejectedAt, r.RejectedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// Transition is the cross-check status write. The read status is part of
// the predicate so that two concurrent transitions cannot both commit.
func (p *PostgresStore) Transition(ctx context.Context, r *models.Report, from models.ReportStatus) error {
	tag, err := p.Pool.Exec(ctx, `UPDATE reports SET
		status = $2,
		accepted_at = $3, accepted_by = $4, rejected_at = $5, rejected_by = $6
		WHERE id = $1 AND status = $7`,
		r.Id, string(r.Status),
		r.AcceptedAt, r.AcceptedBy, r.RejectedAt, r.RejectedBy, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (p *PostgresStore) OrganizationLinks(ctx context.Context, nationalSocietyId int) ([]models.OrganizationLink, error) {
	rows, err := p.Pool.Query(ctx, `SELECT national_society_id, user_id,
		organization_id, organization_name
		FROM organization_links WHERE national_society_id = $1`, nationalSocietyId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []models.OrganizationLink{}
	for rows.Next() {
		var l models.OrganizationLink
		if err := rows.Scan(&l.NationalSocietyId, &l.UserId, &l.OrganizationId, &l.OrganizationName); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (p *PostgresStore) HealthRiskNames(ctx context.Context, language string) (map[int]string, error) {
	rows, err := p.Pool.Query(ctx, `SELECT n.health_risk_id, n.name
		FROM health_risk_names n
		JOIN content_languages c ON c.id = n.content_language_id
		WHERE c.language_code = $1`, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := map[int]string{}
	for rows.Next() {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

func scanReport(rows pgx.Rows) (models.Report, error) {
	var (
		r                      models.Report
		loc                    models.Location
		dc                     models.DataCollector
		status, rtype, hrtype  string
		dctype                 string
		acceptedAt, rejectedAt *time.Time
	)
	err := rows.Scan(
		&r.Id, &r.NationalSocietyId, &r.ProjectId, &r.ReceivedAt,
		&r.ReportedCaseCount,
		&r.ReportedCase.CountMalesBelowFive, &r.ReportedCase.CountMalesAtLeastFive,
		&r.ReportedCase.CountFemalesBelowFive, &r.ReportedCase.CountFemalesAtLeastFive,
		&r.ReportedCase.CountUnspecifiedSexAndAge,
		&status, &rtype, &r.HealthRiskId, &hrtype,
		&r.EpiYear, &r.EpiWeek,
		&loc.RegionId, &loc.RegionName, &loc.DistrictId, &loc.DistrictName,
		&loc.VillageId, &loc.VillageName, &loc.ZoneId, &loc.ZoneName,
		&dc.Id, &dc.Name, &dc.DisplayName, &dctype, &dc.SupervisorId,
		&dc.SupervisorName, &dc.HeadSupervisorId, &dc.IsDeleted,
		&r.Sender, &r.Text, &r.IsTraining, &r.IsCorrected, &r.ErrorType,
		&acceptedAt, &r.AcceptedBy, &rejectedAt, &r.RejectedBy,
		&r.ContentLanguage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Report{}, ErrReportNotFound
		}
		return models.Report{}, err
	}
	r.Status = models.ReportStatus(status)
	r.ReportType = models.ReportType(rtype)
	r.HealthRiskType = models.HealthRiskType(hrtype)
	dc.Type = models.DataCollectorType(dctype)
	r.AcceptedAt = acceptedAt
	r.RejectedAt = rejectedAt
	if loc != (models.Location{}) {
		r.Location = &loc
	}
	if dc.Id != 0 || dc.Type != "" {
		r.DataCollector = &dc
	}
	return r, nil
}
