package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openews/report-server/internal/models"
	"github.com/openews/report-server/internal/reportstore"
)

// Accept confirms a report's health risk classification. The status change is
// committed before the external registration attempt; registration failures
// come back as warnings, never as an error.
func (s *Service) Accept(ctx context.Context, reportId int, actor string) ([]string, error) {
	return s.crossCheck(ctx, reportId, actor, models.ReportStatusAccepted)
}

// Dismiss rejects a report's health risk classification.
func (s *Service) Dismiss(ctx context.Context, reportId int, actor string) ([]string, error) {
	return s.crossCheck(ctx, reportId, actor, models.ReportStatusRejected)
}

func (s *Service) crossCheck(ctx context.Context, reportId int, actor string, target models.ReportStatus) ([]string, error) {
	r, err := s.Store.Get(ctx, reportId)
	if err != nil {
		if errors.Is(err, reportstore.ErrReportNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	if r.Status == target {
		return nil, ErrAlreadyCrossChecked
	}
	if r.ReportType == models.ReportTypeDataCollectionPoint {
		return nil, ErrCannotCrossCheckDcpReport
	}
	if r.Location == nil {
		return nil, ErrCannotCrossCheckReportWithoutLocation
	}

	now := time.Now().UTC()
	from := r.Status
	r.Status = target
	switch target {
	case models.ReportStatusAccepted:
		r.AcceptedAt = &now
		r.AcceptedBy = actor
	case models.ReportStatusRejected:
		r.RejectedAt = &now
		r.RejectedBy = actor
	}

	if err := s.Store.Transition(ctx, &r, from); err != nil {
		if errors.Is(err, reportstore.ErrStatusConflict) {
			return nil, ErrAlreadyCrossChecked
		}
		return nil, err
	}
	logger.Info("report cross checked", "reportId", reportId, "status", target, "actor", actor)

	var warnings []string
	if s.Registrar != nil {
		if err := s.Registrar.Register(ctx, reportId, string(target)); err != nil {
			// the status change stays committed
			logger.Warn("case registration failed after cross check", "reportId", reportId, "error", err.Error())
			warnings = append(warnings, fmt.Sprintf("case registration failed for report %d: %s", reportId, err.Error()))
		}
	}
	return warnings, nil
}
