package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/openews/report-server/internal/epitime"
	"github.com/openews/report-server/internal/models"
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

type Granularity string

const (
	GranularityDay  Granularity = "Day"
	GranularityWeek Granularity = "Week"
)

const dayPeriodLayout = "02/01/06"

// RestCategoryId labels the synthetic bucket folding everything past top-N.
const RestCategoryId = 0

const RestCategoryLabel = "(rest)"

// DateSeriesEntry is one period of the demographic time series. Counters are
// zero for gap-filled periods.
type DateSeriesEntry struct {
	Period                    string `json:"period"`
	CountMalesBelowFive       int    `json:"countMalesBelowFive"`
	CountMalesAtLeastFive     int    `json:"countMalesAtLeastFive"`
	CountFemalesBelowFive     int    `json:"countFemalesBelowFive"`
	CountFemalesAtLeastFive   int    `json:"countFemalesAtLeastFive"`
	CountUnspecifiedSexAndAge int    `json:"countUnspecifiedSexAndAge"`
}

type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// CategorySeries is one health risk or village line of a breakdown chart.
// Name is nil when no localized health risk name exists for the viewer's
// content language.
type CategorySeries struct {
	Id      int           `json:"id"`
	Name    *string       `json:"name"`
	Periods []PeriodCount `json:"periods"`
}

type CategoryBreakdown struct {
	Categories []CategorySeries `json:"categories"`
	AllPeriods []string         `json:"allPeriods"`
}

// Engine aggregates the same filtered report set the list view uses into
// gap-filled time series and top-N categorical breakdowns.
type Engine struct {
	Store                 reportstore.Store
	MaxGroupedHealthRisks int
	MaxGroupedVillages    int
	WeekStartDay          time.Weekday
}

func (e *Engine) periodOf(r models.Report, f reportstore.Filter, g Granularity) string {
	if g == GranularityWeek {
		// epi year and week are read as stamped, never recomputed here
		return fmt.Sprintf("%d/%d", r.EpiYear, r.EpiWeek)
	}
	return epitime.TruncateToDate(f.AdjustedReceivedAt(r.ReceivedAt)).Format(dayPeriodLayout)
}

// allPeriods enumerates every period in [startDate, endDate]. An inverted
// range yields no periods, which in turn yields an empty series.
func (e *Engine) allPeriods(f reportstore.Filter, g Granularity) []string {
	if f.StartDate.IsZero() || f.EndDate.IsZero() {
		return []string{}
	}
	periods := []string{}
	if g == GranularityWeek {
		for _, w := range epitime.EpiDateRange(f.StartDate, f.EndDate, e.WeekStartDay) {
			periods = append(periods, fmt.Sprintf("%d/%d", w.EpiYear, w.EpiWeek))
		}
		return periods
	}
	for _, d := range epitime.DaysRange(f.StartDate, f.EndDate) {
		periods = append(periods, d.Format(dayPeriodLayout))
	}
	return periods
}

// GroupByDate aggregates the demographic case counters per day or epi week.
// Only human health risks carry demographic counters, so the set is narrowed
// to them. Every period in the requested range appears exactly once, zeroed
// when no report fell into it.
func (e *Engine) GroupByDate(ctx context.Context, f reportstore.Filter, g Granularity) ([]DateSeriesEntry, error) {
	periods := e.allPeriods(f, g)
	if len(periods) == 0 {
		return []DateSeriesEntry{}, nil
	}

	f.HealthRiskTypes = []models.HealthRiskType{models.HealthRiskHuman}
	reports, err := e.Store.Select(ctx, f)
	if err != nil {
		return nil, err
	}

	grouped := map[string]*DateSeriesEntry{}
	for _, r := range reports {
		key := e.periodOf(r, f, g)
		entry, ok := grouped[key]
		if !ok {
			entry = &DateSeriesEntry{Period: key}
			grouped[key] = entry
		}
		entry.CountMalesBelowFive += r.ReportedCase.CountMalesBelowFive
		entry.CountMalesAtLeastFive += r.ReportedCase.CountMalesAtLeastFive
		entry.CountFemalesBelowFive += r.ReportedCase.CountFemalesBelowFive
		entry.CountFemalesAtLeastFive += r.ReportedCase.CountFemalesAtLeastFive
		entry.CountUnspecifiedSexAndAge += r.ReportedCase.CountUnspecifiedSexAndAge
	}

	series := make([]DateSeriesEntry, 0, len(periods))
	for _, p := range periods {
		if entry, ok := grouped[p]; ok {
			series = append(series, *entry)
			continue
		}
		series = append(series, DateSeriesEntry{Period: p})
	}
	return series, nil
}

// GroupByHealthRisk aggregates case counts per health risk and period,
// keeping the top-N risks and folding the remainder into "(rest)". Names are
// resolved against the viewer's content language and stay nil when no
// localized name exists.
func (e *Engine) GroupByHealthRisk(ctx context.Context, f reportstore.Filter, g Granularity, language string) (CategoryBreakdown, error) {
	periods := e.allPeriods(f, g)
	if len(periods) == 0 {
		return CategoryBreakdown{Categories: []CategorySeries{}, AllPeriods: []string{}}, nil
	}

	reports, err := e.Store.Select(ctx, f)
	if err != nil {
		return CategoryBreakdown{}, err
	}

	names, err := e.Store.HealthRiskNames(ctx, language)
	if err != nil {
		return CategoryBreakdown{}, err
	}

	rows := []categoryRow{}
	for _, r := range reports {
		if r.ReportedCaseCount <= 0 {
			continue
		}
		rows = append(rows, categoryRow{
			categoryId: r.HealthRiskId,
			period:     e.periodOf(r, f, g),
			count:      r.ReportedCaseCount,
		})
	}

	categories := truncateTopN(rows, e.MaxGroupedHealthRisks, periods)
	for i := range categories {
		if categories[i].Id == RestCategoryId {
			rest := RestCategoryLabel
			categories[i].Name = &rest
			continue
		}
		if name, ok := names[categories[i].Id]; ok {
			categories[i].Name = &name
		}
	}
	return CategoryBreakdown{Categories: categories, AllPeriods: periods}, nil
}

// GroupByVillage aggregates case counts per village and period. Reports
// without a resolved location are excluded entirely rather than bucketed
// under a synthetic category.
func (e *Engine) GroupByVillage(ctx context.Context, f reportstore.Filter, g Granularity) (CategoryBreakdown, error) {
	periods := e.allPeriods(f, g)
	if len(periods) == 0 {
		return CategoryBreakdown{Categories: []CategorySeries{}, AllPeriods: []string{}}, nil
	}

	reports, err := e.Store.Select(ctx, f)
	if err != nil {
		return CategoryBreakdown{}, err
	}

	villageNames := map[int]string{}
	rows := []categoryRow{}
	for _, r := range reports {
		if r.ReportedCaseCount <= 0 {
			continue
		}
		if r.Location == nil {
			continue
		}
		villageNames[r.Location.VillageId] = r.Location.VillageName
		rows = append(rows, categoryRow{
			categoryId: r.Location.VillageId,
			period:     e.periodOf(r, f, g),
			count:      r.ReportedCaseCount,
		})
	}

	categories := truncateTopN(rows, e.MaxGroupedVillages, periods)
	for i := range categories {
		if categories[i].Id == RestCategoryId {
			rest := RestCategoryLabel
			categories[i].Name = &rest
			continue
		}
		name := villageNames[categories[i].Id]
		categories[i].Name = &name
	}
	return CategoryBreakdown{Categories: categories, AllPeriods: periods}, nil
}
