package dashboard

import "sort"

type categoryRow struct {
	categoryId int
	period     string
	count      int
}

// truncateTopN keeps the maxCategories largest categories by total count and
// folds the period-level counts of everything else into a single "(rest)"
// category. Ties on total count break by category id ascending to keep the
// output deterministic. When nothing spills over, no "(rest)" bucket is
// emitted. Every category's period list is gap-filled over allPeriods.
func truncateTopN(rows []categoryRow, maxCategories int, allPeriods []string) []CategorySeries {
	totals := map[int]int{}
	perPeriod := map[int]map[string]int{}
	for _, row := range rows {
		totals[row.categoryId] += row.count
		if perPeriod[row.categoryId] == nil {
			perPeriod[row.categoryId] = map[string]int{}
		}
		perPeriod[row.categoryId][row.period] += row.count
	}

	ids := make([]int, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if totals[ids[i]] != totals[ids[j]] {
			return totals[ids[i]] > totals[ids[j]]
		}
		return ids[i] < ids[j]
	})

	keep := ids
	var rest []int
	if maxCategories > 0 && len(ids) > maxCategories {
		keep = ids[:maxCategories]
		rest = ids[maxCategories:]
	}

	categories := make([]CategorySeries, 0, len(keep)+1)
	for _, id := range keep {
		categories = append(categories, CategorySeries{
			Id:      id,
			Periods: fillPeriods(perPeriod[id], allPeriods),
		})
	}

	if len(rest) > 0 {
		folded := map[string]int{}
		for _, id := range rest {
			for period, count := range perPeriod[id] {
				folded[period] += count
			}
		}
		categories = append(categories, CategorySeries{
			Id:      RestCategoryId,
			Periods: fillPeriods(folded, allPeriods),
		})
	}
	return categories
}

func fillPeriods(counts map[string]int, allPeriods []string) []PeriodCount {
	periods := make([]PeriodCount, 0, len(allPeriods))
	for _, p := range allPeriods {
		periods = append(periods, PeriodCount{Period: p, Count: counts[p]})
	}
	return periods
}
