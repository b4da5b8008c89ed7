package absence

import "sort"

type PersonStats struct {
	PersonID     string `json:"personId"`
	PersonName   string `json:"personName"`
	Count        int    `json:"count"`
	BusinessDays int    `json:"businessDays"`
}

type YearlyStats struct {
	TotalAbsences     int            `json:"totalAbsences"`
	TotalBusinessDays int            `json:"totalBusinessDays"`
	ByType            map[string]int `json:"byType"`
	ByPerson          []PersonStats  `json:"byPerson"`
	ByMonth           map[string]int `json:"byMonth"`
}

// ComputeYearlyStats aggregates a deduplicated record list. Callers must
// deduplicate first: duplicate IDs inflate every counter here. ByMonth is
// keyed by StartDate.MonthKey() ("YYYY-MM"); month names are the UI's job.
// ByPerson is sorted by business days descending, ties keeping first-seen
// order. Empty input yields zeroed stats, never an error.
func ComputeYearlyStats(records []Record) YearlyStats {
	stats := YearlyStats{
		ByType:   make(map[string]int),
		ByPerson: make([]PersonStats, 0),
		ByMonth:  make(map[string]int),
	}

	personIndex := make(map[string]int, len(records))
	for _, record := range records {
		stats.TotalAbsences++
		stats.TotalBusinessDays += record.BusinessDays
		stats.ByType[record.Type]++
		stats.ByMonth[record.StartDate.MonthKey()]++

		pos, ok := personIndex[record.PersonID]
		if !ok {
			pos = len(stats.ByPerson)
			personIndex[record.PersonID] = pos
			stats.ByPerson = append(stats.ByPerson, PersonStats{
				PersonID:   record.PersonID,
				PersonName: record.PersonName,
			})
		}
		stats.ByPerson[pos].Count++
		stats.ByPerson[pos].BusinessDays += record.BusinessDays
	}

	sort.SliceStable(stats.ByPerson, func(i, j int) bool {
		return stats.ByPerson[i].BusinessDays > stats.ByPerson[j].BusinessDays
	})

	return stats
}
