package usecase

import (
	"sort"

	"jobmarket/internal/domain/job"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortPostings reorders in place per the descriptor. The store already
// returns posted_at DESC, so the default descriptor is a no-op. Salary
// compares the numeric lower bound, postings with no known salary sort as 0.
// Title comparison is locale-aware.
func sortPostings(list []job.Posting, by SortField, order SortOrder) {
	if by == SortByPostedAt && order == SortDesc {
		return
	}
	asc := order == SortAsc

	switch by {
	case SortByTitle:
		coll := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(list, func(i, j int) bool {
			c := coll.CompareString(list[i].Title, list[j].Title)
			if asc {
				return c < 0
			}
			return c > 0
		})
	case SortBySalary:
		sort.SliceStable(list, func(i, j int) bool {
			a, b := salarySortKey(list[i]), salarySortKey(list[j])
			if asc {
				return a < b
			}
			return a > b
		})
	default:
		sort.SliceStable(list, func(i, j int) bool {
			if asc {
				return list[i].PostedAt.Before(list[j].PostedAt)
			}
			return list[j].PostedAt.Before(list[i].PostedAt)
		})
	}
}

func salarySortKey(p job.Posting) float64 {
	if p.SalaryMin == nil {
		return 0
	}
	return *p.SalaryMin
}
