package usecase

import (
	"strconv"
	"strings"
	"time"
)

type SortField string

const (
	SortByPostedAt SortField = "posted_at"
	SortByTitle    SortField = "title"
	SortBySalary   SortField = "salary"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SearchQuery is the validated, request-scoped search descriptor. It is
// constructed fresh per request by ParseSearchParams and never persisted.
type SearchQuery struct {
	Query       string
	Location    string
	RemoteOnly  bool
	MinSalary   *float64
	SmartSalary bool
	DatePosted  *time.Time
	MaxPages    int
	Page        int
	Limit       int
	SortBy      SortField
	SortOrder   SortOrder
}

// RawSearchParams are the untyped query-string values as they arrive on the
// wire. Empty string means the parameter was not supplied.
type RawSearchParams struct {
	Query      string
	Location   string
	RemoteOnly string
	MinSalary  string
	DatePosted string
	MaxPages   string
	Page       string
	Limit      string
	SortBy     string
	SortOrder  string
}

const DefaultMaxPages = 1

// ParseSearchParams turns raw query parameters into a SearchQuery or a
// *ValidationError. Rules run in order and short-circuit on the first
// failure. Unrecognized sort_by/sort_order values fall back silently to the
// defaults (posted_at desc); the original client behaved that way and the
// stricter server-side rejection would break it.
func ParseSearchParams(raw RawSearchParams) (SearchQuery, *ValidationError) {
	q := SearchQuery{
		MaxPages:  DefaultMaxPages,
		SortBy:    SortByPostedAt,
		SortOrder: SortDesc,
	}

	q.Query = strings.TrimSpace(raw.Query)
	if q.Query == "" {
		return SearchQuery{}, newValidationError(CodeEmptyQuery,
			"Search keyword cannot be empty",
			"Please enter a valid search keyword")
	}

	if raw.MaxPages != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw.MaxPages))
		if err != nil || n < 1 {
			return SearchQuery{}, newValidationError(CodeInvalidPage,
				"Invalid page parameter",
				"Page number must be greater than 0")
		}
		q.MaxPages = n
	}

	if s := strings.TrimSpace(raw.MinSalary); s != "" {
		if s == "smart" {
			q.SmartSalary = true
		} else {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil || v < 0 {
				return SearchQuery{}, newValidationError(CodeInvalidSalary,
					"Invalid minimum salary parameter",
					"Minimum salary must be a number greater than or equal to 0")
			}
			q.MinSalary = &v
		}
	}

	if s := strings.TrimSpace(raw.DatePosted); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return SearchQuery{}, newValidationError(CodeInvalidDate,
				"Invalid date parameter",
				"Date must be a valid calendar date (YYYY-MM-DD)")
		}
		q.DatePosted = &t
	}

	// Literal "true" only; "True", "1" and friends are false. The client
	// and its tests depend on this exact truthiness rule.
	q.RemoteOnly = raw.RemoteOnly == "true"

	q.Location = strings.TrimSpace(raw.Location)

	if s := strings.TrimSpace(raw.Page); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return SearchQuery{}, newValidationError(CodeInvalidPage,
				"Invalid page parameter",
				"Page number must be greater than 0")
		}
		q.Page = n
	}
	if s := strings.TrimSpace(raw.Limit); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return SearchQuery{}, newValidationError(CodeInvalidPage,
				"Invalid page parameter",
				"Limit must be greater than 0")
		}
		q.Limit = n
	}

	switch SortField(strings.TrimSpace(raw.SortBy)) {
	case SortByTitle:
		q.SortBy = SortByTitle
	case SortBySalary:
		q.SortBy = SortBySalary
	case SortByPostedAt:
		q.SortBy = SortByPostedAt
	}
	switch SortOrder(strings.TrimSpace(raw.SortOrder)) {
	case SortAsc:
		q.SortOrder = SortAsc
	case SortDesc:
		q.SortOrder = SortDesc
	}

	return q, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
