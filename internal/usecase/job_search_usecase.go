package usecase

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"jobmarket/internal/domain/job"
	"jobmarket/internal/infrastructure/provider"
	"jobmarket/internal/repository"
)

const fetchLockTTL = 10 * time.Second

type SearchResult struct {
	Jobs  []job.Posting
	Total int
	Pages int
}

type CreateJobInput struct {
	Title       string
	Company     string
	Location    string
	Salary      string
	SalaryMin   *float64
	SalaryMax   *float64
	ApplyLink   string
	Description string
	PostedAt    string
}

// UpdateNotifier is told when a fetch persisted new postings. Implemented by
// the ws hub adapter; nil disables notifications.
type UpdateNotifier interface {
	NotifyJobsUpdated(query string, inserted int)
}

type JobSearchUsecase interface {
	FetchJobs(ctx context.Context, q SearchQuery) (SearchResult, error)
	CreateJob(ctx context.Context, in CreateJobInput) (job.Posting, error)
}

type JobSearch struct {
	provider provider.Client
	jobs     repository.JobRepository
	locker   FetchLocker
	notifier UpdateNotifier
	logger   *log.Logger
}

func NewJobSearchUsecase(pc provider.Client, jobs repository.JobRepository, locker FetchLocker, notifier UpdateNotifier, logger *log.Logger) *JobSearch {
	return &JobSearch{provider: pc, jobs: jobs, locker: locker, notifier: notifier, logger: logger}
}

// FetchJobs runs the fetch-and-merge pipeline for a validated descriptor:
// upstream search, normalization, idempotent persist, then a filtered read of
// the accumulated store, sorted and paginated per the descriptor. The
// upstream fetch runs on every call; there is no freshness check.
func (u *JobSearch) FetchJobs(ctx context.Context, q SearchQuery) (SearchResult, error) {
	recs, err := u.fetchUpstream(ctx, q)
	if err != nil {
		return SearchResult{}, err
	}

	if len(recs) > 0 {
		postings := normalizeRecords(recs)
		inserted, err := u.jobs.InsertPostings(ctx, postings)
		if err != nil {
			// Duplicate or partially failed inserts never abort the
			// request; the store read below still serves.
			if u.logger != nil {
				u.logger.Printf("[Jobs] Persist batch error query=%q err=%v", q.Query, err)
			}
		} else if inserted > 0 {
			if u.logger != nil {
				u.logger.Printf("[Jobs] Persisted new postings query=%q inserted=%d", q.Query, inserted)
			}
			if u.notifier != nil {
				u.notifier.NotifyJobsUpdated(q.Query, inserted)
			}
		}
	}

	rows, err := u.jobs.ListPostings(ctx, repository.JobListFilter{
		TitleQuery:  q.Query,
		Location:    q.Location,
		RemoteOnly:  q.RemoteOnly,
		MinSalary:   q.MinSalary,
		PostedAfter: q.DatePosted,
	})
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Jobs] Store read error query=%q err=%v", q.Query, err)
		}
		return SearchResult{}, ErrInternal
	}

	sortPostings(rows, q.SortBy, q.SortOrder)

	total := len(rows)
	pages := 1
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}

	return SearchResult{
		Jobs:  paginatePostings(rows, q.Page, q.Limit),
		Total: total,
		Pages: pages,
	}, nil
}

// fetchUpstream issues the provider search guarded by the single-flight
// lock. A held lock skips the fetch entirely; the caller still reads the
// accumulated store.
func (u *JobSearch) fetchUpstream(ctx context.Context, q SearchQuery) ([]provider.Record, error) {
	lockKey := ""
	if u.locker != nil {
		key := FetchLockKey(q)
		ok, err := u.locker.SetIfNotExists(ctx, key, "1", fetchLockTTL)
		if err == nil && !ok {
			if u.logger != nil {
				u.logger.Printf("[Jobs] Fetch in flight elsewhere, skipping upstream query=%q", q.Query)
			}
			return nil, nil
		}
		if err == nil {
			lockKey = key
		}
	}
	if lockKey != "" {
		defer func() {
			_ = u.locker.Delete(ctx, lockKey)
		}()
	}

	composed := strings.TrimSpace(q.Query)
	if loc := strings.TrimSpace(q.Location); loc != "" {
		composed += " in " + loc
	}

	recs, err := u.provider.Search(ctx, provider.SearchRequest{
		Query:    composed,
		Page:     "1",
		NumPages: strconv.Itoa(q.MaxPages),
	})
	if err != nil {
		return nil, u.classifyProviderError(q, err)
	}
	return recs, nil
}

func (u *JobSearch) classifyProviderError(q SearchQuery, err error) error {
	if u.logger != nil {
		u.logger.Printf("[Jobs] Upstream fetch failed query=%q err=%v", q.Query, err)
	}

	var serr *provider.StatusError
	switch {
	case errors.As(err, &serr):
		return &UpstreamError{StatusCode: serr.StatusCode, Details: serr.Body}
	case errors.Is(err, provider.ErrNoResponse):
		return ErrNetwork
	default:
		// Includes provider.ErrMalformedResponse: fatal, not retried.
		return ErrInternal
	}
}

func normalizeRecords(recs []provider.Record) []job.Posting {
	out := make([]job.Posting, 0, len(recs))
	for _, r := range recs {
		location := r.City
		if location == "" {
			location = r.Country
		}
		if location == "" {
			location = "Remote"
		}

		out = append(out, job.Posting{
			Title:       r.Title,
			Company:     r.Company,
			Location:    location,
			SalaryMin:   r.MinSalary,
			SalaryMax:   r.MaxSalary,
			ApplyLink:   r.ApplyLink,
			Description: r.Description,
			Remote:      job.IsRemote(location),
			PostedAt:    time.Unix(r.PostedAtUnix, 0).UTC(),
		})
	}
	return out
}

func paginatePostings(list []job.Posting, page, limit int) []job.Posting {
	if limit <= 0 {
		return list
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(list) {
		return []job.Posting{}
	}
	end := start + limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

// CreateJob persists a single posting supplied directly by a client. Salary
// is accepted either as explicit numeric bounds or the legacy "min-max"
// string.
func (u *JobSearch) CreateJob(ctx context.Context, in CreateJobInput) (job.Posting, error) {
	title := strings.TrimSpace(in.Title)
	company := strings.TrimSpace(in.Company)
	applyLink := strings.TrimSpace(in.ApplyLink)
	if title == "" || company == "" || applyLink == "" {
		return job.Posting{}, newValidationError(CodeInvalidJob,
			"Missing required job fields",
			"title, company and apply_link are required")
	}

	postedAt := time.Now().UTC()
	if raw := strings.TrimSpace(in.PostedAt); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return job.Posting{}, newValidationError(CodeInvalidJob,
				"Invalid posted_at",
				"posted_at must be a valid date (YYYY-MM-DD or RFC3339)")
		}
		postedAt = t
	}

	min, max := in.SalaryMin, in.SalaryMax
	if min == nil && strings.TrimSpace(in.Salary) != "" {
		min, max = job.ParseSalaryRange(in.Salary)
	}

	location := strings.TrimSpace(in.Location)
	p := job.Posting{
		Title:       title,
		Company:     company,
		Location:    location,
		SalaryMin:   min,
		SalaryMax:   max,
		ApplyLink:   applyLink,
		Description: in.Description,
		Remote:      job.IsRemote(location),
		PostedAt:    postedAt,
	}

	created, err := u.jobs.InsertOne(ctx, p)
	if err != nil {
		if u.logger != nil {
			u.logger.Printf("[Jobs] Create error title=%q err=%v", title, err)
		}
		return job.Posting{}, ErrInternal
	}
	return created, nil
}

var _ JobSearchUsecase = (*JobSearch)(nil)
