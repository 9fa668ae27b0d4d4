package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"jobmarket/internal/domain/job"
	"jobmarket/internal/infrastructure/provider"
	"jobmarket/internal/repository"

	"github.com/google/uuid"
)

type fakeProvider struct {
	records []provider.Record
	err     error
	calls   int
	lastReq provider.SearchRequest
}

func (p *fakeProvider) Search(_ context.Context, req provider.SearchRequest) ([]provider.Record, error) {
	p.calls++
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return p.records, nil
}

// memJobRepo mirrors the Postgres repository semantics in memory: unique
// dedup keys, case-insensitive substring filters, posted_at DESC order.
type memJobRepo struct {
	store   map[string]job.Posting
	listErr error
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{store: map[string]job.Posting{}}
}

func (m *memJobRepo) InsertPostings(_ context.Context, postings []job.Posting) (int, error) {
	inserted := 0
	for _, p := range postings {
		key := job.DedupKey(p.Title, p.Company, p.ApplyLink)
		if _, ok := m.store[key]; ok {
			continue
		}
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		m.store[key] = p
		inserted++
	}
	return inserted, nil
}

func (m *memJobRepo) InsertOne(_ context.Context, p job.Posting) (job.Posting, error) {
	key := job.DedupKey(p.Title, p.Company, p.ApplyLink)
	if existing, ok := m.store[key]; ok {
		return existing, nil
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()
	m.store[key] = p
	return p, nil
}

func (m *memJobRepo) ListPostings(_ context.Context, f repository.JobListFilter) ([]job.Posting, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}

	containsFold := func(s, sub string) bool {
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}

	out := make([]job.Posting, 0, len(m.store))
	for _, p := range m.store {
		if f.TitleQuery != "" && !containsFold(p.Title, f.TitleQuery) {
			continue
		}
		if f.RemoteOnly {
			if !p.Remote && !containsFold(p.Location, "remote") {
				continue
			}
		} else if f.Location != "" && !containsFold(p.Location, f.Location) {
			continue
		}
		if f.MinSalary != nil && (p.SalaryMin == nil || *p.SalaryMin < *f.MinSalary) {
			continue
		}
		if f.PostedAfter != nil && p.PostedAt.Before(*f.PostedAfter) {
			continue
		}
		out = append(out, p)
	}

	// default store order: posted_at DESC
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].PostedAt.After(out[i].PostedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *memJobRepo) count() int { return len(m.store) }

type fakeLocker struct {
	held    bool
	setErr  error
	deletes []string
}

func (l *fakeLocker) SetIfNotExists(_ context.Context, _ string, _ string, _ time.Duration) (bool, error) {
	if l.setErr != nil {
		return false, l.setErr
	}
	return !l.held, nil
}

func (l *fakeLocker) Delete(_ context.Context, key string) error {
	l.deletes = append(l.deletes, key)
	return nil
}

type fakeNotifier struct {
	queries  []string
	inserted []int
}

func (n *fakeNotifier) NotifyJobsUpdated(query string, inserted int) {
	n.queries = append(n.queries, query)
	n.inserted = append(n.inserted, inserted)
}

func fp(v float64) *float64 { return &v }

func upstreamRecord(title, company, city string, min, max *float64, ts int64) provider.Record {
	return provider.Record{
		Title:        title,
		Company:      company,
		City:         city,
		MinSalary:    min,
		MaxSalary:    max,
		ApplyLink:    "https://jobs.example/" + strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		PostedAtUnix: ts,
	}
}

func TestFetchJobs_ComposesUpstreamRequest(t *testing.T) {
	p := &fakeProvider{}
	uc := NewJobSearchUsecase(p, newMemJobRepo(), nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: " golang ", Location: " Berlin ", MaxPages: "3"})
	if _, err := uc.FetchJobs(context.Background(), q); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if p.lastReq.Query != "golang in Berlin" {
		t.Fatalf("composed query = %q", p.lastReq.Query)
	}
	if p.lastReq.Page != "1" || p.lastReq.NumPages != "3" {
		t.Fatalf("page/num_pages = %q/%q", p.lastReq.Page, p.lastReq.NumPages)
	}
}

func TestFetchJobs_Idempotence(t *testing.T) {
	p := &fakeProvider{records: []provider.Record{
		upstreamRecord("Senior Developer", "Acme", "Berlin", fp(100000), fp(130000), 1672617600),
		upstreamRecord("Backend Engineer", "Acme", "", nil, nil, 1672617600),
	}}
	repo := newMemJobRepo()
	uc := NewJobSearchUsecase(p, repo, nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "engineer or developer"})
	q.Query = "e" // match both titles on the read side

	res1, err := uc.FetchJobs(context.Background(), q)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	res2, err := uc.FetchJobs(context.Background(), q)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if repo.count() != 2 {
		t.Fatalf("store count = %d, want 2", repo.count())
	}
	if res1.Total != 2 || res2.Total != 2 {
		t.Fatalf("totals = %d, %d, want stable 2", res1.Total, res2.Total)
	}
}

func TestFetchJobs_NormalizationFallbacks(t *testing.T) {
	p := &fakeProvider{records: []provider.Record{
		{Title: "A", Company: "X", City: "Berlin", PostedAtUnix: 1},
		{Title: "B", Company: "X", Country: "Germany", ApplyLink: "https://x/2", PostedAtUnix: 1},
		{Title: "C", Company: "X", ApplyLink: "https://x/3", PostedAtUnix: 1},
	}}
	repo := newMemJobRepo()
	uc := NewJobSearchUsecase(p, repo, nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "x"})
	q.Query = ""
	if _, err := uc.FetchJobs(context.Background(), q); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	locations := map[string]string{}
	remotes := map[string]bool{}
	for _, p := range repo.store {
		locations[p.Title] = p.Location
		remotes[p.Title] = p.Remote
	}
	if locations["A"] != "Berlin" || locations["B"] != "Germany" || locations["C"] != "Remote" {
		t.Fatalf("locations = %v", locations)
	}
	if remotes["A"] || remotes["B"] || !remotes["C"] {
		t.Fatalf("remote flags = %v", remotes)
	}
}

func seedPostings(t *testing.T, repo *memJobRepo, postings ...job.Posting) {
	t.Helper()
	n, err := repo.InsertPostings(context.Background(), postings)
	if err != nil || n != len(postings) {
		t.Fatalf("seed: inserted %d/%d err=%v", n, len(postings), err)
	}
}

func posting(title, location string, min, max *float64, posted time.Time) job.Posting {
	return job.Posting{
		Title:     title,
		Company:   "Seed Co",
		Location:  location,
		SalaryMin: min,
		SalaryMax: max,
		ApplyLink: "https://seed.example/" + strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		Remote:    job.IsRemote(location),
		PostedAt:  posted,
	}
}

func TestFetchJobs_TitleFilter(t *testing.T) {
	repo := newMemJobRepo()
	now := time.Now().UTC()
	seedPostings(t, repo,
		posting("Software Engineer", "Berlin", nil, nil, now),
		posting("Senior Developer", "Berlin", nil, nil, now),
	)
	uc := NewJobSearchUsecase(&fakeProvider{}, repo, nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "Senior"})
	res, err := uc.FetchJobs(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Jobs) != 1 || res.Jobs[0].Title != "Senior Developer" {
		t.Fatalf("jobs = %+v", res.Jobs)
	}
}

func TestFetchJobs_RemoteOnlyFilter(t *testing.T) {
	repo := newMemJobRepo()
	now := time.Now().UTC()
	seedPostings(t, repo,
		posting("Dev One", "Berlin", nil, nil, now),
		posting("Dev Two", "Remote", nil, nil, now),
		posting("Dev Three", "Jakarta", nil, nil, now),
	)
	uc := NewJobSearchUsecase(&fakeProvider{}, repo, nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "Dev", RemoteOnly: "true", Location: "Berlin"})
	res, err := uc.FetchJobs(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Jobs) != 1 || res.Jobs[0].Title != "Dev Two" {
		t.Fatalf("jobs = %+v", res.Jobs)
	}
}

func TestFetchJobs_DatePostedBoundary(t *testing.T) {
	repo := newMemJobRepo()
	seedPostings(t, repo,
		posting("Old Job", "Berlin", nil, nil, time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)),
		posting("New Job", "Berlin", nil, nil, time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC)),
	)
	uc := NewJobSearchUsecase(&fakeProvider{}, repo, nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "Job", DatePosted: "2023-01-02"})
	res, err := uc.FetchJobs(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Jobs) != 1 || res.Jobs[0].Title != "New Job" {
		t.Fatalf("jobs = %+v", res.Jobs)
	}
}

func TestFetchJobs_MinSalaryFilter(t *testing.T) {
	repo := newMemJobRepo()
	now := time.Now().UTC()
	seedPostings(t, repo,
		posting("Low Role", "Berlin", fp(60000), fp(80000), now),
		posting("High Role", "Berlin", fp(150000), fp(200000), now),
		posting("Unknown Role", "Berlin", nil, nil, now),
	)
	uc := NewJobSearchUsecase(&fakeProvider{}, repo, nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "Role", MinSalary: "100000"})
	res, err := uc.FetchJobs(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Jobs) != 1 || res.Jobs[0].Title != "High Role" {
		t.Fatalf("jobs = %+v", res.Jobs)
	}

	// "smart" disables the salary restriction entirely.
	q, _ = ParseSearchParams(RawSearchParams{Query: "Role", MinSalary: "smart"})
	res, err = uc.FetchJobs(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Total != 3 {
		t.Fatalf("smart total = %d, want 3", res.Total)
	}
}

func TestFetchJobs_SalarySortOrder(t *testing.T) {
	repo := newMemJobRepo()
	now := time.Now().UTC()
	seedPostings(t, repo,
		posting("Mid", "Berlin", fp(100000), fp(130000), now.Add(-time.Hour)),
		posting("Low", "Berlin", fp(60000), fp(80000), now),
		posting("High", "Berlin", fp(150000), fp(200000), now.Add(-2*time.Hour)),
	)
	uc := NewJobSearchUsecase(&fakeProvider{}, repo, nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "x", SortBy: "salary", SortOrder: "asc"})
	q.Query = "" // match every stored posting
	res, err := uc.FetchJobs(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := []string{res.Jobs[0].Title, res.Jobs[1].Title, res.Jobs[2].Title}
	if got[0] != "Low" || got[1] != "Mid" || got[2] != "High" {
		t.Fatalf("ascending order = %v", got)
	}

	q.SortOrder = SortDesc
	res, _ = uc.FetchJobs(context.Background(), q)
	got = []string{res.Jobs[0].Title, res.Jobs[1].Title, res.Jobs[2].Title}
	if got[0] != "High" || got[1] != "Mid" || got[2] != "Low" {
		t.Fatalf("descending order = %v", got)
	}
}

func TestFetchJobs_TitleSort(t *testing.T) {
	repo := newMemJobRepo()
	now := time.Now().UTC()
	seedPostings(t, repo,
		posting("banana picker", "Berlin", nil, nil, now),
		posting("Apple Polisher", "Berlin", nil, nil, now),
		posting("cherry Taster", "Berlin", nil, nil, now),
	)
	uc := NewJobSearchUsecase(&fakeProvider{}, repo, nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "e", SortBy: "title", SortOrder: "asc"})
	res, err := uc.FetchJobs(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := []string{res.Jobs[0].Title, res.Jobs[1].Title, res.Jobs[2].Title}
	if got[0] != "Apple Polisher" || got[1] != "banana picker" || got[2] != "cherry Taster" {
		t.Fatalf("title order = %v", got)
	}
}

func TestFetchJobs_Pagination(t *testing.T) {
	repo := newMemJobRepo()
	now := time.Now().UTC()
	seedPostings(t, repo,
		posting("Job A", "Berlin", nil, nil, now),
		posting("Job B", "Berlin", nil, nil, now.Add(-time.Hour)),
		posting("Job C", "Berlin", nil, nil, now.Add(-2*time.Hour)),
	)
	uc := NewJobSearchUsecase(&fakeProvider{}, repo, nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "Job", Page: "2", Limit: "2"})
	res, err := uc.FetchJobs(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Jobs) != 1 {
		t.Fatalf("page 2 size = %d, want 1", len(res.Jobs))
	}
	if res.Total != 3 || res.Pages != 2 {
		t.Fatalf("total/pages = %d/%d", res.Total, res.Pages)
	}
	if res.Jobs[0].Title != "Job C" {
		t.Fatalf("page 2 content = %q", res.Jobs[0].Title)
	}
}

func TestFetchJobs_UpstreamErrorMirrored(t *testing.T) {
	p := &fakeProvider{err: &provider.StatusError{StatusCode: 429, Body: `{"message":"quota"}`}}
	uc := NewJobSearchUsecase(p, newMemJobRepo(), nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "go"})
	_, err := uc.FetchJobs(context.Background(), q)

	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if uerr.StatusCode != 429 || uerr.Details == "" {
		t.Fatalf("upstream error = %+v", uerr)
	}
}

func TestFetchJobs_NetworkError(t *testing.T) {
	p := &fakeProvider{err: provider.ErrNoResponse}
	uc := NewJobSearchUsecase(p, newMemJobRepo(), nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "go"})
	if _, err := uc.FetchJobs(context.Background(), q); !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestFetchJobs_MalformedUpstreamResponse(t *testing.T) {
	p := &fakeProvider{err: provider.ErrMalformedResponse}
	uc := NewJobSearchUsecase(p, newMemJobRepo(), nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "go"})
	if _, err := uc.FetchJobs(context.Background(), q); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestFetchJobs_StoreReadError(t *testing.T) {
	repo := newMemJobRepo()
	repo.listErr = errors.New("boom")
	uc := NewJobSearchUsecase(&fakeProvider{}, repo, nil, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "go"})
	if _, err := uc.FetchJobs(context.Background(), q); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestFetchJobs_LockHeldSkipsUpstream(t *testing.T) {
	repo := newMemJobRepo()
	now := time.Now().UTC()
	seedPostings(t, repo, posting("Stored Job", "Berlin", nil, nil, now))

	p := &fakeProvider{records: []provider.Record{
		upstreamRecord("Fresh Job", "Acme", "Berlin", nil, nil, now.Unix()),
	}}
	uc := NewJobSearchUsecase(p, repo, &fakeLocker{held: true}, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "Job"})
	res, err := uc.FetchJobs(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.calls != 0 {
		t.Fatalf("provider called %d times while lock held", p.calls)
	}
	if res.Total != 1 || res.Jobs[0].Title != "Stored Job" {
		t.Fatalf("store read should still serve, got %+v", res.Jobs)
	}
}

func TestFetchJobs_LockAcquiredAndReleased(t *testing.T) {
	l := &fakeLocker{}
	p := &fakeProvider{}
	uc := NewJobSearchUsecase(p, newMemJobRepo(), l, nil, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "go"})
	if _, err := uc.FetchJobs(context.Background(), q); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.calls != 1 {
		t.Fatalf("provider calls = %d", p.calls)
	}
	if len(l.deletes) != 1 {
		t.Fatalf("lock not released, deletes = %v", l.deletes)
	}
}

func TestFetchJobs_NotifierOnNewPostings(t *testing.T) {
	p := &fakeProvider{records: []provider.Record{
		upstreamRecord("Fresh Job", "Acme", "Berlin", nil, nil, time.Now().Unix()),
	}}
	n := &fakeNotifier{}
	uc := NewJobSearchUsecase(p, newMemJobRepo(), nil, n, nil)

	q, _ := ParseSearchParams(RawSearchParams{Query: "Fresh"})
	if _, err := uc.FetchJobs(context.Background(), q); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if len(n.queries) != 1 || n.inserted[0] != 1 {
		t.Fatalf("expected one notification, got %+v", n)
	}

	// Second identical fetch inserts nothing, so no notification.
	if _, err := uc.FetchJobs(context.Background(), q); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if len(n.queries) != 1 {
		t.Fatalf("unexpected extra notification: %+v", n.queries)
	}
}

func TestCreateJob_Validation(t *testing.T) {
	uc := NewJobSearchUsecase(&fakeProvider{}, newMemJobRepo(), nil, nil, nil)

	_, err := uc.CreateJob(context.Background(), CreateJobInput{Title: "Dev"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Code != CodeInvalidJob {
		t.Fatalf("expected InvalidJob, got %v", err)
	}

	_, err = uc.CreateJob(context.Background(), CreateJobInput{
		Title: "Dev", Company: "Acme", ApplyLink: "https://acme.example/1", PostedAt: "soon",
	})
	if !errors.As(err, &verr) || verr.Code != CodeInvalidJob {
		t.Fatalf("expected InvalidJob for bad date, got %v", err)
	}

	created, err := uc.CreateJob(context.Background(), CreateJobInput{
		Title: "Dev", Company: "Acme", ApplyLink: "https://acme.example/1",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if created.PostedAt.IsZero() {
		t.Fatal("posted_at should default to now when omitted")
	}
}

func TestCreateJob_LegacySalaryString(t *testing.T) {
	repo := newMemJobRepo()
	uc := NewJobSearchUsecase(&fakeProvider{}, repo, nil, nil, nil)

	created, err := uc.CreateJob(context.Background(), CreateJobInput{
		Title:     "Remote Dev",
		Company:   "Acme",
		Location:  "Remote",
		Salary:    "100000-150000",
		ApplyLink: "https://acme.example/1",
		PostedAt:  "2023-01-02",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if created.SalaryMin == nil || *created.SalaryMin != 100000 {
		t.Fatalf("salary min = %v", created.SalaryMin)
	}
	if created.SalaryMax == nil || *created.SalaryMax != 150000 {
		t.Fatalf("salary max = %v", created.SalaryMax)
	}
	if !created.Remote {
		t.Fatal("remote flag should derive from location")
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected assigned id")
	}
}
