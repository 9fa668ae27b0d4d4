package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"jobmarket/internal/database"
	"jobmarket/internal/domain/job"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrJobNotFound = errors.New("job not found")

// JobListFilter is the store-side translation of a search descriptor. All
// string matches are case-insensitive substring matches.
type JobListFilter struct {
	TitleQuery  string
	Location    string
	RemoteOnly  bool
	MinSalary   *float64
	PostedAfter *time.Time
}

type JobRepository interface {
	// InsertPostings writes a normalized batch with an idempotent-insert
	// policy: rows colliding on dedup_key are silently skipped, and a
	// failure on one record never aborts the rest. Returns how many rows
	// were actually inserted.
	InsertPostings(ctx context.Context, postings []job.Posting) (int, error)
	// ListPostings returns every match ordered posted_at DESC.
	ListPostings(ctx context.Context, f JobListFilter) ([]job.Posting, error)
	InsertOne(ctx context.Context, p job.Posting) (job.Posting, error)
}

type PostgresJobRepository struct {
	db     database.DB
	logger *log.Logger
}

func NewPostgresJobRepository(db database.DB, logger *log.Logger) *PostgresJobRepository {
	return &PostgresJobRepository{db: db, logger: logger}
}

const insertPostingSQL = `
INSERT INTO jobs (id, title, company, location, salary_min, salary_max, apply_link, description, remote, posted_at, dedup_key)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (dedup_key) DO NOTHING`

func (r *PostgresJobRepository) InsertPostings(ctx context.Context, postings []job.Posting) (int, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("nil db")
	}

	inserted := 0
	for _, p := range postings {
		id := p.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		n, err := r.db.Exec(ctx, insertPostingSQL,
			id, p.Title, p.Company, p.Location,
			p.SalaryMin, p.SalaryMax,
			p.ApplyLink, p.Description, p.Remote,
			p.PostedAt.UTC(),
			job.DedupKey(p.Title, p.Company, p.ApplyLink),
		)
		if err != nil {
			if r.logger != nil {
				r.logger.Printf("[Jobs] Insert skipped title=%q company=%q err=%v", p.Title, p.Company, err)
			}
			continue
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (r *PostgresJobRepository) ListPostings(ctx context.Context, f JobListFilter) ([]job.Posting, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("nil db")
	}

	query, args := BuildListPostingsQuery(f)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Posting, 0)
	for rows.Next() {
		var p job.Posting
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Company, &p.Location,
			&p.SalaryMin, &p.SalaryMax,
			&p.ApplyLink, &p.Description, &p.Remote,
			&p.PostedAt, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresJobRepository) InsertOne(ctx context.Context, p job.Posting) (job.Posting, error) {
	if r == nil || r.db == nil {
		return job.Posting{}, fmt.Errorf("nil db")
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	dedup := job.DedupKey(p.Title, p.Company, p.ApplyLink)

	row := r.db.QueryRow(ctx, insertPostingSQL+`
RETURNING id, created_at`,
		p.ID, p.Title, p.Company, p.Location,
		p.SalaryMin, p.SalaryMax,
		p.ApplyLink, p.Description, p.Remote,
		p.PostedAt.UTC(), dedup,
	)
	err := row.Scan(&p.ID, &p.CreatedAt)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return job.Posting{}, err
	}

	// Conflict on dedup_key: the logical posting already exists.
	return r.findByDedupKey(ctx, dedup)
}

func (r *PostgresJobRepository) findByDedupKey(ctx context.Context, dedup string) (job.Posting, error) {
	row := r.db.QueryRow(ctx, `
SELECT id, title, company, location, salary_min, salary_max, apply_link, description, remote, posted_at, created_at
FROM jobs WHERE dedup_key = $1 LIMIT 1`, dedup)

	var p job.Posting
	err := row.Scan(
		&p.ID, &p.Title, &p.Company, &p.Location,
		&p.SalaryMin, &p.SalaryMax,
		&p.ApplyLink, &p.Description, &p.Remote,
		&p.PostedAt, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return job.Posting{}, ErrJobNotFound
	}
	if err != nil {
		return job.Posting{}, err
	}
	return p, nil
}

const listPostingsSelect = `
SELECT id, title, company, location, salary_min, salary_max, apply_link, description, remote, posted_at, created_at
FROM jobs`

// BuildListPostingsQuery assembles the filtered list statement. Exported so
// the predicate construction stays testable without a database.
func BuildListPostingsQuery(f JobListFilter) (string, []any) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 4)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(f.TitleQuery); q != "" {
		conds = append(conds, fmt.Sprintf("title ILIKE '%%' || %s || '%%'", arg(q)))
	}

	// remote_only overrides plain location matching.
	if f.RemoteOnly {
		conds = append(conds, "(remote = true OR location ILIKE '%remote%')")
	} else if loc := strings.TrimSpace(f.Location); loc != "" {
		conds = append(conds, fmt.Sprintf("location ILIKE '%%' || %s || '%%'", arg(loc)))
	}

	if f.MinSalary != nil {
		conds = append(conds, fmt.Sprintf("salary_min >= %s", arg(*f.MinSalary)))
	}

	if f.PostedAfter != nil {
		conds = append(conds, fmt.Sprintf("posted_at >= %s", arg(f.PostedAfter.UTC())))
	}

	query := listPostingsSelect
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	query += "\nORDER BY posted_at DESC"

	return query, args
}
