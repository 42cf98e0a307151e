package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/buddyboard/buddyboard/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
  id                TEXT PRIMARY KEY,
  username          TEXT NOT NULL UNIQUE,
  email             TEXT UNIQUE,
  first_name        TEXT NOT NULL DEFAULT '',
  last_name         TEXT NOT NULL DEFAULT '',
  phone             TEXT,
  profile_image_url TEXT
);

CREATE TABLE IF NOT EXISTS job_categories (
  id   TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS job_posts (
  id          TEXT PRIMARY KEY,
  title       TEXT NOT NULL,
  description TEXT NOT NULL,
  image_url   TEXT,
  duration    TEXT,
  budget      DOUBLE PRECISION,
  location    TEXT,
  status      TEXT NOT NULL DEFAULT 'OPEN',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  author_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  category_id TEXT NOT NULL REFERENCES job_categories(id)
);

CREATE TABLE IF NOT EXISTS job_applications (
  id           TEXT PRIMARY KEY,
  job_post_id  TEXT NOT NULL REFERENCES job_posts(id) ON DELETE CASCADE,
  applicant_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  status       TEXT NOT NULL DEFAULT 'PENDING',
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (job_post_id, applicant_id)
);

CREATE TABLE IF NOT EXISTS comments (
  id          TEXT PRIMARY KEY,
  job_post_id TEXT NOT NULL REFERENCES job_posts(id) ON DELETE CASCADE,
  author_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  content     TEXT NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_job_posts_category ON job_posts(category_id);
CREATE INDEX IF NOT EXISTS idx_comments_job ON comments(job_post_id, created_at);
CREATE INDEX IF NOT EXISTS idx_applications_applicant ON job_applications(applicant_id, created_at);
`

// Postgres error codes
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// PostgresStore is the JobStore backed by a pgx connection pool
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and verifies the connection
func NewPostgresStore(ctx context.Context, databaseURL string, maxConns int32) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// CreateSchema ensures tables exist and seeds categories
func (s *PostgresStore) CreateSchema(ctx context.Context, categories []models.Category) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	for _, c := range categories {
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO job_categories (id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`, c.ID, c.Name); err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	return nil
}

// ensureUser registers an unknown user ID with the ID as username. A
// username clash leaves the row absent; the following insert then fails
// with a foreign key violation that pgErr maps to ErrUnauthenticated.
func ensureUser(ctx context.Context, tx pgx.Tx, id string) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO users (id, username) VALUES ($1, $1) ON CONFLICT DO NOTHING`, id); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// pgErr maps constraint violations onto store errors
func pgErr(err error, onUnique error, onForeignKey error) error {
	var pe *pgconn.PgError
	if !errors.As(err, &pe) {
		return err
	}
	switch {
	case pe.Code == pgUniqueViolation && onUnique != nil:
		return onUnique
	case pe.Code == pgForeignKeyViolation && onForeignKey != nil:
		return onForeignKey
	}
	return err
}

func (s *PostgresStore) Close() { s.pool.Close() }

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM job_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *PostgresStore) CategoryExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM job_categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("category exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, categoryID string) ([]models.JobSummary, error) {
	rows, err := s.pool.Query(ctx, `
SELECT j.id, j.title, j.image_url, j.duration, j.budget, j.location, j.status, j.created_at,
       u.id, u.username, c.id, c.name,
       (SELECT count(*) FROM job_applications a WHERE a.job_post_id = j.id),
       (SELECT count(*) FROM comments m WHERE m.job_post_id = j.id)
FROM job_posts j
JOIN users u ON u.id = j.author_id
JOIN job_categories c ON c.id = j.category_id
WHERE ($1 = '' OR j.category_id = $1)
ORDER BY j.created_at DESC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.JobSummary{}
	for rows.Next() {
		var j models.JobSummary
		if err := rows.Scan(
			&j.ID, &j.Title, &j.ImageURL, &j.Duration, &j.Budget, &j.Location, &j.Status, &j.CreatedAt,
			&j.Author.ID, &j.Author.Username, &j.Category.ID, &j.Category.Name,
			&j.Count.Applications, &j.Count.Comments,
		); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (*models.JobDetails, error) {
	var j models.JobDetails
	err := s.pool.QueryRow(ctx, `
SELECT j.id, j.title, j.description, j.image_url, j.duration, j.budget, j.location, j.status, j.created_at,
       u.id, u.username, COALESCE(u.email, ''), u.first_name, u.last_name, u.phone, u.profile_image_url,
       c.id, c.name
FROM job_posts j
JOIN users u ON u.id = j.author_id
JOIN job_categories c ON c.id = j.category_id
WHERE j.id = $1`, id).Scan(
		&j.ID, &j.Title, &j.Description, &j.ImageURL, &j.Duration, &j.Budget, &j.Location, &j.Status, &j.CreatedAt,
		&j.Author.ID, &j.Author.Username, &j.Author.Email, &j.Author.FirstName, &j.Author.LastName,
		&j.Author.Phone, &j.Author.ProfileImageURL,
		&j.Category.ID, &j.Category.Name,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
SELECT a.id, a.job_post_id, a.status, a.created_at, u.id, u.username
FROM job_applications a
JOIN users u ON u.id = a.applicant_id
WHERE a.job_post_id = $1
ORDER BY a.created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	j.Applications = []models.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		j.Applications = append(j.Applications, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, job NewJob) (*models.JobDetails, error) {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := ensureUser(ctx, tx, job.AuthorID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
INSERT INTO job_posts (id, title, description, image_url, duration, budget, location, status, author_id, category_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, 'OPEN', $8, $9)`,
			job.ID, job.Title, job.Description, job.ImageURL, job.Duration, job.Budget, job.Location,
			job.AuthorID, job.CategoryID,
		)
		return err
	})
	if err != nil {
		if mapped := pgErr(err, nil, ErrUnauthenticated); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return s.GetJob(ctx, job.ID)
}

func (s *PostgresStore) UpdateJob(ctx context.Context, id string, upd JobUpdate) (*models.JobDetails, error) {
	tag, err := s.pool.Exec(ctx, `
UPDATE job_posts
SET title = $2, description = $3, category_id = $4, duration = $5, budget = $6, location = $7, status = $8
WHERE id = $1`,
		id, upd.Title, upd.Description, upd.CategoryID, upd.Duration, upd.Budget, upd.Location, upd.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetJob(ctx, id)
}

func (s *PostgresStore) DeleteJob(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM job_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListComments(ctx context.Context, jobID string) ([]models.Comment, error) {
	rows, err := s.pool.Query(ctx, `
SELECT m.id, m.job_post_id, m.content, m.created_at,
       u.id, u.username, COALESCE(u.email, ''), u.first_name, u.last_name, u.phone, u.profile_image_url
FROM comments m
JOIN users u ON u.id = m.author_id
WHERE m.job_post_id = $1
ORDER BY m.created_at ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func (s *PostgresStore) CreateComment(ctx context.Context, c NewComment) (*models.Comment, error) {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := ensureUser(ctx, tx, c.AuthorID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
INSERT INTO comments (id, job_post_id, author_id, content) VALUES ($1, $2, $3, $4)`,
			c.ID, c.JobID, c.AuthorID, c.Content,
		)
		return err
	})
	if err != nil {
		if isForeignKey(err, "comments_job_post_id_fkey") {
			return nil, ErrNotFound
		}
		if mapped := pgErr(err, nil, ErrUnauthenticated); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
SELECT m.id, m.job_post_id, m.content, m.created_at,
       u.id, u.username, COALESCE(u.email, ''), u.first_name, u.last_name, u.phone, u.profile_image_url
FROM comments m
JOIN users u ON u.id = m.author_id
WHERE m.id = $1`, c.ID)
	return scanComment(row)
}

func (s *PostgresStore) CreateApplication(ctx context.Context, a NewApplication) (*models.Application, error) {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := ensureUser(ctx, tx, a.ApplicantID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
INSERT INTO job_applications (id, job_post_id, applicant_id, status) VALUES ($1, $2, $3, 'PENDING')`,
			a.ID, a.JobID, a.ApplicantID,
		)
		return err
	})
	if err != nil {
		if isForeignKey(err, "job_applications_job_post_id_fkey") {
			return nil, ErrNotFound
		}
		if mapped := pgErr(err, ErrAlreadyApplied, ErrUnauthenticated); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return s.getApplication(ctx, s.pool, a.ID, false)
}

func (s *PostgresStore) ListApplicationsByUser(ctx context.Context, userID string) ([]models.MyApplication, error) {
	rows, err := s.pool.Query(ctx, `
SELECT a.id, a.status, a.created_at, j.id, j.title, j.status
FROM job_applications a
JOIN job_posts j ON j.id = a.job_post_id
WHERE a.applicant_id = $1
ORDER BY a.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list my applications: %w", err)
	}
	defer rows.Close()

	apps := []models.MyApplication{}
	for rows.Next() {
		var m models.MyApplication
		if err := rows.Scan(&m.ID, &m.Status, &m.CreatedAt, &m.JobPost.ID, &m.JobPost.Title, &m.JobPost.Status); err != nil {
			return nil, fmt.Errorf("scan my application: %w", err)
		}
		apps = append(apps, m)
	}
	return apps, rows.Err()
}

func (s *PostgresStore) DecideApplication(ctx context.Context, id, status string) (*models.Application, error) {
	var decided *models.Application
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		a, err := s.getApplication(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if a.Status != models.ApplicationPending {
			return ErrAlreadyDecided
		}
		if _, err := tx.Exec(ctx, `UPDATE job_applications SET status = $2 WHERE id = $1`, id, status); err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		if status == models.ApplicationAccepted {
			if _, err := tx.Exec(ctx, `UPDATE job_posts SET status = 'CLOSED' WHERE id = $1`, a.JobID); err != nil {
				return fmt.Errorf("close job: %w", err)
			}
		}
		a.Status = status
		decided = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) getApplication(ctx context.Context, q querier, id string, lock bool) (*models.Application, error) {
	sql := `
SELECT a.id, a.job_post_id, a.status, a.created_at, u.id, u.username
FROM job_applications a
JOIN users u ON u.id = a.applicant_id
WHERE a.id = $1`
	if lock {
		sql += ` FOR UPDATE OF a`
	}
	return scanApplication(q.QueryRow(ctx, sql, id))
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	err := row.Scan(&a.ID, &a.JobID, &a.Status, &a.CreatedAt, &a.Applicant.ID, &a.Applicant.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan application: %w", err)
	}
	return &a, nil
}

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(
		&c.ID, &c.JobID, &c.Content, &c.CreatedAt,
		&c.Author.ID, &c.Author.Username, &c.Author.Email, &c.Author.FirstName, &c.Author.LastName,
		&c.Author.Phone, &c.Author.ProfileImageURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &c, nil
}

func isForeignKey(err error, constraint string) bool {
	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == pgForeignKeyViolation && pe.ConstraintName == constraint
}
