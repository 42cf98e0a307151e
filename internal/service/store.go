package service

import (
	"context"
	"errors"

	"github.com/buddyboard/buddyboard/internal/models"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("user identity required")

	ErrAlreadyApplied = errors.New("already applied to this job post")
	ErrAlreadyDecided = errors.New("application has already been decided")
)

// NewJob is a validated job post ready to persist
type NewJob struct {
	ID          string
	AuthorID    string
	CategoryID  string
	Title       string
	Description string
	Duration    *string
	Budget      *float64
	Location    *string
	ImageURL    *string
}

// JobUpdate holds the editable columns of a job post
type JobUpdate struct {
	Title       string
	Description string
	CategoryID  string
	Duration    *string
	Budget      *float64
	Location    *string
	Status      string
}

// NewComment is a validated comment ready to persist
type NewComment struct {
	ID       string
	JobID    string
	AuthorID string
	Content  string
}

// NewApplication is an application ready to persist
type NewApplication struct {
	ID          string
	JobID       string
	ApplicantID string
}

// JobStore persists job posts, categories and comments.
// GetJob, UpdateJob and DeleteJob return ErrNotFound for unknown IDs.
// Authors and applicants unknown to the store are registered with their ID as
// username.
type JobStore interface {
	Ping(ctx context.Context) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CategoryExists(ctx context.Context, id string) (bool, error)
	ListJobs(ctx context.Context, categoryID string) ([]models.JobSummary, error)
	GetJob(ctx context.Context, id string) (*models.JobDetails, error)
	CreateJob(ctx context.Context, job NewJob) (*models.JobDetails, error)
	UpdateJob(ctx context.Context, id string, upd JobUpdate) (*models.JobDetails, error)
	DeleteJob(ctx context.Context, id string) error
	ListComments(ctx context.Context, jobID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, c NewComment) (*models.Comment, error)

	// CreateApplication returns ErrAlreadyApplied when the applicant already
	// applied to the job.
	CreateApplication(ctx context.Context, a NewApplication) (*models.Application, error)
	ListApplicationsByUser(ctx context.Context, userID string) ([]models.MyApplication, error)
	// DecideApplication moves a PENDING application to status; accepting
	// closes the job post. Returns ErrAlreadyDecided otherwise.
	DecideApplication(ctx context.Context, id, status string) (*models.Application, error)
}
