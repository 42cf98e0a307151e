package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/buddyboard/buddyboard/internal/events"
	"github.com/buddyboard/buddyboard/internal/models"
	"github.com/buddyboard/buddyboard/internal/security"
	"github.com/google/uuid"
)

const (
	ResourceJob     = "job"
	ResourceComment = "comment"
)

// ContentError is returned when one or more fields contain contact information.
// It is a user-correctable outcome, not a system fault.
type ContentError struct {
	Rejections map[string]security.FieldRejection
}

func (e *ContentError) Error() string {
	names := make([]string, 0, len(e.Rejections))
	for name := range e.Rejections {
		names = append(names, name)
	}
	sort.Strings(names)
	return "content policy violation: " + strings.Join(names, ", ")
}

// Fields returns field → rejection message
func (e *ContentError) Fields() map[string]string {
	out := make(map[string]string, len(e.Rejections))
	for name, r := range e.Rejections {
		out[name] = r.Message
	}
	return out
}

// ValidationError reports missing or malformed input
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// Actor identifies who is making a request
type Actor struct {
	UserID    string
	RequestID string
}

// JobService gates job and comment writes through the contact policy before
// they reach the store.
type JobService struct {
	store   JobStore
	emitter events.Emitter
	masker  *security.DataMasker
	now     func() time.Time
	newID   func() string
}

func NewJobService(store JobStore, emitter events.Emitter, masker *security.DataMasker) *JobService {
	if emitter == nil {
		emitter = events.NewMultiEmitter()
	}
	return &JobService{
		store:   store,
		emitter: emitter,
		masker:  masker,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *JobService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *JobService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *JobService) ListJobs(ctx context.Context, categoryID string) ([]models.JobSummary, error) {
	return s.store.ListJobs(ctx, strings.TrimSpace(categoryID))
}

func (s *JobService) GetJob(ctx context.Context, id string) (*models.JobDetails, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	s.maskAuthor(&job.Author)
	return job, nil
}

// CreateJob validates and stores a new job post authored by actor
func (s *JobService) CreateJob(ctx context.Context, actor Actor, req models.CreateJobRequest) (*models.JobDetails, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	req.Normalize()
	if missing := req.Missing(); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkContent(ctx, actor, ResourceJob, jobFields(req.Title, req.Description)); err != nil {
		return nil, err
	}

	job, err := s.store.CreateJob(ctx, NewJob{
		ID:          s.newID(),
		AuthorID:    actor.UserID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Budget:      req.Budget,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.maskAuthor(&job.Author)
	return job, nil
}

// UpdateJob applies an edit from the job's author
func (s *JobService) UpdateJob(ctx context.Context, actor Actor, id string, req models.UpdateJobRequest) (*models.JobDetails, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if err := s.checkOwner(ctx, actor, id); err != nil {
		return nil, err
	}
	req.Normalize()
	if missing := req.Missing(); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkContent(ctx, actor, ResourceJob, jobFields(req.Title, req.Description)); err != nil {
		return nil, err
	}

	job, err := s.store.UpdateJob(ctx, id, JobUpdate{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Duration:    req.Duration,
		Budget:      req.Budget,
		Location:    req.Location,
		Status:      req.Status,
	})
	if err != nil {
		return nil, err
	}
	s.maskAuthor(&job.Author)
	return job, nil
}

func (s *JobService) DeleteJob(ctx context.Context, actor Actor, id string) error {
	if actor.UserID == "" {
		return ErrUnauthenticated
	}
	if err := s.checkOwner(ctx, actor, id); err != nil {
		return err
	}
	return s.store.DeleteJob(ctx, id)
}

func (s *JobService) ListComments(ctx context.Context, jobID string) ([]models.Comment, error) {
	if _, err := s.store.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, jobID)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		s.maskAuthor(&comments[i].Author)
	}
	return comments, nil
}

// CreateComment validates a comment with the broad ruleset and stores it
func (s *JobService) CreateComment(ctx context.Context, actor Actor, jobID string, req models.CreateCommentRequest) (*models.Comment, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, &ValidationError{Fields: map[string]string{"content": "Comment cannot be empty."}}
	}
	if _, err := s.store.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	fields := []security.Field{{Name: "content", Value: req.Content, Ruleset: security.RulesetFor(security.FieldComment)}}
	if err := s.checkContent(ctx, actor, ResourceComment, fields); err != nil {
		return nil, err
	}

	c, err := s.store.CreateComment(ctx, NewComment{
		ID:       s.newID(),
		JobID:    jobID,
		AuthorID: actor.UserID,
		Content:  req.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.maskAuthor(&c.Author)
	return c, nil
}

// ApplyToJob records actor's application to an open job they did not post
func (s *JobService) ApplyToJob(ctx context.Context, actor Actor, jobID string) (*models.Application, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Author.ID == actor.UserID {
		return nil, &ValidationError{Fields: map[string]string{"jobPostId": "You cannot apply to your own job post."}}
	}
	if job.Status != models.JobStatusOpen {
		return nil, &ValidationError{Fields: map[string]string{"jobPostId": "This job post is closed."}}
	}
	return s.store.CreateApplication(ctx, NewApplication{
		ID:          s.newID(),
		JobID:       jobID,
		ApplicantID: actor.UserID,
	})
}

func (s *JobService) ListMyApplications(ctx context.Context, actor Actor) ([]models.MyApplication, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	return s.store.ListApplicationsByUser(ctx, actor.UserID)
}

// DecideApplication accepts or rejects a pending application. Accepting
// closes the job post.
func (s *JobService) DecideApplication(ctx context.Context, id string, accept bool) (*models.Application, error) {
	status := models.ApplicationRejected
	if accept {
		status = models.ApplicationAccepted
	}
	return s.store.DecideApplication(ctx, id, status)
}

func jobFields(title, description string) []security.Field {
	return []security.Field{
		{Name: "title", Value: title, Ruleset: security.RulesetFor(security.FieldTitle)},
		{Name: "description", Value: description, Ruleset: security.RulesetFor(security.FieldDescription)},
	}
}

func (s *JobService) checkOwner(ctx context.Context, actor Actor, id string) error {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if job.Author.ID != actor.UserID {
		return ErrForbidden
	}
	return nil
}

func (s *JobService) checkCategory(ctx context.Context, id string) error {
	ok, err := s.store.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &ValidationError{Fields: map[string]string{"categoryId": "Unknown category."}}
	}
	return nil
}

// checkContent classifies fields and emits one event per rejected field
func (s *JobService) checkContent(ctx context.Context, actor Actor, resource string, fields []security.Field) error {
	rejections, err := security.ValidateFields(ctx, fields)
	if err != nil {
		return err
	}
	if len(rejections) == 0 {
		return nil
	}

	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.Name] = f.Value
	}
	ts := s.now().UTC().Format(time.RFC3339)
	for name, r := range rejections {
		s.emitter.Emit(events.RejectionEvent{
			Timestamp: ts,
			RequestID: actor.RequestID,
			UserHash:  security.HashID(actor.UserID),
			Resource:  resource,
			Field:     name,
			Ruleset:   r.Ruleset,
			Rule:      r.Rule,
			TextHash:  security.HashID(values[name]),
		})
	}
	return &ContentError{Rejections: rejections}
}

func (s *JobService) maskAuthor(a *models.Author) {
	if !s.masker.Enabled() {
		return
	}
	phone := ""
	if a.Phone != nil {
		phone = *a.Phone
	}
	email, phone := s.masker.MaskContact(a.Email, phone)
	a.Email = email
	if a.Phone != nil {
		a.Phone = &phone
	}
}
