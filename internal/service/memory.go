package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/buddyboard/buddyboard/internal/models"
)

// DefaultCategories seeds a MemoryStore
var DefaultCategories = []models.Category{
	{ID: "travel", Name: "Travel"},
	{ID: "sports", Name: "Sports"},
	{ID: "food", Name: "Food & Dining"},
	{ID: "events", Name: "Concerts & Events"},
}

// MemoryStore is an in-process JobStore used when no database is configured.
// Returned values are copies; callers may modify them freely.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]models.Author
	categories map[string]models.Category
	jobs       map[string]*memJob
	comments   map[string][]models.Comment
	appJob     map[string]string // application ID → job ID
	now        func() time.Time
}

type memJob struct {
	details models.JobDetails
}

func NewMemoryStore(categories []models.Category) *MemoryStore {
	s := &MemoryStore{
		users:      make(map[string]models.Author),
		categories: make(map[string]models.Category),
		jobs:       make(map[string]*memJob),
		comments:   make(map[string][]models.Comment),
		appJob:     make(map[string]string),
		now:        time.Now,
	}
	for _, c := range categories {
		s.categories[c.ID] = c
	}
	return s
}

// PutUser registers or replaces a user
func (s *MemoryStore) PutUser(u models.Author) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) ListCategories(context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CategoryExists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.categories[id]
	return ok, nil
}

func (s *MemoryStore) ListJobs(_ context.Context, categoryID string) ([]models.JobSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.JobSummary{}
	for _, j := range s.jobs {
		d := j.details
		if categoryID != "" && d.Category.ID != categoryID {
			continue
		}
		out = append(out, models.JobSummary{
			ID:        d.ID,
			Title:     d.Title,
			ImageURL:  d.ImageURL,
			Duration:  d.Duration,
			Budget:    d.Budget,
			Location:  d.Location,
			Status:    d.Status,
			CreatedAt: d.CreatedAt,
			Author:    models.UserRef{ID: d.Author.ID, Username: d.Author.Username},
			Category:  d.Category,
			Count: models.JobCounts{
				Applications: len(d.Applications),
				Comments:     len(s.comments[d.ID]),
			},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (*models.JobDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(id)
}

func (s *MemoryStore) getLocked(id string) (*models.JobDetails, error) {
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	d := j.details
	d.Applications = append([]models.Application{}, j.details.Applications...)
	return &d, nil
}

func (s *MemoryStore) CreateJob(_ context.Context, job NewJob) (*models.JobDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = &memJob{details: models.JobDetails{
		ID:           job.ID,
		Title:        job.Title,
		Description:  job.Description,
		ImageURL:     job.ImageURL,
		Duration:     job.Duration,
		Budget:       job.Budget,
		Location:     job.Location,
		Status:       models.JobStatusOpen,
		CreatedAt:    s.now().UTC(),
		Author:       s.userLocked(job.AuthorID),
		Category:     s.categories[job.CategoryID],
		Applications: []models.Application{},
	}}
	return s.getLocked(job.ID)
}

func (s *MemoryStore) UpdateJob(_ context.Context, id string, upd JobUpdate) (*models.JobDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	j.details.Title = upd.Title
	j.details.Description = upd.Description
	j.details.Category = s.categories[upd.CategoryID]
	j.details.Duration = upd.Duration
	j.details.Budget = upd.Budget
	j.details.Location = upd.Location
	j.details.Status = upd.Status
	return s.getLocked(id)
}

func (s *MemoryStore) DeleteJob(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return ErrNotFound
	}
	for _, a := range s.jobs[id].details.Applications {
		delete(s.appJob, a.ID)
	}
	delete(s.jobs, id)
	delete(s.comments, id)
	return nil
}

func (s *MemoryStore) ListComments(_ context.Context, jobID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Comment{}, s.comments[jobID]...), nil
}

func (s *MemoryStore) CreateComment(_ context.Context, c NewComment) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[c.JobID]; !ok {
		return nil, ErrNotFound
	}
	comment := models.Comment{
		ID:        c.ID,
		JobID:     c.JobID,
		Content:   c.Content,
		CreatedAt: s.now().UTC(),
		Author:    s.userLocked(c.AuthorID),
	}
	s.comments[c.JobID] = append(s.comments[c.JobID], comment)
	return &comment, nil
}

func (s *MemoryStore) CreateApplication(_ context.Context, a NewApplication) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[a.JobID]
	if !ok {
		return nil, ErrNotFound
	}
	for _, existing := range j.details.Applications {
		if existing.Applicant.ID == a.ApplicantID {
			return nil, ErrAlreadyApplied
		}
	}
	u := s.userLocked(a.ApplicantID)
	app := models.Application{
		ID:        a.ID,
		JobID:     a.JobID,
		Status:    models.ApplicationPending,
		CreatedAt: s.now().UTC(),
		Applicant: models.UserRef{ID: u.ID, Username: u.Username},
	}
	j.details.Applications = append(j.details.Applications, app)
	s.appJob[a.ID] = a.JobID
	return &app, nil
}

func (s *MemoryStore) ListApplicationsByUser(_ context.Context, userID string) ([]models.MyApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.MyApplication{}
	for _, j := range s.jobs {
		for _, a := range j.details.Applications {
			if a.Applicant.ID != userID {
				continue
			}
			out = append(out, models.MyApplication{
				ID:        a.ID,
				Status:    a.Status,
				CreatedAt: a.CreatedAt,
				JobPost:   models.JobRef{ID: j.details.ID, Title: j.details.Title, Status: j.details.Status},
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) DecideApplication(_ context.Context, id, status string) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobID, ok := s.appJob[id]
	if !ok {
		return nil, ErrNotFound
	}
	j := s.jobs[jobID]
	for i := range j.details.Applications {
		a := &j.details.Applications[i]
		if a.ID != id {
			continue
		}
		if a.Status != models.ApplicationPending {
			return nil, ErrAlreadyDecided
		}
		a.Status = status
		if status == models.ApplicationAccepted {
			j.details.Status = models.JobStatusClosed
		}
		out := *a
		return &out, nil
	}
	return nil, ErrNotFound
}

// userLocked returns the registered user, or a placeholder carrying only the ID
func (s *MemoryStore) userLocked(id string) models.Author {
	if u, ok := s.users[id]; ok {
		return u
	}
	return models.Author{ID: id, Username: id}
}
