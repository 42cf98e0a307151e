package service_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/buddyboard/buddyboard/internal/models"
	"github.com/buddyboard/buddyboard/internal/security"
	"github.com/buddyboard/buddyboard/internal/service"
	"github.com/google/uuid"
)

func newPostgresStore(t *testing.T) *service.PostgresStore {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := service.NewPostgresStore(ctx, url, 4)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.CreateSchema(ctx, service.DefaultCategories); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return store
}

func TestPostgresJobLifecycle(t *testing.T) {
	store := newPostgresStore(t)
	svc := service.NewJobService(store, nil, security.NewDataMasker(false))
	ctx := context.Background()

	// fresh IDs keep reruns against the same database independent
	author := service.Actor{UserID: "author-" + uuid.NewString()}
	applicant := service.Actor{UserID: "applicant-" + uuid.NewString()}

	job, err := svc.CreateJob(ctx, author, validJob())
	if err != nil {
		t.Fatalf("create job for unknown author: %v", err)
	}
	if job.Author.ID != author.UserID || job.Author.Username != author.UserID {
		t.Errorf("unexpected author %+v", job.Author)
	}
	if job.Author.Email != "" {
		t.Errorf("registered author should have no email, got %q", job.Author.Email)
	}

	if _, err := svc.CreateComment(ctx, applicant, job.ID, models.CreateCommentRequest{Content: "Count me in!"}); err != nil {
		t.Fatalf("comment: %v", err)
	}
	app, err := svc.ApplyToJob(ctx, applicant, job.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := svc.ApplyToJob(ctx, applicant, job.ID); !errors.Is(err, service.ErrAlreadyApplied) {
		t.Errorf("duplicate application should be ErrAlreadyApplied, got %v", err)
	}

	var found bool
	jobs, err := svc.ListJobs(ctx, "travel")
	if err != nil {
		t.Fatal(err)
	}
	for _, j := range jobs {
		if j.ID == job.ID {
			found = true
			if j.Count.Applications != 1 || j.Count.Comments != 1 {
				t.Errorf("counts = %+v, want 1 application and 1 comment", j.Count)
			}
		}
	}
	if !found {
		t.Errorf("job %s missing from list", job.ID)
	}

	mine, err := svc.ListMyApplications(ctx, applicant)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != app.ID {
		t.Errorf("unexpected applications %+v", mine)
	}

	upd := models.UpdateJobRequest{Title: "Trekking at Doi Suthep", Description: job.Description, CategoryID: "sports"}
	updated, err := svc.UpdateJob(ctx, author, job.ID, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != upd.Title || updated.Category.ID != "sports" || len(updated.Applications) != 1 {
		t.Errorf("unexpected update %+v", updated)
	}

	decided, err := svc.DecideApplication(ctx, app.ID, true)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if decided.Status != models.ApplicationAccepted {
		t.Errorf("status = %s, want ACCEPTED", decided.Status)
	}
	if _, err := svc.DecideApplication(ctx, app.ID, false); !errors.Is(err, service.ErrAlreadyDecided) {
		t.Errorf("second decision should be ErrAlreadyDecided, got %v", err)
	}
	if got, _ := svc.GetJob(ctx, job.ID); got.Status != models.JobStatusClosed {
		t.Errorf("accepted job should be closed, got %s", got.Status)
	}

	if err := svc.DeleteJob(ctx, author, job.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetJob(ctx, job.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("deleted job should be ErrNotFound, got %v", err)
	}
	if err := store.DeleteJob(ctx, job.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestPostgresCreateApplicationMissingJob(t *testing.T) {
	store := newPostgresStore(t)
	_, err := store.CreateApplication(context.Background(), service.NewApplication{
		ID:          uuid.NewString(),
		JobID:       "missing-" + uuid.NewString(),
		ApplicantID: "applicant-" + uuid.NewString(),
	})
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
