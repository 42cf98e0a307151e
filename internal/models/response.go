package models

import "time"

const (
	JobStatusOpen   = "OPEN"
	JobStatusClosed = "CLOSED"
)

// Application lifecycle: PENDING until an admin accepts or rejects it
const (
	ApplicationPending  = "PENDING"
	ApplicationAccepted = "ACCEPTED"
	ApplicationRejected = "REJECTED"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ValidateResponse is returned by POST /api/v1/validate
type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Ruleset string `json:"ruleset"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message,omitempty"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Author is the user embedded in job details and comments
type Author struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email,omitempty"`
	FirstName       string  `json:"firstName,omitempty"`
	LastName        string  `json:"lastName,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
}

type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type JobCounts struct {
	Applications int `json:"applications"`
	Comments     int `json:"comments"`
}

// JobSummary is a row on the job board
type JobSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	Duration  *string   `json:"duration,omitempty"`
	Budget    *float64  `json:"budget,omitempty"`
	Location  *string   `json:"location,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	Author    UserRef   `json:"author"`
	Category  Category  `json:"category"`
	Count     JobCounts `json:"_count"`
}

type Application struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobPostId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	Applicant UserRef   `json:"applicant"`
}

type JobRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// MyApplication is one row of GET /api/v1/users/my-applications
type MyApplication struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	JobPost   JobRef    `json:"jobPost"`
}

// JobDetails is returned by GET /api/v1/jobs/{id}
type JobDetails struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	ImageURL     *string       `json:"imageUrl,omitempty"`
	Duration     *string       `json:"duration,omitempty"`
	Budget       *float64      `json:"budget,omitempty"`
	Location     *string       `json:"location,omitempty"`
	Status       string        `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	Author       Author        `json:"author"`
	Category     Category      `json:"category"`
	Applications []Application `json:"applications"`
}

type Comment struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobPostId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Author    Author    `json:"author"`
}

// ModerationEvent is one indexed rejection
type ModerationEvent struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
	UserHash  string `json:"user_hash"`
	Resource  string `json:"resource"`
	Field     string `json:"field"`
	Ruleset   string `json:"ruleset"`
	Rule      string `json:"rule"`
	TextHash  string `json:"text_hash"`
}

// ModerationSearchResponse is returned by GET /api/v1/admin/moderation
type ModerationSearchResponse struct {
	Status    string            `json:"status"`
	Took      int               `json:"took"`
	TotalHits int64             `json:"total_hits"`
	Events    []ModerationEvent `json:"events"`
	ByRule    map[string]int64  `json:"by_rule,omitempty"`
}
