package models

import "strings"

// ValidateRequest for POST /api/v1/validate
type ValidateRequest struct {
	Text    string `json:"text"`
	Ruleset string `json:"ruleset,omitempty"` // "narrow" | "broad"
	Field   string `json:"field,omitempty"`   // "title" | "description" | "comment"
}

// CreateJobRequest for POST /api/v1/jobs
type CreateJobRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CategoryID  string   `json:"categoryId"`
	Duration    *string  `json:"duration,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
	Location    *string  `json:"location,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
}

func (r *CreateJobRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.CategoryID = strings.TrimSpace(r.CategoryID)
}

// Missing returns field → message for required fields that are empty
func (r *CreateJobRequest) Missing() map[string]string {
	missing := map[string]string{}
	if r.Title == "" {
		missing["title"] = "Title is required."
	}
	if strings.TrimSpace(r.Description) == "" {
		missing["description"] = "Description is required."
	}
	if r.CategoryID == "" {
		missing["categoryId"] = "Category is required."
	}
	return missing
}

// UpdateJobRequest for PUT /api/v1/jobs/{id}
type UpdateJobRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CategoryID  string   `json:"categoryId"`
	Duration    *string  `json:"duration,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Status      string   `json:"status,omitempty"` // OPEN | CLOSED
}

func (r *UpdateJobRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.CategoryID = strings.TrimSpace(r.CategoryID)
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	if r.Status == "" {
		r.Status = JobStatusOpen
	}
}

func (r *UpdateJobRequest) Missing() map[string]string {
	missing := map[string]string{}
	if r.Title == "" {
		missing["title"] = "Title is required."
	}
	if strings.TrimSpace(r.Description) == "" {
		missing["description"] = "Description is required."
	}
	if r.CategoryID == "" {
		missing["categoryId"] = "Category is required."
	}
	if r.Status != JobStatusOpen && r.Status != JobStatusClosed {
		missing["status"] = "Status must be OPEN or CLOSED."
	}
	return missing
}

// CreateCommentRequest for POST /api/v1/jobs/{id}/comments
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// ModerationSearchRequest for GET /api/v1/admin/moderation
type ModerationSearchRequest struct {
	Field   string
	Rule    string
	Ruleset string
	Size    int
}

func (r *ModerationSearchRequest) SetDefaults() {
	if r.Size <= 0 {
		r.Size = 50
	}
	if r.Size > 500 {
		r.Size = 500
	}
}
