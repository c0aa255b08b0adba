package models

import (
	"time"

	"github.com/google/uuid"
)

type PastQuestion struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	CourseCode string    `json:"course_code"`
	Title      string    `json:"title"`
	Year       *int      `json:"year"`
	FilePath   string    `json:"-"`
	FileURL    string    `json:"file_url"`
	PageCount  int       `json:"page_count"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

// Resource kinds accepted by the study library.
var ResourceKinds = map[string]bool{
	"link":     true,
	"video":    true,
	"document": true,
	"notes":    true,
}

type Resource struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	CourseCode *string   `json:"course_code"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateResourceRequest struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	CourseCode *string `json:"course_code"`
	Kind       string  `json:"kind"`
}

type Course struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Code            string    `json:"code"`
	Title           string    `json:"title"`
	TargetHours     int       `json:"target_hours"`
	ProgressPercent int       `json:"progress_percent"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateCourseRequest struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	TargetHours int    `json:"target_hours"`
}

type UpdateProgressRequest struct {
	ProgressPercent *int `json:"progress_percent"`
}
