package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"studydesk-backend/internal/middleware"
	"studydesk-backend/internal/models"
)

type courseRepository interface {
	Create(ctx context.Context, c *models.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Course, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, percent int) (*models.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CourseHandler struct {
	repo courseRepository
}

func NewCourseHandler(repo courseRepository) *CourseHandler {
	return &CourseHandler{repo: repo}
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	code := normalizeCourseCode(&req.Code)
	req.Title = strings.TrimSpace(req.Title)
	if code == nil || req.Title == "" {
		writeMessage(w, http.StatusBadRequest, "code and title are required")
		return
	}
	if req.TargetHours < 0 || req.TargetHours > 1000 {
		writeMessage(w, http.StatusBadRequest, "target_hours must be between 0 and 1000")
		return
	}

	c := &models.Course{
		UserID:      middleware.GetUserID(r.Context()),
		Code:        *code,
		Title:       req.Title,
		TargetHours: req.TargetHours,
	}
	if err := h.repo.Create(r.Context(), c); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeMessage(w, http.StatusConflict, "Course already exists")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to create course")
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.repo.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch courses")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}

func (h *CourseHandler) ownedCourse(w http.ResponseWriter, r *http.Request) (*models.Course, bool) {
	id, ok := urlID(w, r, "course")
	if !ok {
		return nil, false
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeLookupError(w, err, "Course not found")
		return nil, false
	}
	if c.UserID != middleware.GetUserID(r.Context()) {
		writeMessage(w, http.StatusForbidden, "Access denied")
		return nil, false
	}
	return c, true
}

func (h *CourseHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedCourse(w, r)
	if !ok {
		return
	}

	var req models.UpdateProgressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProgressPercent == nil || *req.ProgressPercent < 0 || *req.ProgressPercent > 100 {
		writeMessage(w, http.StatusBadRequest, "progress_percent must be between 0 and 100")
		return
	}

	updated, err := h.repo.UpdateProgress(r.Context(), c.ID, *req.ProgressPercent)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to update progress")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedCourse(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), c.ID); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to delete course")
		return
	}

	writeMessage(w, http.StatusOK, "Course deleted")
}
