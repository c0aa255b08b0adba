package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"studydesk-backend/internal/middleware"
	"studydesk-backend/internal/models"
)

type resourceRepository interface {
	Create(ctx context.Context, res *models.Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	ListByUser(ctx context.Context, userID uuid.UUID, courseCode, search string) ([]*models.Resource, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ResourceHandler struct {
	repo resourceRepository
}

func NewResourceHandler(repo resourceRepository) *ResourceHandler {
	return &ResourceHandler{repo: repo}
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateResourceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.URL = strings.TrimSpace(req.URL)
	if req.Kind == "" {
		req.Kind = "link"
	}

	if req.Title == "" || req.URL == "" {
		writeMessage(w, http.StatusBadRequest, "title and url are required")
		return
	}
	if u, err := url.ParseRequestURI(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		writeMessage(w, http.StatusBadRequest, "url must be an http(s) link")
		return
	}
	if !models.ResourceKinds[req.Kind] {
		writeMessage(w, http.StatusBadRequest, "Invalid kind")
		return
	}

	res := &models.Resource{
		UserID:     middleware.GetUserID(r.Context()),
		Title:      req.Title,
		URL:        req.URL,
		CourseCode: normalizeCourseCode(req.CourseCode),
		Kind:       req.Kind,
	}
	if err := h.repo.Create(r.Context(), res); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to save resource")
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	course := ""
	if c := normalizeCourseCode(strPtr(q.Get("course"))); c != nil {
		course = *c
	}

	items, err := h.repo.ListByUser(r.Context(), middleware.GetUserID(r.Context()), course, strings.TrimSpace(q.Get("q")))
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch resources")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"resources": items})
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "resource")
	if !ok {
		return
	}

	res, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeLookupError(w, err, "Resource not found")
		return
	}
	if res.UserID != middleware.GetUserID(r.Context()) {
		writeMessage(w, http.StatusForbidden, "Access denied")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to delete resource")
		return
	}

	writeMessage(w, http.StatusOK, "Resource deleted")
}
