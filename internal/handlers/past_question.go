package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"studydesk-backend/internal/logger"
	"studydesk-backend/internal/middleware"
	"studydesk-backend/internal/models"
	"studydesk-backend/internal/services"
)

type pastQuestionRepository interface {
	Create(ctx context.Context, pq *models.PastQuestion) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PastQuestion, error)
	List(ctx context.Context, courseCode string) ([]*models.PastQuestion, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type fileStore interface {
	Save(relPath string, data []byte) error
	Remove(relPath string) error
}

type PastQuestionHandler struct {
	repo          pastQuestionRepository
	store         fileStore
	publicBaseURL string
	maxBytes      int64
	pageCount     func(data []byte) (int, error)
}

func NewPastQuestionHandler(repo pastQuestionRepository, store fileStore, publicBaseURL string, maxBytes int64) *PastQuestionHandler {
	return &PastQuestionHandler{
		repo:          repo,
		store:         store,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxBytes:      maxBytes,
		pageCount:     services.PageCount,
	}
}

// Upload stores a PDF and returns a row whose file_url can be fed straight to /api/generate-quiz.
func (h *PastQuestionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxBytes+(1<<20) {
		writeMessage(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<20))

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}

	courseCode := normalizeCourseCode(strPtr(r.FormValue("course_code")))
	title := strings.TrimSpace(r.FormValue("title"))
	if courseCode == nil || title == "" {
		writeMessage(w, http.StatusBadRequest, "course_code and title are required")
		return
	}

	var year *int
	if raw := strings.TrimSpace(r.FormValue("year")); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1950 || y > time.Now().Year()+1 {
			writeMessage(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = &y
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	if int64(len(data)) > h.maxBytes {
		writeMessage(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		writeMessage(w, http.StatusUnsupportedMediaType, "Only PDF files are supported")
		return
	}

	pages, err := h.pageCount(data)
	if err != nil || pages < 1 {
		writeMessage(w, http.StatusBadRequest, "Invalid PDF file")
		return
	}

	userID := middleware.GetUserID(r.Context())
	id := uuid.New()
	relPath := "users/" + userID.String() + "/past-questions/" + id.String() + ".pdf"

	if err := h.store.Save(relPath, data); err != nil {
		logger.Get().Error("Failed to store past question", zap.Error(err), zap.String("path", relPath))
		writeMessage(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	pq := &models.PastQuestion{
		ID:         id,
		UserID:     userID,
		CourseCode: *courseCode,
		Title:      title,
		Year:       year,
		FilePath:   relPath,
		FileURL:    h.publicBaseURL + "/files/" + relPath,
		PageCount:  pages,
		SizeBytes:  int64(len(data)),
	}
	if err := h.repo.Create(r.Context(), pq); err != nil {
		if rmErr := h.store.Remove(relPath); rmErr != nil {
			logger.Get().Warn("Failed to clean up orphaned upload", zap.Error(rmErr), zap.String("path", relPath))
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to save past question")
		return
	}

	writeJSON(w, http.StatusCreated, pq)
}

// List returns shared uploads from every user, optionally filtered by ?course=.
func (h *PastQuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	course := ""
	if c := normalizeCourseCode(strPtr(r.URL.Query().Get("course"))); c != nil {
		course = *c
	}

	items, err := h.repo.List(r.Context(), course)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch past questions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"past_questions": items})
}

func (h *PastQuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "past question")
	if !ok {
		return
	}

	pq, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeLookupError(w, err, "Past question not found")
		return
	}
	if pq.UserID != middleware.GetUserID(r.Context()) {
		writeMessage(w, http.StatusForbidden, "Access denied")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to delete past question")
		return
	}
	if err := h.store.Remove(pq.FilePath); err != nil {
		logger.Get().Warn("Failed to remove past question file", zap.Error(err), zap.String("path", pq.FilePath))
	}

	writeMessage(w, http.StatusOK, "Past question deleted")
}

func strPtr(s string) *string {
	return &s
}
