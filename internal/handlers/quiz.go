package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"studydesk-backend/internal/logger"
	"studydesk-backend/internal/middleware"
	"studydesk-backend/internal/models"
	"studydesk-backend/internal/services"
)

type quizGenerator interface {
	Generate(ctx context.Context, pdfURL string, cfg models.GenerationConfig) ([]models.Question, error)
}

// ActivityRecorder stores a user activity event.
type ActivityRecorder interface {
	Record(ctx context.Context, a *models.Activity) error
}

type QuizHandler struct {
	generator quizGenerator
	activity  ActivityRecorder
}

// NewQuizHandler wires the pipeline. activity may be nil when no database is configured.
func NewQuizHandler(generator quizGenerator, activity ActivityRecorder) *QuizHandler {
	return &QuizHandler{generator: generator, activity: activity}
}

func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	pdfURL, cfg := parseGenerateRequest(w, r)
	if pdfURL == "" || cfg == nil || cfg.QuestionCount < 1 {
		writeMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	questions, err := h.generator.Generate(r.Context(), pdfURL, *cfg)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDownloadFailed):
			writeMessage(w, http.StatusBadRequest, "Failed to download PDF")
		case errors.Is(err, services.ErrExtractionEmpty):
			writeMessage(w, http.StatusBadRequest, "Failed to extract text from PDF")
		case errors.Is(err, services.ErrSynthesisEmpty):
			writeMessage(w, http.StatusInternalServerError, "Failed to generate questions")
		default:
			logger.Get().Error("Quiz generation failed",
				zap.Error(err),
				zap.String("user_id", userID.String()),
				zap.String("request_id", middleware.GetRequestID(r.Context())),
			)
			writeJSON(w, http.StatusInternalServerError, models.MessageResponse{
				Message: "Internal server error",
				Error:   err.Error(),
			})
		}
		return
	}

	h.recordActivity(r.Context(), userID, len(questions), cfg.DifficultyLevel)

	writeJSON(w, http.StatusOK, models.GenerateQuizResponse{Questions: questions})
}

// recordActivity is best-effort; it never affects the response.
func (h *QuizHandler) recordActivity(ctx context.Context, userID uuid.UUID, count int, difficulty string) {
	if h.activity == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	detail := fmt.Sprintf("%d questions (%s)", count, difficulty)
	err := h.activity.Record(ctx, &models.Activity{
		UserID:       userID,
		ActivityType: models.ActivityQuizGenerated,
		Detail:       &detail,
	})
	if err != nil {
		logger.Get().Warn("Failed to record quiz activity", zap.Error(err), zap.String("user_id", userID.String()))
	}
}

// parseGenerateRequest accepts JSON (default) and urlencoded form bodies. A body that
// cannot be read yields empty values, which the caller reports as missing fields.
func parseGenerateRequest(w http.ResponseWriter, r *http.Request) (string, *models.GenerationConfig) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/x-www-form-urlencoded" {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		if err := r.ParseForm(); err != nil {
			return "", nil
		}
		cfg, err := models.DecodeConfig(json.RawMessage(strings.TrimSpace(r.PostForm.Get("config"))))
		if err != nil {
			cfg = nil
		}
		return strings.TrimSpace(r.PostForm.Get("pdfUrl")), cfg
	}

	var req models.GenerateQuizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return "", nil
	}
	return strings.TrimSpace(req.PDFURL), req.Config
}
