package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"studydesk-backend/internal/logger"
	"studydesk-backend/internal/middleware"
	"studydesk-backend/internal/models"
	"studydesk-backend/internal/repository"
)

type userCounter interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type userCounterFunc func(ctx context.Context, userID uuid.UUID) (int, error)

func (f userCounterFunc) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return f(ctx, userID)
}

type activityStats interface {
	CountByType(ctx context.Context, userID uuid.UUID, activityType string) (int, error)
	WeeklyMinutes(ctx context.Context, userID uuid.UUID) (int, error)
	ActiveDays(ctx context.Context, userID uuid.UUID) ([]time.Time, error)
	DailyCounts(ctx context.Context, userID uuid.UUID, now time.Time) ([]int, error)
}

type DashboardHandler struct {
	decks         userCounter
	resources     userCounter
	courses       userCounter
	pastQuestions userCounter
	activity      activityStats
	now           func() time.Time
}

func NewDashboardHandler(
	flashRepo *repository.FlashcardRepo,
	resourceRepo *repository.ResourceRepo,
	courseRepo *repository.CourseRepo,
	pastQuestionRepo *repository.PastQuestionRepo,
	activityRepo *repository.ActivityRepo,
) *DashboardHandler {
	return &DashboardHandler{
		decks:         userCounterFunc(flashRepo.CountDecksByUser),
		resources:     resourceRepo,
		courses:       courseRepo,
		pastQuestions: pastQuestionRepo,
		activity:      activityRepo,
		now:           time.Now,
	}
}

// Stats runs every count concurrently; the first failure cancels the rest.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	var stats models.DashboardStats
	var days []time.Time

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		stats.FlashcardDecks, err = h.decks.CountByUser(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.Resources, err = h.resources.CountByUser(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.Courses, err = h.courses.CountByUser(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.PastQuestions, err = h.pastQuestions.CountByUser(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.QuizzesGenerated, err = h.activity.CountByType(ctx, userID, models.ActivityQuizGenerated)
		return err
	})
	g.Go(func() (err error) {
		stats.StudyMinutesWeekly, err = h.activity.WeeklyMinutes(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		days, err = h.activity.ActiveDays(ctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Get().Error("Failed to load dashboard stats", zap.Error(err), zap.String("user_id", userID.String()))
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	stats.CurrentStreak = repository.CurrentStreak(days, h.now())
	writeJSON(w, http.StatusOK, stats)
}

// Activity returns event counts for the last seven days, oldest first.
func (h *DashboardHandler) Activity(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	counts, err := h.activity.DailyCounts(r.Context(), userID, h.now())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"activity": counts})
}
