package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studydesk-backend/internal/models"
)

type stubActivityRepo struct {
	recorded *models.Activity
	days     int
}

func (s *stubActivityRepo) Record(ctx context.Context, a *models.Activity) error {
	s.recorded = a
	return nil
}

func (s *stubActivityRepo) ListRecent(ctx context.Context, userID uuid.UUID, days int) ([]*models.Activity, error) {
	s.days = days
	return []*models.Activity{}, nil
}

func TestActivityHandler_Record(t *testing.T) {
	resourceID := uuid.NewString()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"quiz", `{"activity_type":"quiz","minutes":15}`, http.StatusCreated},
		{"with resource", `{"activity_type":"library","resource_id":"` + resourceID + `"}`, http.StatusCreated},
		{"server-only type", `{"activity_type":"quiz_generated"}`, http.StatusBadRequest},
		{"unknown type", `{"activity_type":"nap"}`, http.StatusBadRequest},
		{"negative minutes", `{"activity_type":"quiz","minutes":-5}`, http.StatusBadRequest},
		{"bad resource id", `{"activity_type":"quiz","resource_id":"x"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubActivityRepo{}
			userID := uuid.New()
			rr := httptest.NewRecorder()
			NewActivityHandler(repo).Record(rr, newRequest(http.MethodPost, "/api/activity", tt.body, "", userID))

			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			if tt.want == http.StatusCreated {
				require.NotNil(t, repo.recorded)
				assert.Equal(t, userID, repo.recorded.UserID)
			} else {
				assert.Nil(t, repo.recorded)
			}
		})
	}
}

func TestActivityHandler_ListDays(t *testing.T) {
	repo := &stubActivityRepo{}
	h := NewActivityHandler(repo)

	rr := httptest.NewRecorder()
	h.List(rr, newRequest(http.MethodGet, "/api/activity", "", "", uuid.New()))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 7, repo.days)

	rr = httptest.NewRecorder()
	h.List(rr, newRequest(http.MethodGet, "/api/activity?days=30", "", "", uuid.New()))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 30, repo.days)

	rr = httptest.NewRecorder()
	h.List(rr, newRequest(http.MethodGet, "/api/activity?days=0", "", "", uuid.New()))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type fixedCounter int

func (f fixedCounter) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return int(f), nil
}

type stubActivityStats struct {
	days []time.Time
	err  error
}

func (s *stubActivityStats) CountByType(ctx context.Context, userID uuid.UUID, activityType string) (int, error) {
	if activityType != models.ActivityQuizGenerated {
		return 0, errors.New("unexpected type")
	}
	return 9, nil
}

func (s *stubActivityStats) WeeklyMinutes(ctx context.Context, userID uuid.UUID) (int, error) {
	return 120, s.err
}

func (s *stubActivityStats) ActiveDays(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	return s.days, nil
}

func (s *stubActivityStats) DailyCounts(ctx context.Context, userID uuid.UUID, now time.Time) ([]int, error) {
	return []int{0, 1, 0, 2, 0, 0, 3}, nil
}

func TestDashboardHandler_Stats(t *testing.T) {
	now := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	today := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

	h := &DashboardHandler{
		decks:         fixedCounter(2),
		resources:     fixedCounter(5),
		courses:       fixedCounter(3),
		pastQuestions: fixedCounter(1),
		activity:      &stubActivityStats{days: []time.Time{today, today.AddDate(0, 0, -1), today.AddDate(0, 0, -3)}},
		now:           func() time.Time { return now },
	}

	rr := httptest.NewRecorder()
	h.Stats(rr, newRequest(http.MethodGet, "/api/dashboard/stats", "", "", uuid.New()))
	require.Equal(t, http.StatusOK, rr.Code)

	var stats models.DashboardStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, models.DashboardStats{
		FlashcardDecks:     2,
		Resources:          5,
		Courses:            3,
		PastQuestions:      1,
		QuizzesGenerated:   9,
		StudyMinutesWeekly: 120,
		CurrentStreak:      2,
	}, stats)
}

func TestDashboardHandler_StatsFailure(t *testing.T) {
	h := &DashboardHandler{
		decks:         fixedCounter(0),
		resources:     fixedCounter(0),
		courses:       fixedCounter(0),
		pastQuestions: fixedCounter(0),
		activity:      &stubActivityStats{err: errors.New("db down")},
		now:           time.Now,
	}

	rr := httptest.NewRecorder()
	h.Stats(rr, newRequest(http.MethodGet, "/api/dashboard/stats", "", "", uuid.New()))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestDashboardHandler_Activity(t *testing.T) {
	h := &DashboardHandler{activity: &stubActivityStats{}, now: time.Now}

	rr := httptest.NewRecorder()
	h.Activity(rr, newRequest(http.MethodGet, "/api/dashboard/activity", "", "", uuid.New()))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"activity":[0,1,0,2,0,0,3]}`, rr.Body.String())
}
