package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"studydesk-backend/internal/middleware"
	"studydesk-backend/internal/models"
)

type activityRepository interface {
	Record(ctx context.Context, a *models.Activity) error
	ListRecent(ctx context.Context, userID uuid.UUID, days int) ([]*models.Activity, error)
}

type ActivityHandler struct {
	activityRepo activityRepository
}

func NewActivityHandler(activityRepo activityRepository) *ActivityHandler {
	return &ActivityHandler{activityRepo: activityRepo}
}

func (h *ActivityHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req models.RecordActivityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !models.ClientActivityTypes[req.ActivityType] {
		writeMessage(w, http.StatusBadRequest, "Invalid activity_type")
		return
	}
	if req.Minutes < 0 || req.Minutes > 720 {
		writeMessage(w, http.StatusBadRequest, "minutes must be between 0 and 720")
		return
	}

	a := &models.Activity{
		UserID:       middleware.GetUserID(r.Context()),
		ActivityType: req.ActivityType,
		Minutes:      req.Minutes,
	}
	if req.ResourceID != nil && *req.ResourceID != "" {
		id, err := uuid.Parse(*req.ResourceID)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid resource_id")
			return
		}
		a.ResourceID = &id
	}

	if err := h.activityRepo.Record(r.Context(), a); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to record activity")
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			writeMessage(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = n
	}

	items, err := h.activityRepo.ListRecent(r.Context(), middleware.GetUserID(r.Context()), days)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"activity": items})
}
