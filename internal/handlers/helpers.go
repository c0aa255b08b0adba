package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studydesk-backend/internal/models"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func messageResp(message string) models.MessageResponse {
	return models.MessageResponse{Message: message}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResp(message))
}

// urlID parses the {id} route parameter. On failure it has already written the 400.
func urlID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// writeLookupError answers a failed single-row lookup.
func writeLookupError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeMessage(w, http.StatusNotFound, notFound)
		return
	}
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(dst)
}
