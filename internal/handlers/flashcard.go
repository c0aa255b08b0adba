package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"studydesk-backend/internal/middleware"
	"studydesk-backend/internal/models"
)

const maxCardsPerRequest = 500

type flashcardRepository interface {
	CreateDeck(ctx context.Context, d *models.FlashcardDeck, cards []models.CardInput) error
	GetDeckByID(ctx context.Context, id uuid.UUID) (*models.FlashcardDeck, error)
	ListDecksByUser(ctx context.Context, userID uuid.UUID) ([]*models.FlashcardDeck, error)
	DeleteDeck(ctx context.Context, id uuid.UUID) error
	AddCards(ctx context.Context, deckID uuid.UUID, cards []models.CardInput) (int, error)
	GetCardsByDeck(ctx context.Context, deckID uuid.UUID) ([]models.FlashcardCard, error)
	GetCardOwner(ctx context.Context, cardID uuid.UUID) (uuid.UUID, error)
	RateCard(ctx context.Context, cardID uuid.UUID, rating int) (*models.FlashcardCard, error)
	GetDeckStats(ctx context.Context, deckID uuid.UUID) (*models.DeckStats, error)
}

type FlashcardHandler struct {
	flashRepo flashcardRepository
}

func NewFlashcardHandler(flashRepo flashcardRepository) *FlashcardHandler {
	return &FlashcardHandler{flashRepo: flashRepo}
}

func (h *FlashcardHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDeckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required")
		return
	}
	cards, ok := cleanCards(w, req.Cards)
	if !ok {
		return
	}

	deck := &models.FlashcardDeck{
		UserID:     middleware.GetUserID(r.Context()),
		Title:      req.Title,
		CourseCode: normalizeCourseCode(req.CourseCode),
	}
	if err := h.flashRepo.CreateDeck(r.Context(), deck, cards); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to create deck")
		return
	}

	writeJSON(w, http.StatusCreated, deck)
}

func (h *FlashcardHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	decks, err := h.flashRepo.ListDecksByUser(r.Context(), userID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch decks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"decks": decks})
}

// ownedDeck loads the {id} deck and checks it belongs to the caller. On failure it has already responded.
func (h *FlashcardHandler) ownedDeck(w http.ResponseWriter, r *http.Request) (*models.FlashcardDeck, bool) {
	id, ok := urlID(w, r, "deck")
	if !ok {
		return nil, false
	}

	deck, err := h.flashRepo.GetDeckByID(r.Context(), id)
	if err != nil {
		writeLookupError(w, err, "Deck not found")
		return nil, false
	}

	if deck.UserID != middleware.GetUserID(r.Context()) {
		writeMessage(w, http.StatusForbidden, "Access denied")
		return nil, false
	}
	return deck, true
}

func (h *FlashcardHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deck, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}

	cards, err := h.flashRepo.GetCardsByDeck(r.Context(), deck.ID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch cards")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deck":  deck,
		"cards": cards,
	})
}

func (h *FlashcardHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	deck, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}

	if err := h.flashRepo.DeleteDeck(r.Context(), deck.ID); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to delete deck")
		return
	}

	writeMessage(w, http.StatusOK, "Deck deleted")
}

func (h *FlashcardHandler) AddCards(w http.ResponseWriter, r *http.Request) {
	deck, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}

	var req models.AddCardsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	cards, ok := cleanCards(w, req.Cards)
	if !ok {
		return
	}
	if len(cards) == 0 {
		writeMessage(w, http.StatusBadRequest, "At least one card is required")
		return
	}

	count, err := h.flashRepo.AddCards(r.Context(), deck.ID, cards)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to add cards")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deck_id":    deck.ID,
		"added":      len(cards),
		"card_count": count,
	})
}

func (h *FlashcardHandler) RateCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := urlID(w, r, "card")
	if !ok {
		return
	}

	var req models.CardRatingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Rating < 0 || req.Rating > 3 {
		writeMessage(w, http.StatusBadRequest, "Rating must be 0-3")
		return
	}

	owner, err := h.flashRepo.GetCardOwner(r.Context(), cardID)
	if err != nil {
		writeLookupError(w, err, "Card not found")
		return
	}
	if owner != middleware.GetUserID(r.Context()) {
		writeMessage(w, http.StatusForbidden, "Access denied")
		return
	}

	card, err := h.flashRepo.RateCard(r.Context(), cardID, req.Rating)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to rate card")
		return
	}

	writeJSON(w, http.StatusOK, card)
}

func (h *FlashcardHandler) GetDeckStats(w http.ResponseWriter, r *http.Request) {
	deck, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}

	stats, err := h.flashRepo.GetDeckStats(r.Context(), deck.ID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func cleanCards(w http.ResponseWriter, in []models.CardInput) ([]models.CardInput, bool) {
	if len(in) > maxCardsPerRequest {
		writeMessage(w, http.StatusBadRequest, "Too many cards in one request")
		return nil, false
	}
	out := make([]models.CardInput, 0, len(in))
	for _, c := range in {
		c.Front = strings.TrimSpace(c.Front)
		c.Back = strings.TrimSpace(c.Back)
		if c.Front == "" || c.Back == "" {
			writeMessage(w, http.StatusBadRequest, "Every card needs a front and a back")
			return nil, false
		}
		out = append(out, c)
	}
	return out, true
}

func normalizeCourseCode(code *string) *string {
	if code == nil {
		return nil
	}
	c := strings.ToUpper(strings.Join(strings.Fields(*code), " "))
	if c == "" {
		return nil
	}
	return &c
}
