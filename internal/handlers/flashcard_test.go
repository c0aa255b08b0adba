package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studydesk-backend/internal/middleware"
	"studydesk-backend/internal/models"
)

type stubFlashcardRepo struct {
	deck       *models.FlashcardDeck
	cardOwner  uuid.UUID
	created    []models.CardInput
	added      []models.CardInput
	deleted    bool
	rated      bool
	lastRating int
}

func (s *stubFlashcardRepo) CreateDeck(ctx context.Context, d *models.FlashcardDeck, cards []models.CardInput) error {
	d.ID = uuid.New()
	d.CardCount = len(cards)
	s.created = cards
	return nil
}

func (s *stubFlashcardRepo) GetDeckByID(ctx context.Context, id uuid.UUID) (*models.FlashcardDeck, error) {
	if s.deck == nil || s.deck.ID != id {
		return nil, pgx.ErrNoRows
	}
	return s.deck, nil
}

func (s *stubFlashcardRepo) ListDecksByUser(ctx context.Context, userID uuid.UUID) ([]*models.FlashcardDeck, error) {
	return []*models.FlashcardDeck{}, nil
}

func (s *stubFlashcardRepo) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	s.deleted = true
	return nil
}

func (s *stubFlashcardRepo) AddCards(ctx context.Context, deckID uuid.UUID, cards []models.CardInput) (int, error) {
	s.added = cards
	return len(cards) + 2, nil
}

func (s *stubFlashcardRepo) GetCardsByDeck(ctx context.Context, deckID uuid.UUID) ([]models.FlashcardCard, error) {
	return []models.FlashcardCard{}, nil
}

func (s *stubFlashcardRepo) GetCardOwner(ctx context.Context, cardID uuid.UUID) (uuid.UUID, error) {
	if s.cardOwner == uuid.Nil {
		return uuid.Nil, pgx.ErrNoRows
	}
	return s.cardOwner, nil
}

func (s *stubFlashcardRepo) RateCard(ctx context.Context, cardID uuid.UUID, rating int) (*models.FlashcardCard, error) {
	s.rated = true
	s.lastRating = rating
	return &models.FlashcardCard{ID: cardID, Repetitions: 1, IntervalDays: 1, EaseFactor: 2.5}, nil
}

func (s *stubFlashcardRepo) GetDeckStats(ctx context.Context, deckID uuid.UUID) (*models.DeckStats, error) {
	return &models.DeckStats{TotalCards: 4, Mastered: 1, MasteryRate: 25}, nil
}

// newRequest builds a request carrying the chi {id} param and the caller's user id.
func newRequest(method, target, body, id string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	ctx = context.WithValue(ctx, middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestFlashcardHandler_CreateDeck(t *testing.T) {
	repo := &stubFlashcardRepo{}
	h := NewFlashcardHandler(repo)
	userID := uuid.New()

	body := `{"title":" Cell Biology ","course_code":" bio  101 ","cards":[{"front":"ATP","back":"Energy currency"}]}`
	rr := httptest.NewRecorder()
	h.CreateDeck(rr, newRequest(http.MethodPost, "/api/flashcards/decks", body, "", userID))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	var deck models.FlashcardDeck
	if err := json.Unmarshal(rr.Body.Bytes(), &deck); err != nil {
		t.Fatalf("failed to decode deck: %v", err)
	}
	if deck.Title != "Cell Biology" || deck.UserID != userID || deck.CardCount != 1 {
		t.Fatalf("unexpected deck: %+v", deck)
	}
	if deck.CourseCode == nil || *deck.CourseCode != "BIO 101" {
		t.Fatalf("expected normalized course code, got %v", deck.CourseCode)
	}
}

func TestFlashcardHandler_CreateDeck_Validation(t *testing.T) {
	bodies := map[string]string{
		"missing title": `{"cards":[]}`,
		"blank card":    `{"title":"x","cards":[{"front":"a","back":"  "}]}`,
		"bad json":      `{`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			h := NewFlashcardHandler(&stubFlashcardRepo{})
			rr := httptest.NewRecorder()
			h.CreateDeck(rr, newRequest(http.MethodPost, "/api/flashcards/decks", body, "", uuid.New()))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
			}
		})
	}
}

func TestFlashcardHandler_OwnerChecks(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()
	deck := &models.FlashcardDeck{ID: uuid.New(), UserID: ownerID, Title: "Deck"}

	type call func(h *FlashcardHandler, w http.ResponseWriter, r *http.Request)
	endpoints := map[string]call{
		"get":    (*FlashcardHandler).GetDeck,
		"delete": (*FlashcardHandler).DeleteDeck,
		"stats":  (*FlashcardHandler).GetDeckStats,
		"add":    (*FlashcardHandler).AddCards,
	}

	for name, fn := range endpoints {
		t.Run(name+" forbidden for other user", func(t *testing.T) {
			repo := &stubFlashcardRepo{deck: deck}
			rr := httptest.NewRecorder()
			fn(NewFlashcardHandler(repo), rr, newRequest(http.MethodPost, "/", `{"cards":[{"front":"a","back":"b"}]}`, deck.ID.String(), otherID))

			if rr.Code != http.StatusForbidden {
				t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
			}
			if repo.deleted || repo.added != nil {
				t.Fatalf("repository must not be mutated for non-owner")
			}
		})

		t.Run(name+" ok for owner", func(t *testing.T) {
			repo := &stubFlashcardRepo{deck: deck}
			rr := httptest.NewRecorder()
			fn(NewFlashcardHandler(repo), rr, newRequest(http.MethodPost, "/", `{"cards":[{"front":"a","back":"b"}]}`, deck.ID.String(), ownerID))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestFlashcardHandler_GetDeck_NotFoundAndBadID(t *testing.T) {
	h := NewFlashcardHandler(&stubFlashcardRepo{})

	rr := httptest.NewRecorder()
	h.GetDeck(rr, newRequest(http.MethodGet, "/", "", uuid.NewString(), uuid.New()))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}

	rr = httptest.NewRecorder()
	h.GetDeck(rr, newRequest(http.MethodGet, "/", "", "not-a-uuid", uuid.New()))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestFlashcardHandler_RateCard(t *testing.T) {
	ownerID := uuid.New()
	cardID := uuid.NewString()

	t.Run("rejects out of range rating", func(t *testing.T) {
		repo := &stubFlashcardRepo{cardOwner: ownerID}
		rr := httptest.NewRecorder()
		NewFlashcardHandler(repo).RateCard(rr, newRequest(http.MethodPost, "/", `{"rating":4}`, cardID, ownerID))
		if rr.Code != http.StatusBadRequest || repo.rated {
			t.Fatalf("expected 400 without rating, got %d", rr.Code)
		}
	})

	t.Run("forbidden for other user", func(t *testing.T) {
		repo := &stubFlashcardRepo{cardOwner: ownerID}
		rr := httptest.NewRecorder()
		NewFlashcardHandler(repo).RateCard(rr, newRequest(http.MethodPost, "/", `{"rating":2}`, cardID, uuid.New()))
		if rr.Code != http.StatusForbidden || repo.rated {
			t.Fatalf("expected 403 without rating, got %d", rr.Code)
		}
	})

	t.Run("unknown card", func(t *testing.T) {
		repo := &stubFlashcardRepo{}
		rr := httptest.NewRecorder()
		NewFlashcardHandler(repo).RateCard(rr, newRequest(http.MethodPost, "/", `{"rating":2}`, cardID, ownerID))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("owner rates", func(t *testing.T) {
		repo := &stubFlashcardRepo{cardOwner: ownerID}
		rr := httptest.NewRecorder()
		NewFlashcardHandler(repo).RateCard(rr, newRequest(http.MethodPost, "/", `{"rating":3}`, cardID, ownerID))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if !repo.rated || repo.lastRating != 3 {
			t.Fatalf("expected rating 3 to be applied")
		}
	})
}
