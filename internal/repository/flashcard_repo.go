package repository

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studydesk-backend/internal/models"
)

type FlashcardRepo struct {
	pool *pgxpool.Pool
}

func NewFlashcardRepo(pool *pgxpool.Pool) *FlashcardRepo {
	return &FlashcardRepo{pool: pool}
}

// Deck operations

// CreateDeck inserts the deck and its initial cards in one transaction.
func (r *FlashcardRepo) CreateDeck(ctx context.Context, d *models.FlashcardDeck, cards []models.CardInput) error {
	d.ID = uuid.New()
	d.CardCount = len(cards)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO flashcard_decks (id, user_id, title, course_code, card_count)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	if err := tx.QueryRow(ctx, query,
		d.ID, d.UserID, d.Title, d.CourseCode, d.CardCount,
	).Scan(&d.CreatedAt); err != nil {
		return err
	}

	if err := insertCards(ctx, tx, d.ID, cards); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *FlashcardRepo) GetDeckByID(ctx context.Context, id uuid.UUID) (*models.FlashcardDeck, error) {
	d := &models.FlashcardDeck{}
	query := `SELECT id, user_id, title, course_code, card_count, created_at
		FROM flashcard_decks WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.UserID, &d.Title, &d.CourseCode, &d.CardCount, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *FlashcardRepo) ListDecksByUser(ctx context.Context, userID uuid.UUID) ([]*models.FlashcardDeck, error) {
	query := `SELECT id, user_id, title, course_code, card_count, created_at
		FROM flashcard_decks WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	decks := []*models.FlashcardDeck{}
	for rows.Next() {
		d := &models.FlashcardDeck{}
		err := rows.Scan(&d.ID, &d.UserID, &d.Title, &d.CourseCode, &d.CardCount, &d.CreatedAt)
		if err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

func (r *FlashcardRepo) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM flashcard_decks WHERE id = $1", id)
	return err
}

// Card operations

func (r *FlashcardRepo) AddCards(ctx context.Context, deckID uuid.UUID, cards []models.CardInput) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if err := insertCards(ctx, tx, deckID, cards); err != nil {
		return 0, err
	}

	var count int
	err = tx.QueryRow(ctx,
		`UPDATE flashcard_decks
		 SET card_count = (SELECT COUNT(*) FROM flashcard_cards WHERE deck_id = $1)
		 WHERE id = $1 RETURNING card_count`,
		deckID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, tx.Commit(ctx)
}

func insertCards(ctx context.Context, tx pgx.Tx, deckID uuid.UUID, cards []models.CardInput) error {
	nextReview := time.Now().AddDate(0, 0, 1)
	for _, c := range cards {
		_, err := tx.Exec(ctx,
			`INSERT INTO flashcard_cards (id, deck_id, front, back, interval_days, ease_factor, repetitions, next_review_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New(), deckID, c.Front, c.Back, 1, 2.50, 0, nextReview,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *FlashcardRepo) GetCardsByDeck(ctx context.Context, deckID uuid.UUID) ([]models.FlashcardCard, error) {
	query := `SELECT id, deck_id, front, back,
		interval_days, ease_factor, repetitions, next_review_at, last_reviewed_at
		FROM flashcard_cards WHERE deck_id = $1 ORDER BY next_review_at ASC`

	rows, err := r.pool.Query(ctx, query, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []models.FlashcardCard{}
	for rows.Next() {
		c := models.FlashcardCard{}
		err := rows.Scan(
			&c.ID, &c.DeckID, &c.Front, &c.Back,
			&c.IntervalDays, &c.EaseFactor, &c.Repetitions, &c.NextReviewAt, &c.LastReviewedAt,
		)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// GetCardOwner returns the user owning the deck the card belongs to.
func (r *FlashcardRepo) GetCardOwner(ctx context.Context, cardID uuid.UUID) (uuid.UUID, error) {
	var owner uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT d.user_id FROM flashcard_cards c
		 JOIN flashcard_decks d ON d.id = c.deck_id
		 WHERE c.id = $1`,
		cardID,
	).Scan(&owner)
	return owner, err
}

// Schedule is the SM-2 state of a card.
type Schedule struct {
	IntervalDays int
	EaseFactor   float64
	Repetitions  int
}

// NextSchedule applies one SM-2 review. Ratings: 0=Again, 1=Hard, 2=Good, 3=Easy.
func NextSchedule(cur Schedule, rating int) Schedule {
	next := cur

	if rating < 2 {
		next.Repetitions = 0
		next.IntervalDays = 1
	} else {
		next.Repetitions++
		switch next.Repetitions {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(cur.IntervalDays) * cur.EaseFactor))
		}
	}

	// EF' = EF + (0.1 - (3 - rating) * (0.08 + (3 - rating) * 0.02))
	q := float64(3 - rating)
	next.EaseFactor = cur.EaseFactor + (0.1 - q*(0.08+q*0.02))
	if next.EaseFactor < 1.3 {
		next.EaseFactor = 1.3
	}

	return next
}

func (r *FlashcardRepo) RateCard(ctx context.Context, cardID uuid.UUID, rating int) (*models.FlashcardCard, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c, err := rateCardTx(ctx, tx, cardID, rating, time.Now())
	if err != nil {
		return nil, err
	}
	return c, tx.Commit(ctx)
}

// rateCardTx locks the card row so concurrent ratings apply one after the other.
func rateCardTx(ctx context.Context, tx pgx.Tx, cardID uuid.UUID, rating int, now time.Time) (*models.FlashcardCard, error) {
	var cur Schedule
	err := tx.QueryRow(ctx,
		"SELECT interval_days, ease_factor, repetitions FROM flashcard_cards WHERE id = $1 FOR UPDATE",
		cardID,
	).Scan(&cur.IntervalDays, &cur.EaseFactor, &cur.Repetitions)
	if err != nil {
		return nil, err
	}

	next := NextSchedule(cur, rating)
	nextReview := now.AddDate(0, 0, next.IntervalDays)

	c := &models.FlashcardCard{}
	err = tx.QueryRow(ctx,
		`UPDATE flashcard_cards SET interval_days = $1, ease_factor = $2, repetitions = $3,
		 next_review_at = $4, last_reviewed_at = NOW() WHERE id = $5
		 RETURNING id, deck_id, front, back, interval_days, ease_factor, repetitions, next_review_at, last_reviewed_at`,
		next.IntervalDays, next.EaseFactor, next.Repetitions, nextReview, cardID,
	).Scan(
		&c.ID, &c.DeckID, &c.Front, &c.Back,
		&c.IntervalDays, &c.EaseFactor, &c.Repetitions, &c.NextReviewAt, &c.LastReviewedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *FlashcardRepo) GetDeckStats(ctx context.Context, deckID uuid.UUID) (*models.DeckStats, error) {
	stats := &models.DeckStats{}

	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE repetitions >= 3 AND ease_factor >= 2.5),
			COUNT(*) FILTER (WHERE repetitions > 0 AND (repetitions < 3 OR ease_factor < 2.5)),
			COUNT(*) FILTER (WHERE repetitions = 0),
			COUNT(*) FILTER (WHERE next_review_at <= CURRENT_DATE + INTERVAL '1 day')
		FROM flashcard_cards WHERE deck_id = $1`,
		deckID,
	).Scan(&stats.TotalCards, &stats.Mastered, &stats.Learning, &stats.New, &stats.DueToday)
	if err != nil {
		return nil, err
	}

	if stats.TotalCards > 0 {
		stats.MasteryRate = float64(stats.Mastered) / float64(stats.TotalCards) * 100
	}

	return stats, nil
}

func (r *FlashcardRepo) CountDecksByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM flashcard_decks WHERE user_id = $1", userID).Scan(&n)
	return n, err
}
