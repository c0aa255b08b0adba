package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studydesk-backend/internal/models"
)

type PastQuestionRepo struct {
	pool *pgxpool.Pool
}

func NewPastQuestionRepo(pool *pgxpool.Pool) *PastQuestionRepo {
	return &PastQuestionRepo{pool: pool}
}

func (r *PastQuestionRepo) Create(ctx context.Context, pq *models.PastQuestion) error {
	if pq.ID == uuid.Nil {
		pq.ID = uuid.New()
	}
	query := `INSERT INTO past_questions (id, user_id, course_code, title, year, file_path, file_url, page_count, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		pq.ID, pq.UserID, pq.CourseCode, pq.Title, pq.Year, pq.FilePath, pq.FileURL, pq.PageCount, pq.SizeBytes,
	).Scan(&pq.CreatedAt)
}

func (r *PastQuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PastQuestion, error) {
	pq := &models.PastQuestion{}
	query := `SELECT id, user_id, course_code, title, year, file_path, file_url, page_count, size_bytes, created_at
		FROM past_questions WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&pq.ID, &pq.UserID, &pq.CourseCode, &pq.Title, &pq.Year, &pq.FilePath, &pq.FileURL,
		&pq.PageCount, &pq.SizeBytes, &pq.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return pq, nil
}

// List returns uploads from every user, optionally narrowed to one course code.
func (r *PastQuestionRepo) List(ctx context.Context, courseCode string) ([]*models.PastQuestion, error) {
	query := `SELECT id, user_id, course_code, title, year, file_path, file_url, page_count, size_bytes, created_at
		FROM past_questions
		WHERE ($1::text = '' OR UPPER(course_code) = UPPER($1::text))
		ORDER BY year DESC NULLS LAST, created_at DESC
		LIMIT 200`

	rows, err := r.pool.Query(ctx, query, courseCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.PastQuestion{}
	for rows.Next() {
		pq := &models.PastQuestion{}
		if err := rows.Scan(
			&pq.ID, &pq.UserID, &pq.CourseCode, &pq.Title, &pq.Year, &pq.FilePath, &pq.FileURL,
			&pq.PageCount, &pq.SizeBytes, &pq.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, pq)
	}
	return items, rows.Err()
}

func (r *PastQuestionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM past_questions WHERE id = $1", id)
	return err
}

func (r *PastQuestionRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM past_questions WHERE user_id = $1", userID).Scan(&n)
	return n, err
}
