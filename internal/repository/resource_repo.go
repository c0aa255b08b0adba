package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studydesk-backend/internal/models"
)

type ResourceRepo struct {
	pool *pgxpool.Pool
}

func NewResourceRepo(pool *pgxpool.Pool) *ResourceRepo {
	return &ResourceRepo{pool: pool}
}

func (r *ResourceRepo) Create(ctx context.Context, res *models.Resource) error {
	res.ID = uuid.New()
	query := `INSERT INTO resources (id, user_id, title, url, course_code, kind)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		res.ID, res.UserID, res.Title, res.URL, res.CourseCode, res.Kind,
	).Scan(&res.CreatedAt)
}

func (r *ResourceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	res := &models.Resource{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, url, course_code, kind, created_at FROM resources WHERE id = $1`,
		id,
	).Scan(&res.ID, &res.UserID, &res.Title, &res.URL, &res.CourseCode, &res.Kind, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListByUser filters by course code and a case-insensitive title search; empty filters match all.
func (r *ResourceRepo) ListByUser(ctx context.Context, userID uuid.UUID, courseCode, search string) ([]*models.Resource, error) {
	query := `SELECT id, user_id, title, url, course_code, kind, created_at
		FROM resources
		WHERE user_id = $1
		  AND ($2::text = '' OR UPPER(course_code) = UPPER($2::text))
		  AND ($3::text = '' OR title ILIKE '%' || $3::text || '%')
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, courseCode, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.Resource{}
	for rows.Next() {
		res := &models.Resource{}
		if err := rows.Scan(&res.ID, &res.UserID, &res.Title, &res.URL, &res.CourseCode, &res.Kind, &res.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, res)
	}
	return items, rows.Err()
}

func (r *ResourceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM resources WHERE id = $1", id)
	return err
}

func (r *ResourceRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM resources WHERE user_id = $1", userID).Scan(&n)
	return n, err
}
