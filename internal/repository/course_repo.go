package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studydesk-backend/internal/models"
)

type CourseRepo struct {
	pool *pgxpool.Pool
}

func NewCourseRepo(pool *pgxpool.Pool) *CourseRepo {
	return &CourseRepo{pool: pool}
}

func (r *CourseRepo) Create(ctx context.Context, c *models.Course) error {
	c.ID = uuid.New()
	query := `INSERT INTO courses (id, user_id, code, title, target_hours, progress_percent)
		VALUES ($1, $2, $3, $4, $5, 0) RETURNING progress_percent, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		c.ID, c.UserID, c.Code, c.Title, c.TargetHours,
	).Scan(&c.ProgressPercent, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	c := &models.Course{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, code, title, target_hours, progress_percent, created_at, updated_at
		 FROM courses WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.UserID, &c.Code, &c.Title, &c.TargetHours, &c.ProgressPercent, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CourseRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, code, title, target_hours, progress_percent, created_at, updated_at
		 FROM courses WHERE user_id = $1 ORDER BY code ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		c := &models.Course{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Code, &c.Title, &c.TargetHours, &c.ProgressPercent, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *CourseRepo) UpdateProgress(ctx context.Context, id uuid.UUID, percent int) (*models.Course, error) {
	c := &models.Course{}
	err := r.pool.QueryRow(ctx,
		`UPDATE courses SET progress_percent = $1, updated_at = NOW() WHERE id = $2
		 RETURNING id, user_id, code, title, target_hours, progress_percent, created_at, updated_at`,
		percent, id,
	).Scan(&c.ID, &c.UserID, &c.Code, &c.Title, &c.TargetHours, &c.ProgressPercent, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CourseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM courses WHERE id = $1", id)
	return err
}

func (r *CourseRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM courses WHERE user_id = $1", userID).Scan(&n)
	return n, err
}
