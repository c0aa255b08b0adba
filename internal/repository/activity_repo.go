package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studydesk-backend/internal/models"
)

type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

func (r *ActivityRepo) Record(ctx context.Context, a *models.Activity) error {
	a.ID = uuid.New()
	if a.Minutes < 0 {
		a.Minutes = 0
	}
	if a.Minutes > 720 {
		a.Minutes = 720
	}

	query := `INSERT INTO user_activity (id, user_id, activity_type, resource_id, minutes, detail)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		a.ID, a.UserID, a.ActivityType, a.ResourceID, a.Minutes, a.Detail,
	).Scan(&a.CreatedAt)
}

func (r *ActivityRepo) ListRecent(ctx context.Context, userID uuid.UUID, days int) ([]*models.Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, activity_type, resource_id, minutes, detail, created_at
		FROM user_activity
		WHERE user_id = $1
		  AND created_at >= NOW() - make_interval(days => $2)
		ORDER BY created_at DESC
		LIMIT 500
	`, userID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.Activity{}
	for rows.Next() {
		a := &models.Activity{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.ActivityType, &a.ResourceID, &a.Minutes, &a.Detail, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *ActivityRepo) CountByType(ctx context.Context, userID uuid.UUID, activityType string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM user_activity WHERE user_id = $1 AND activity_type = $2",
		userID, activityType,
	).Scan(&n)
	return n, err
}

func (r *ActivityRepo) WeeklyMinutes(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(minutes), 0)::INT
		FROM user_activity
		WHERE user_id = $1
		  AND created_at >= date_trunc('week', NOW())
	`, userID).Scan(&n)
	return n, err
}

// ActiveDays returns the distinct UTC dates with any activity in the last year, newest first.
func (r *ActivityRepo) ActiveDays(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT (created_at AT TIME ZONE 'UTC')::date AS day
		FROM user_activity
		WHERE user_id = $1
		  AND created_at >= NOW() - INTERVAL '366 days'
		ORDER BY day DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// CurrentStreak counts consecutive days with activity ending today or yesterday.
// days may be in any order and contain duplicates.
func CurrentStreak(days []time.Time, now time.Time) int {
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		seen[d.UTC().Format("2006-01-02")] = true
	}

	cursor := now.UTC()
	if !seen[cursor.Format("2006-01-02")] {
		cursor = cursor.AddDate(0, 0, -1)
		if !seen[cursor.Format("2006-01-02")] {
			return 0
		}
	}

	streak := 0
	for seen[cursor.Format("2006-01-02")] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// DailyCounts returns event counts for the last 7 UTC days, oldest first, today last.
func (r *ActivityRepo) DailyCounts(ctx context.Context, userID uuid.UUID, now time.Time) ([]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT (created_at AT TIME ZONE 'UTC')::date AS day, COUNT(*)
		FROM user_activity
		WHERE user_id = $1
		  AND created_at >= $2
		GROUP BY day
	`, userID, startOfDayUTC(now).AddDate(0, 0, -6))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDay := map[string]int{}
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		byDay[day.Format("2006-01-02")] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return spreadDays(byDay, now), nil
}

func spreadDays(byDay map[string]int, now time.Time) []int {
	out := make([]int, 7)
	start := startOfDayUTC(now).AddDate(0, 0, -6)
	for i := range out {
		out[i] = byDay[start.AddDate(0, 0, i).Format("2006-01-02")]
	}
	return out
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
