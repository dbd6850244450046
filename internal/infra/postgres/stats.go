package postgres

import (
	"context"
	"fmt"

	"campus-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// StatsRepository aggregates the admin dashboard with raw SQL over a pgx
// pool; the counts touch four tables and don't need the ORM.
type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	stats := domain.DashboardStats{RecentScores: []domain.ScoreView{}}

	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM users WHERE role = 'user'),
			(SELECT count(*) FROM subjects WHERE is_active),
			(SELECT count(*) FROM quizzes WHERE is_active),
			(SELECT count(*) FROM scores)`,
	).Scan(&stats.TotalUsers, &stats.TotalSubjects, &stats.TotalQuizzes, &stats.TotalAttempts)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("dashboard counts: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT sc.id, sc.quiz_id, q.title, sc.user_id, sc.total_scored,
		       sc.total_marks, sc.time_taken, sc.timestamp_of_attempt
		FROM scores sc
		JOIN quizzes q ON q.id = sc.quiz_id
		ORDER BY sc.timestamp_of_attempt DESC, sc.id DESC
		LIMIT 10`)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("recent scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var view domain.ScoreView
		if err := rows.Scan(
			&view.ID, &view.QuizID, &view.QuizTitle, &view.UserID,
			&view.TotalScored, &view.TotalMarks, &view.TimeTaken, &view.AttemptedAt,
		); err != nil {
			return domain.DashboardStats{}, fmt.Errorf("scan recent score: %w", err)
		}
		view.Percentage = domain.Percentage(view.TotalScored, view.TotalMarks)
		stats.RecentScores = append(stats.RecentScores, view)
	}
	if err := rows.Err(); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("recent scores: %w", err)
	}
	return stats, nil
}
