package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campus-quiz-service/internal/domain"

	"github.com/uptrace/bun"
)

type ScoreRepository struct {
	db *bun.DB
}

func NewScoreRepository(db *bun.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) Create(ctx context.Context, score *domain.Score) error {
	if _, err := r.db.NewInsert().Model(score).Exec(ctx); err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (r *ScoreRepository) GetByID(ctx context.Context, id int64) (domain.Score, error) {
	var score domain.Score
	err := r.db.NewSelect().
		Model(&score).
		Relation("Quiz").
		Where("sc.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Score{}, domain.ErrScoreNotFound
		}
		return domain.Score{}, fmt.Errorf("select score: %w", err)
	}
	return score, nil
}

func (r *ScoreRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Score, error) {
	scores := make([]domain.Score, 0)
	err := r.db.NewSelect().
		Model(&scores).
		Relation("Quiz").
		Where("sc.user_id = ?", userID).
		Order("sc.timestamp_of_attempt DESC").
		Order("sc.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return scores, nil
}
