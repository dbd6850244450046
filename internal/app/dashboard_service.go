package app

import (
	"context"
	"math"

	"campus-quiz-service/internal/domain"
)

// DashboardService builds the user-facing aggregates.
type DashboardService struct {
	scores  ScoreRepository
	quizzes QuizRepository
}

func NewDashboardService(scores ScoreRepository, quizzes QuizRepository) *DashboardService {
	return &DashboardService{scores: scores, quizzes: quizzes}
}

// UserDashboard summarizes a user's attempts: count, average percentage
// (0 when there are no attempts), the 10 most recent attempts, and the
// number of quizzes currently open.
func (s *DashboardService) UserDashboard(ctx context.Context, userID int64) (domain.UserDashboard, error) {
	scores, err := s.scores.ListByUser(ctx, userID)
	if err != nil {
		return domain.UserDashboard{}, err
	}

	views := make([]domain.ScoreView, 0, len(scores))
	sum := 0.0
	for _, score := range scores {
		view := domain.NewScoreView(score)
		views = append(views, view)
		sum += view.Percentage
	}
	average := 0.0
	if len(views) > 0 {
		average = math.Round(sum/float64(len(views))*100) / 100
	}

	recent := views
	if len(recent) > 10 {
		recent = recent[:10]
	}

	available, err := s.quizzes.CountActive(ctx)
	if err != nil {
		return domain.UserDashboard{}, err
	}

	return domain.UserDashboard{
		TotalAttempts:    len(views),
		AverageScore:     average,
		RecentAttempts:   recent,
		AvailableQuizzes: available,
	}, nil
}

// UserScores lists all of a user's attempts, most recent first.
func (s *DashboardService) UserScores(ctx context.Context, userID int64) ([]domain.ScoreView, error) {
	scores, err := s.scores.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]domain.ScoreView, 0, len(scores))
	for _, score := range scores {
		views = append(views, domain.NewScoreView(score))
	}
	return views, nil
}
