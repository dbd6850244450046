package app

import (
	"context"
	"strconv"
	"time"

	"campus-quiz-service/internal/domain"
)

// ScoreRepository persists completed attempts. Rows are written once and
// never mutated. Reads return scores with the Quiz relation loaded so
// views can carry the quiz title.
type ScoreRepository interface {
	Create(ctx context.Context, score *domain.Score) error
	GetByID(ctx context.Context, id int64) (domain.Score, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Score, error)
}

// QuizSessionService serves quiz attempts: handing out questions with the
// answers withheld, scoring submissions and assembling result reviews.
type QuizSessionService struct {
	quizzes    QuizRepository
	questions  QuestionRepository
	scores     ScoreRepository
	answerKeys AnswerKeyRepository
	clock      func() time.Time
}

func NewQuizSessionService(
	quizzes QuizRepository,
	questions QuestionRepository,
	scores ScoreRepository,
	answerKeys AnswerKeyRepository,
) *QuizSessionService {
	return &QuizSessionService{
		quizzes:    quizzes,
		questions:  questions,
		scores:     scores,
		answerKeys: answerKeys,
		clock:      time.Now,
	}
}

// Start returns the quiz and its questions without correct options. The
// start timestamp is informational; the server does not enforce timing.
func (s *QuizSessionService) Start(ctx context.Context, quizID int64) (domain.QuizStart, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return domain.QuizStart{}, err
	}
	questions, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizStart{}, err
	}

	views := make([]domain.QuestionView, 0, len(questions))
	for _, question := range questions {
		views = append(views, domain.NewQuestionView(question, false))
	}
	return domain.QuizStart{
		Quiz:      domain.NewQuizView(quiz),
		Questions: views,
		StartTime: s.clock().UTC(),
	}, nil
}

// Submit scores the answer map against the quiz's answer key and persists
// the attempt. Absent or non-numeric answers score zero for their
// question. The quiz's total marks are snapshotted onto the score so later
// question edits cannot change past results. The response includes the
// full answer key; the frontend renders immediate feedback from it.
func (s *QuizSessionService) Submit(ctx context.Context, quizID, userID int64, answers map[string]string, timeTaken int) (domain.SubmitResult, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	key, err := s.answerKeys.GetAnswerKey(ctx, quizID)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if answers == nil {
		answers = map[string]string{}
	}

	totalScored := 0
	correctAnswers := make(map[string]int, len(key.Correct))
	for questionID, correct := range key.Correct {
		qid := strconv.FormatInt(questionID, 10)
		correctAnswers[qid] = correct
		submitted, ok := answers[qid]
		if !ok {
			continue
		}
		if picked, err := strconv.Atoi(submitted); err == nil && picked == correct {
			totalScored += key.Marks[questionID]
		}
	}

	score := domain.Score{
		QuizID:      quizID,
		UserID:      userID,
		TotalScored: totalScored,
		TotalMarks:  quiz.TotalMarks,
		TimeTaken:   timeTaken,
		AttemptedAt: s.clock().UTC(),
		Answers:     answers,
	}
	if err := s.scores.Create(ctx, &score); err != nil {
		return domain.SubmitResult{}, err
	}
	score.Quiz = &quiz

	return domain.SubmitResult{
		Score:          domain.NewScoreView(score),
		CorrectAnswers: correctAnswers,
	}, nil
}

// Results assembles the per-question review for a stored attempt. Lookup
// is by score id alone; there is deliberately no ownership check tying the
// caller to the score's user.
func (s *QuizSessionService) Results(ctx context.Context, scoreID int64) (domain.QuizResults, error) {
	score, err := s.scores.GetByID(ctx, scoreID)
	if err != nil {
		return domain.QuizResults{}, err
	}
	quiz, err := s.quizzes.GetByID(ctx, score.QuizID)
	if err != nil {
		return domain.QuizResults{}, err
	}
	questions, err := s.questions.ListByQuiz(ctx, score.QuizID)
	if err != nil {
		return domain.QuizResults{}, err
	}

	results := make([]domain.QuestionResult, 0, len(questions))
	for _, question := range questions {
		var userAnswer *string
		isCorrect := false
		if submitted, ok := score.Answers[strconv.FormatInt(question.ID, 10)]; ok {
			answer := submitted
			userAnswer = &answer
			if picked, err := strconv.Atoi(submitted); err == nil && picked == question.CorrectOption {
				isCorrect = true
			}
		}
		results = append(results, domain.QuestionResult{
			Question:   domain.NewQuestionView(question, true),
			UserAnswer: userAnswer,
			IsCorrect:  isCorrect,
		})
	}

	score.Quiz = &quiz
	return domain.QuizResults{
		Score:           domain.NewScoreView(score),
		Quiz:            domain.NewQuizView(quiz),
		DetailedResults: results,
	}, nil
}
