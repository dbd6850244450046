package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campus-quiz-service/internal/domain"

	"github.com/uptrace/bun"
)

// SubjectRepository, ChapterRepository, QuizRepository and
// QuestionRepository wrap the content-hierarchy tables. Listings load the
// relations the public views derive counts and parent names from; counts
// include soft-deleted children on purpose.

type SubjectRepository struct {
	db *bun.DB
}

func NewSubjectRepository(db *bun.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func (r *SubjectRepository) Create(ctx context.Context, subject *domain.Subject) error {
	if _, err := r.db.NewInsert().Model(subject).Exec(ctx); err != nil {
		return fmt.Errorf("insert subject: %w", err)
	}
	return nil
}

func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (domain.Subject, error) {
	var subject domain.Subject
	err := r.db.NewSelect().
		Model(&subject).
		Relation("Chapters").
		Where("s.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Subject{}, domain.ErrSubjectNotFound
		}
		return domain.Subject{}, fmt.Errorf("select subject: %w", err)
	}
	return subject, nil
}

func (r *SubjectRepository) ListActive(ctx context.Context) ([]domain.Subject, error) {
	subjects := make([]domain.Subject, 0)
	err := r.db.NewSelect().
		Model(&subjects).
		Relation("Chapters").
		Where("s.is_active = TRUE").
		Order("s.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

func (r *SubjectRepository) Update(ctx context.Context, subject *domain.Subject) error {
	res, err := r.db.NewUpdate().
		Model(subject).
		Column("name", "description", "is_active").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrSubjectNotFound
	}
	return nil
}

func (r *SubjectRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.NewUpdate().
		Model((*domain.Subject)(nil)).
		Set("is_active = FALSE").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("deactivate subject: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrSubjectNotFound
	}
	return nil
}

type ChapterRepository struct {
	db *bun.DB
}

func NewChapterRepository(db *bun.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

func (r *ChapterRepository) Create(ctx context.Context, chapter *domain.Chapter) error {
	if _, err := r.db.NewInsert().Model(chapter).Exec(ctx); err != nil {
		return fmt.Errorf("insert chapter: %w", err)
	}
	return nil
}

func (r *ChapterRepository) GetByID(ctx context.Context, id int64) (domain.Chapter, error) {
	var chapter domain.Chapter
	err := r.db.NewSelect().
		Model(&chapter).
		Relation("Subject").
		Relation("Quizzes").
		Where("c.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Chapter{}, domain.ErrChapterNotFound
		}
		return domain.Chapter{}, fmt.Errorf("select chapter: %w", err)
	}
	return chapter, nil
}

func (r *ChapterRepository) ListActive(ctx context.Context) ([]domain.Chapter, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery { return q })
}

func (r *ChapterRepository) ListActiveBySubject(ctx context.Context, subjectID int64) ([]domain.Chapter, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("c.subject_id = ?", subjectID)
	})
}

func (r *ChapterRepository) list(ctx context.Context, apply func(*bun.SelectQuery) *bun.SelectQuery) ([]domain.Chapter, error) {
	chapters := make([]domain.Chapter, 0)
	q := r.db.NewSelect().
		Model(&chapters).
		Relation("Subject").
		Relation("Quizzes").
		Where("c.is_active = TRUE").
		Order("c.id ASC")
	if err := apply(q).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return chapters, nil
}

func (r *ChapterRepository) Update(ctx context.Context, chapter *domain.Chapter) error {
	res, err := r.db.NewUpdate().
		Model(chapter).
		Column("name", "description", "is_active").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update chapter: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrChapterNotFound
	}
	return nil
}

func (r *ChapterRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.NewUpdate().
		Model((*domain.Chapter)(nil)).
		Set("is_active = FALSE").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("deactivate chapter: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrChapterNotFound
	}
	return nil
}

type QuizRepository struct {
	db *bun.DB
}

func NewQuizRepository(db *bun.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	if _, err := r.db.NewInsert().Model(quiz).Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (r *QuizRepository) GetByID(ctx context.Context, id int64) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := r.db.NewSelect().
		Model(&quiz).
		Relation("Chapter").
		Relation("Chapter.Subject").
		Relation("Questions").
		Where("q.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("select quiz: %w", err)
	}
	return quiz, nil
}

func (r *QuizRepository) ListActive(ctx context.Context) ([]domain.Quiz, error) {
	quizzes := make([]domain.Quiz, 0)
	err := r.db.NewSelect().
		Model(&quizzes).
		Relation("Chapter").
		Relation("Chapter.Subject").
		Relation("Questions").
		Where("q.is_active = TRUE").
		Order("q.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

func (r *QuizRepository) Update(ctx context.Context, quiz *domain.Quiz) error {
	// total_marks moves only with question writes; it is not a settable column here.
	res, err := r.db.NewUpdate().
		Model(quiz).
		Column("title", "description", "date_of_quiz", "time_duration", "is_active").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.NewUpdate().
		Model((*domain.Quiz)(nil)).
		Set("is_active = FALSE").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("deactivate quiz: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) CountActive(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().
		Model((*domain.Quiz)(nil)).
		Where("is_active = TRUE").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count quizzes: %w", err)
	}
	return count, nil
}

type QuestionRepository struct {
	db *bun.DB
}

func NewQuestionRepository(db *bun.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (domain.Question, error) {
	var question domain.Question
	err := r.db.NewSelect().Model(&question).Where("qn.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Question{}, domain.ErrQuestionNotFound
		}
		return domain.Question{}, fmt.Errorf("select question: %w", err)
	}
	return question, nil
}

func (r *QuestionRepository) ListByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error) {
	questions := make([]domain.Question, 0)
	err := r.db.NewSelect().
		Model(&questions).
		Where("quiz_id = ?", quizID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// Insert writes the question and bumps the owning quiz's total_marks in
// the same transaction, keeping the sum invariant.
func (r *QuestionRepository) Insert(ctx context.Context, question *domain.Question) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*domain.Quiz)(nil)).
			Set("total_marks = total_marks + ?", question.Marks).
			Where("id = ?", question.QuizID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("increment total_marks: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return domain.ErrQuizNotFound
		}
		if _, err := tx.NewInsert().Model(question).Exec(ctx); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		return nil
	})
}

// Update persists the question and applies marksDelta to the quiz total in
// the same transaction.
func (r *QuestionRepository) Update(ctx context.Context, question *domain.Question, marksDelta int) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(question).
			Column("question_statement", "option1", "option2", "option3", "option4", "correct_option", "marks").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update question: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return domain.ErrQuestionNotFound
		}
		if marksDelta != 0 {
			if _, err := tx.NewUpdate().
				Model((*domain.Quiz)(nil)).
				Set("total_marks = total_marks + ?", marksDelta).
				Where("id = ?", question.QuizID).
				Exec(ctx); err != nil {
				return fmt.Errorf("adjust total_marks: %w", err)
			}
		}
		return nil
	})
}

// Delete removes the question and decrements the quiz total by its marks
// in the same transaction.
func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var question domain.Question
		err := tx.NewSelect().Model(&question).Where("qn.id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrQuestionNotFound
			}
			return fmt.Errorf("select question: %w", err)
		}
		if _, err := tx.NewDelete().Model(&question).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("delete question: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*domain.Quiz)(nil)).
			Set("total_marks = total_marks - ?", question.Marks).
			Where("id = ?", question.QuizID).
			Exec(ctx); err != nil {
			return fmt.Errorf("decrement total_marks: %w", err)
		}
		return nil
	})
}

// LoadAnswerKey serves the answer-key caches on miss.
func (r *QuestionRepository) LoadAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error) {
	exists, err := r.db.NewSelect().
		Model((*domain.Quiz)(nil)).
		Where("id = ?", quizID).
		Exists(ctx)
	if err != nil {
		return domain.AnswerKey{}, fmt.Errorf("check quiz: %w", err)
	}
	if !exists {
		return domain.AnswerKey{}, domain.ErrQuizNotFound
	}

	questions, err := r.ListByQuiz(ctx, quizID)
	if err != nil {
		return domain.AnswerKey{}, err
	}
	key := domain.AnswerKey{
		QuizID:  quizID,
		Correct: make(map[int64]int, len(questions)),
		Marks:   make(map[int64]int, len(questions)),
	}
	for _, question := range questions {
		key.Correct[question.ID] = question.CorrectOption
		key.Marks[question.ID] = question.Marks
	}
	return key, nil
}
