package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"campus-quiz-service/internal/domain"
)

// Catalog repositories. Listings return rows with the relations the public
// views derive their counts and parent names from.

type SubjectRepository interface {
	Create(ctx context.Context, subject *domain.Subject) error
	GetByID(ctx context.Context, id int64) (domain.Subject, error)
	ListActive(ctx context.Context) ([]domain.Subject, error)
	Update(ctx context.Context, subject *domain.Subject) error
	Deactivate(ctx context.Context, id int64) error
}

type ChapterRepository interface {
	Create(ctx context.Context, chapter *domain.Chapter) error
	GetByID(ctx context.Context, id int64) (domain.Chapter, error)
	ListActive(ctx context.Context) ([]domain.Chapter, error)
	ListActiveBySubject(ctx context.Context, subjectID int64) ([]domain.Chapter, error)
	Update(ctx context.Context, chapter *domain.Chapter) error
	Deactivate(ctx context.Context, id int64) error
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *domain.Quiz) error
	GetByID(ctx context.Context, id int64) (domain.Quiz, error)
	ListActive(ctx context.Context) ([]domain.Quiz, error)
	Update(ctx context.Context, quiz *domain.Quiz) error
	Deactivate(ctx context.Context, id int64) error
	CountActive(ctx context.Context) (int, error)
}

type QuestionRepository interface {
	GetByID(ctx context.Context, id int64) (domain.Question, error)
	ListByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error)
	// Insert adds the question and increments the owning quiz's total_marks
	// in one transaction.
	Insert(ctx context.Context, question *domain.Question) error
	// Update persists the question and applies marksDelta to the owning
	// quiz's total_marks in one transaction.
	Update(ctx context.Context, question *domain.Question, marksDelta int) error
	// Delete removes the question and decrements the owning quiz's
	// total_marks by the question's marks in one transaction.
	Delete(ctx context.Context, id int64) error
}

// StatsRepository aggregates the admin dashboard counts.
type StatsRepository interface {
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
}

// SubjectListCache holds one serialized active-subject listing. Writers
// must invalidate it before returning from any subject mutation.
type SubjectListCache interface {
	Get(ctx context.Context) ([]byte, bool)
	Set(ctx context.Context, payload []byte) error
	Invalidate(ctx context.Context) error
}

// AnswerKeyRepository serves per-quiz answer keys, cached with a loader
// fallback. Question mutations must invalidate the quiz's key.
type AnswerKeyRepository interface {
	GetAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error)
	Invalidate(ctx context.Context, quizID int64) error
}

// Mutation inputs. Pointers distinguish "not supplied" from zero values on
// updates; updates merge only supplied fields.

type SubjectInput struct {
	Name        string
	Description string
}

type SubjectUpdate struct {
	Name        *string
	Description *string
}

type ChapterInput struct {
	Name        string
	Description string
}

type ChapterUpdate struct {
	Name        *string
	Description *string
}

type QuizInput struct {
	Title        string
	Description  string
	DateOfQuiz   time.Time
	TimeDuration int
}

type QuizUpdate struct {
	Title        *string
	Description  *string
	DateOfQuiz   *time.Time
	TimeDuration *int
}

type QuestionInput struct {
	Statement     string
	Option1       string
	Option2       string
	Option3       string
	Option4       string
	CorrectOption int
	Marks         int
}

type QuestionUpdate struct {
	Statement     *string
	Option1       *string
	Option2       *string
	Option3       *string
	Option4       *string
	CorrectOption *int
	Marks         *int
}

// CatalogService is the admin-facing CRUD surface over the content
// hierarchy, plus the read-only listings users share.
type CatalogService struct {
	subjects   SubjectRepository
	chapters   ChapterRepository
	quizzes    QuizRepository
	questions  QuestionRepository
	stats      StatsRepository
	cache      SubjectListCache
	answerKeys AnswerKeyRepository
	clock      func() time.Time
}

func NewCatalogService(
	subjects SubjectRepository,
	chapters ChapterRepository,
	quizzes QuizRepository,
	questions QuestionRepository,
	stats StatsRepository,
	cache SubjectListCache,
	answerKeys AnswerKeyRepository,
) *CatalogService {
	return &CatalogService{
		subjects:   subjects,
		chapters:   chapters,
		quizzes:    quizzes,
		questions:  questions,
		stats:      stats,
		cache:      cache,
		answerKeys: answerKeys,
		clock:      time.Now,
	}
}

// ListSubjects serves the cached listing when fresh, otherwise rebuilds it
// and fills the cache. The raw JSON is returned so repeated reads within
// the freshness window are byte-identical.
func (s *CatalogService) ListSubjects(ctx context.Context) (json.RawMessage, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}

	subjects, err := s.subjects.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.SubjectView, 0, len(subjects))
	for _, subject := range subjects {
		views = append(views, domain.NewSubjectView(subject))
	}
	payload, err := json.Marshal(views)
	if err != nil {
		return nil, fmt.Errorf("marshal subjects: %w", err)
	}
	if err := s.cache.Set(ctx, payload); err != nil {
		// Cache failures must not break the listing.
		log.Printf("subject cache set failed: %v", err)
	}
	return payload, nil
}

func (s *CatalogService) CreateSubject(ctx context.Context, in SubjectInput) (domain.SubjectView, error) {
	subject := domain.Subject{
		Name:        in.Name,
		Description: in.Description,
		IsActive:    true,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.subjects.Create(ctx, &subject); err != nil {
		return domain.SubjectView{}, err
	}
	s.invalidateSubjects(ctx)
	return domain.NewSubjectView(subject), nil
}

func (s *CatalogService) UpdateSubject(ctx context.Context, id int64, in SubjectUpdate) (domain.SubjectView, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return domain.SubjectView{}, err
	}
	if in.Name != nil {
		subject.Name = *in.Name
	}
	if in.Description != nil {
		subject.Description = *in.Description
	}
	if err := s.subjects.Update(ctx, &subject); err != nil {
		return domain.SubjectView{}, err
	}
	s.invalidateSubjects(ctx)
	return domain.NewSubjectView(subject), nil
}

func (s *CatalogService) DeleteSubject(ctx context.Context, id int64) error {
	if err := s.subjects.Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidateSubjects(ctx)
	return nil
}

func (s *CatalogService) ListChapters(ctx context.Context) ([]domain.ChapterView, error) {
	chapters, err := s.chapters.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return chapterViews(chapters), nil
}

func (s *CatalogService) ListChaptersBySubject(ctx context.Context, subjectID int64) ([]domain.ChapterView, error) {
	chapters, err := s.chapters.ListActiveBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return chapterViews(chapters), nil
}

func (s *CatalogService) CreateChapter(ctx context.Context, subjectID int64, in ChapterInput) (domain.ChapterView, error) {
	subject, err := s.subjects.GetByID(ctx, subjectID)
	if err != nil {
		return domain.ChapterView{}, err
	}
	chapter := domain.Chapter{
		Name:        in.Name,
		Description: in.Description,
		SubjectID:   subjectID,
		IsActive:    true,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.chapters.Create(ctx, &chapter); err != nil {
		return domain.ChapterView{}, err
	}
	chapter.Subject = &subject
	return domain.NewChapterView(chapter), nil
}

func (s *CatalogService) UpdateChapter(ctx context.Context, id int64, in ChapterUpdate) (domain.ChapterView, error) {
	chapter, err := s.chapters.GetByID(ctx, id)
	if err != nil {
		return domain.ChapterView{}, err
	}
	if in.Name != nil {
		chapter.Name = *in.Name
	}
	if in.Description != nil {
		chapter.Description = *in.Description
	}
	if err := s.chapters.Update(ctx, &chapter); err != nil {
		return domain.ChapterView{}, err
	}
	return domain.NewChapterView(chapter), nil
}

func (s *CatalogService) DeleteChapter(ctx context.Context, id int64) error {
	return s.chapters.Deactivate(ctx, id)
}

func (s *CatalogService) ListQuizzes(ctx context.Context) ([]domain.QuizView, error) {
	quizzes, err := s.quizzes.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.QuizView, 0, len(quizzes))
	for _, quiz := range quizzes {
		views = append(views, domain.NewQuizView(quiz))
	}
	return views, nil
}

func (s *CatalogService) CreateQuiz(ctx context.Context, chapterID int64, in QuizInput) (domain.QuizView, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return domain.QuizView{}, err
	}
	quiz := domain.Quiz{
		ChapterID:    chapterID,
		Title:        in.Title,
		Description:  in.Description,
		DateOfQuiz:   in.DateOfQuiz,
		TimeDuration: in.TimeDuration,
		IsActive:     true,
		CreatedAt:    s.clock().UTC(),
	}
	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return domain.QuizView{}, err
	}
	quiz.Chapter = &chapter
	return domain.NewQuizView(quiz), nil
}

func (s *CatalogService) UpdateQuiz(ctx context.Context, id int64, in QuizUpdate) (domain.QuizView, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return domain.QuizView{}, err
	}
	if in.Title != nil {
		quiz.Title = *in.Title
	}
	if in.Description != nil {
		quiz.Description = *in.Description
	}
	if in.DateOfQuiz != nil {
		quiz.DateOfQuiz = *in.DateOfQuiz
	}
	if in.TimeDuration != nil {
		quiz.TimeDuration = *in.TimeDuration
	}
	if err := s.quizzes.Update(ctx, &quiz); err != nil {
		return domain.QuizView{}, err
	}
	return domain.NewQuizView(quiz), nil
}

func (s *CatalogService) DeleteQuiz(ctx context.Context, id int64) error {
	return s.quizzes.Deactivate(ctx, id)
}

// ListQuestions returns a quiz's questions with answers revealed; this is
// the admin management view, not the player view.
func (s *CatalogService) ListQuestions(ctx context.Context, quizID int64) ([]domain.QuestionView, error) {
	if _, err := s.quizzes.GetByID(ctx, quizID); err != nil {
		return nil, err
	}
	questions, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	views := make([]domain.QuestionView, 0, len(questions))
	for _, question := range questions {
		views = append(views, domain.NewQuestionView(question, true))
	}
	return views, nil
}

func (s *CatalogService) CreateQuestion(ctx context.Context, quizID int64, in QuestionInput) (domain.QuestionView, error) {
	if in.CorrectOption < 1 || in.CorrectOption > 4 {
		return domain.QuestionView{}, fmt.Errorf("%w: correct_option must be between 1 and 4", domain.ErrValidation)
	}
	if _, err := s.quizzes.GetByID(ctx, quizID); err != nil {
		return domain.QuestionView{}, err
	}

	marks := in.Marks
	if marks == 0 {
		marks = 1
	}
	question := domain.Question{
		QuizID:        quizID,
		Statement:     in.Statement,
		Option1:       in.Option1,
		Option2:       in.Option2,
		Option3:       in.Option3,
		Option4:       in.Option4,
		CorrectOption: in.CorrectOption,
		Marks:         marks,
		CreatedAt:     s.clock().UTC(),
	}
	if err := s.questions.Insert(ctx, &question); err != nil {
		return domain.QuestionView{}, err
	}
	s.invalidateAnswerKey(ctx, quizID)
	return domain.NewQuestionView(question, true), nil
}

func (s *CatalogService) UpdateQuestion(ctx context.Context, id int64, in QuestionUpdate) (domain.QuestionView, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return domain.QuestionView{}, err
	}
	if in.Statement != nil {
		question.Statement = *in.Statement
	}
	if in.Option1 != nil {
		question.Option1 = *in.Option1
	}
	if in.Option2 != nil {
		question.Option2 = *in.Option2
	}
	if in.Option3 != nil {
		question.Option3 = *in.Option3
	}
	if in.Option4 != nil {
		question.Option4 = *in.Option4
	}
	if in.CorrectOption != nil {
		if *in.CorrectOption < 1 || *in.CorrectOption > 4 {
			return domain.QuestionView{}, fmt.Errorf("%w: correct_option must be between 1 and 4", domain.ErrValidation)
		}
		question.CorrectOption = *in.CorrectOption
	}
	marksDelta := 0
	if in.Marks != nil && *in.Marks != question.Marks {
		marksDelta = *in.Marks - question.Marks
		question.Marks = *in.Marks
	}
	if err := s.questions.Update(ctx, &question, marksDelta); err != nil {
		return domain.QuestionView{}, err
	}
	s.invalidateAnswerKey(ctx, question.QuizID)
	return domain.NewQuestionView(question, true), nil
}

func (s *CatalogService) DeleteQuestion(ctx context.Context, id int64) error {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateAnswerKey(ctx, question.QuizID)
	return nil
}

func (s *CatalogService) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	return s.stats.DashboardStats(ctx)
}

func (s *CatalogService) invalidateSubjects(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("subject cache invalidate failed: %v", err)
	}
}

func (s *CatalogService) invalidateAnswerKey(ctx context.Context, quizID int64) {
	if err := s.answerKeys.Invalidate(ctx, quizID); err != nil {
		log.Printf("answer key invalidate failed for quiz %d: %v", quizID, err)
	}
}

func chapterViews(chapters []domain.Chapter) []domain.ChapterView {
	views := make([]domain.ChapterView, 0, len(chapters))
	for _, chapter := range chapters {
		views = append(views, domain.NewChapterView(chapter))
	}
	return views
}
