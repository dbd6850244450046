// Package memory implements every repository on plain maps. It backs the
// unit tests and serves as the no-infrastructure demo fallback when no
// postgres URL is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"campus-quiz-service/internal/domain"
)

// Store holds all entities behind one lock. IDs are assigned from a single
// sequence, mirroring serial columns.
type Store struct {
	mu        sync.RWMutex
	seq       int64
	users     map[int64]*domain.User
	subjects  map[int64]*domain.Subject
	chapters  map[int64]*domain.Chapter
	quizzes   map[int64]*domain.Quiz
	questions map[int64]*domain.Question
	scores    map[int64]*domain.Score
}

func NewStore() *Store {
	return &Store{
		users:     make(map[int64]*domain.User),
		subjects:  make(map[int64]*domain.Subject),
		chapters:  make(map[int64]*domain.Chapter),
		quizzes:   make(map[int64]*domain.Quiz),
		questions: make(map[int64]*domain.Question),
		scores:    make(map[int64]*domain.Score),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// --- UserRepository ---

func (s *Store) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	user.ID = s.nextID()
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return *user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) GetByID(ctx context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *user, nil
}

func (s *Store) SetLastLogin(ctx context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	stamp := at
	user.LastLogin = &stamp
	return nil
}

func (s *Store) FindAdmin(ctx context.Context) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Role == domain.RoleAdmin {
			return *user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

// --- SubjectRepository ---

// Subjects returns a repository view over the store; the split keeps the
// app wiring identical across memory and postgres infra.
func (s *Store) Subjects() *SubjectRepository   { return &SubjectRepository{store: s} }
func (s *Store) Chapters() *ChapterRepository   { return &ChapterRepository{store: s} }
func (s *Store) Quizzes() *QuizRepository       { return &QuizRepository{store: s} }
func (s *Store) Questions() *QuestionRepository { return &QuestionRepository{store: s} }
func (s *Store) Scores() *ScoreRepository       { return &ScoreRepository{store: s} }
func (s *Store) Stats() *StatsRepository        { return &StatsRepository{store: s} }

type SubjectRepository struct{ store *Store }

func (r *SubjectRepository) Create(ctx context.Context, subject *domain.Subject) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	subject.ID = s.nextID()
	stored := *subject
	stored.Chapters = nil
	s.subjects[subject.ID] = &stored
	return nil
}

func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (domain.Subject, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	subject, ok := s.subjects[id]
	if !ok {
		return domain.Subject{}, domain.ErrSubjectNotFound
	}
	return s.subjectWithChaptersLocked(subject), nil
}

func (r *SubjectRepository) ListActive(ctx context.Context) ([]domain.Subject, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Subject, 0)
	for _, id := range sortedKeys(s.subjects) {
		subject := s.subjects[id]
		if subject.IsActive {
			out = append(out, s.subjectWithChaptersLocked(subject))
		}
	}
	return out, nil
}

func (r *SubjectRepository) Update(ctx context.Context, subject *domain.Subject) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[subject.ID]; !ok {
		return domain.ErrSubjectNotFound
	}
	stored := *subject
	stored.Chapters = nil
	s.subjects[subject.ID] = &stored
	return nil
}

func (r *SubjectRepository) Deactivate(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	subject, ok := s.subjects[id]
	if !ok {
		return domain.ErrSubjectNotFound
	}
	subject.IsActive = false
	return nil
}

// subjectWithChaptersLocked copies the subject and attaches all of its
// chapters, active or not; counts must include soft-deleted children.
func (s *Store) subjectWithChaptersLocked(subject *domain.Subject) domain.Subject {
	out := *subject
	out.Chapters = nil
	for _, id := range sortedKeys(s.chapters) {
		chapter := s.chapters[id]
		if chapter.SubjectID == subject.ID {
			c := *chapter
			out.Chapters = append(out.Chapters, &c)
		}
	}
	return out
}

// --- ChapterRepository ---

type ChapterRepository struct{ store *Store }

func (r *ChapterRepository) Create(ctx context.Context, chapter *domain.Chapter) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[chapter.SubjectID]; !ok {
		return domain.ErrSubjectNotFound
	}
	chapter.ID = s.nextID()
	stored := *chapter
	stored.Subject = nil
	stored.Quizzes = nil
	s.chapters[chapter.ID] = &stored
	return nil
}

func (r *ChapterRepository) GetByID(ctx context.Context, id int64) (domain.Chapter, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	chapter, ok := s.chapters[id]
	if !ok {
		return domain.Chapter{}, domain.ErrChapterNotFound
	}
	return s.chapterWithRelationsLocked(chapter), nil
}

func (r *ChapterRepository) ListActive(ctx context.Context) ([]domain.Chapter, error) {
	return r.list(func(c *domain.Chapter) bool { return c.IsActive })
}

func (r *ChapterRepository) ListActiveBySubject(ctx context.Context, subjectID int64) ([]domain.Chapter, error) {
	return r.list(func(c *domain.Chapter) bool { return c.IsActive && c.SubjectID == subjectID })
}

func (r *ChapterRepository) list(keep func(*domain.Chapter) bool) ([]domain.Chapter, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chapter, 0)
	for _, id := range sortedKeys(s.chapters) {
		chapter := s.chapters[id]
		if keep(chapter) {
			out = append(out, s.chapterWithRelationsLocked(chapter))
		}
	}
	return out, nil
}

func (r *ChapterRepository) Update(ctx context.Context, chapter *domain.Chapter) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chapters[chapter.ID]; !ok {
		return domain.ErrChapterNotFound
	}
	stored := *chapter
	stored.Subject = nil
	stored.Quizzes = nil
	s.chapters[chapter.ID] = &stored
	return nil
}

func (r *ChapterRepository) Deactivate(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	chapter, ok := s.chapters[id]
	if !ok {
		return domain.ErrChapterNotFound
	}
	chapter.IsActive = false
	return nil
}

func (s *Store) chapterWithRelationsLocked(chapter *domain.Chapter) domain.Chapter {
	out := *chapter
	out.Subject = nil
	out.Quizzes = nil
	if subject, ok := s.subjects[chapter.SubjectID]; ok {
		sub := *subject
		out.Subject = &sub
	}
	for _, id := range sortedKeys(s.quizzes) {
		quiz := s.quizzes[id]
		if quiz.ChapterID == chapter.ID {
			q := *quiz
			out.Quizzes = append(out.Quizzes, &q)
		}
	}
	return out
}

// --- QuizRepository ---

type QuizRepository struct{ store *Store }

func (r *QuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chapters[quiz.ChapterID]; !ok {
		return domain.ErrChapterNotFound
	}
	quiz.ID = s.nextID()
	stored := *quiz
	stored.Chapter = nil
	stored.Questions = nil
	stored.Scores = nil
	s.quizzes[quiz.ID] = &stored
	return nil
}

func (r *QuizRepository) GetByID(ctx context.Context, id int64) (domain.Quiz, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return s.quizWithRelationsLocked(quiz), nil
}

func (r *QuizRepository) ListActive(ctx context.Context) ([]domain.Quiz, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0)
	for _, id := range sortedKeys(s.quizzes) {
		quiz := s.quizzes[id]
		if quiz.IsActive {
			out = append(out, s.quizWithRelationsLocked(quiz))
		}
	}
	return out, nil
}

func (r *QuizRepository) Update(ctx context.Context, quiz *domain.Quiz) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.quizzes[quiz.ID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	updated := *quiz
	updated.TotalMarks = stored.TotalMarks // marks only move with question writes
	updated.Chapter = nil
	updated.Questions = nil
	updated.Scores = nil
	s.quizzes[quiz.ID] = &updated
	return nil
}

func (r *QuizRepository) Deactivate(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.ErrQuizNotFound
	}
	quiz.IsActive = false
	return nil
}

func (r *QuizRepository) CountActive(ctx context.Context) (int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, quiz := range s.quizzes {
		if quiz.IsActive {
			count++
		}
	}
	return count, nil
}

func (s *Store) quizWithRelationsLocked(quiz *domain.Quiz) domain.Quiz {
	out := *quiz
	out.Chapter = nil
	out.Questions = nil
	out.Scores = nil
	if chapter, ok := s.chapters[quiz.ChapterID]; ok {
		c := s.chapterWithRelationsLocked(chapter)
		c.Quizzes = nil
		out.Chapter = &c
	}
	for _, id := range sortedKeys(s.questions) {
		question := s.questions[id]
		if question.QuizID == quiz.ID {
			q := *question
			out.Questions = append(out.Questions, &q)
		}
	}
	return out
}

// --- QuestionRepository ---

type QuestionRepository struct{ store *Store }

func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (domain.Question, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return *question, nil
}

func (r *QuestionRepository) ListByQuiz(ctx context.Context, quizID int64) ([]domain.Question, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0)
	for _, id := range sortedKeys(s.questions) {
		question := s.questions[id]
		if question.QuizID == quizID {
			out = append(out, *question)
		}
	}
	return out, nil
}

func (r *QuestionRepository) Insert(ctx context.Context, question *domain.Question) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[question.QuizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	question.ID = s.nextID()
	stored := *question
	s.questions[question.ID] = &stored
	quiz.TotalMarks += question.Marks
	return nil
}

func (r *QuestionRepository) Update(ctx context.Context, question *domain.Question, marksDelta int) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[question.ID]; !ok {
		return domain.ErrQuestionNotFound
	}
	stored := *question
	s.questions[question.ID] = &stored
	if marksDelta != 0 {
		if quiz, ok := s.quizzes[question.QuizID]; ok {
			quiz.TotalMarks += marksDelta
		}
	}
	return nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.questions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	if quiz, ok := s.quizzes[question.QuizID]; ok {
		quiz.TotalMarks -= question.Marks
	}
	return nil
}

// LoadAnswerKey lets the store serve as the backing loader for the
// answer-key caches.
func (s *Store) LoadAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.AnswerKey{}, domain.ErrQuizNotFound
	}
	key := domain.AnswerKey{
		QuizID:  quizID,
		Correct: make(map[int64]int),
		Marks:   make(map[int64]int),
	}
	for _, question := range s.questions {
		if question.QuizID == quizID {
			key.Correct[question.ID] = question.CorrectOption
			key.Marks[question.ID] = question.Marks
		}
	}
	return key, nil
}

// --- ScoreRepository ---

type ScoreRepository struct{ store *Store }

func (r *ScoreRepository) Create(ctx context.Context, score *domain.Score) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	score.ID = s.nextID()
	stored := *score
	stored.Quiz = nil
	stored.User = nil
	s.scores[score.ID] = &stored
	return nil
}

func (r *ScoreRepository) GetByID(ctx context.Context, id int64) (domain.Score, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[id]
	if !ok {
		return domain.Score{}, domain.ErrScoreNotFound
	}
	return s.scoreWithQuizLocked(score), nil
}

func (r *ScoreRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Score, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Score, 0)
	for _, score := range s.scores {
		if score.UserID == userID {
			out = append(out, s.scoreWithQuizLocked(score))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AttemptedAt.Equal(out[j].AttemptedAt) {
			return out[i].AttemptedAt.After(out[j].AttemptedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) scoreWithQuizLocked(score *domain.Score) domain.Score {
	out := *score
	out.Quiz = nil
	out.User = nil
	if quiz, ok := s.quizzes[score.QuizID]; ok {
		q := *quiz
		out.Quiz = &q
	}
	return out
}

// --- StatsRepository ---

type StatsRepository struct{ store *Store }

func (r *StatsRepository) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.DashboardStats{RecentScores: []domain.ScoreView{}}
	for _, user := range s.users {
		if user.Role == domain.RoleUser {
			stats.TotalUsers++
		}
	}
	for _, subject := range s.subjects {
		if subject.IsActive {
			stats.TotalSubjects++
		}
	}
	for _, quiz := range s.quizzes {
		if quiz.IsActive {
			stats.TotalQuizzes++
		}
	}
	stats.TotalAttempts = len(s.scores)

	scores := make([]domain.Score, 0, len(s.scores))
	for _, score := range s.scores {
		scores = append(scores, s.scoreWithQuizLocked(score))
	}
	sort.Slice(scores, func(i, j int) bool {
		if !scores[i].AttemptedAt.Equal(scores[j].AttemptedAt) {
			return scores[i].AttemptedAt.After(scores[j].AttemptedAt)
		}
		return scores[i].ID > scores[j].ID
	})
	if len(scores) > 10 {
		scores = scores[:10]
	}
	for _, score := range scores {
		stats.RecentScores = append(stats.RecentScores, domain.NewScoreView(score))
	}
	return stats, nil
}

func sortedKeys[V any](m map[int64]*V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
