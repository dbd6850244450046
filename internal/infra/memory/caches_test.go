package memory

import (
	"context"
	"testing"
	"time"

	"campus-quiz-service/internal/domain"
)

func TestSubjectListCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	cache := NewSubjectListCache(time.Minute)
	cache.clock = func() time.Time { return now }

	if _, ok := cache.Get(ctx); ok {
		t.Fatalf("expected miss on empty cache")
	}
	if err := cache.Set(ctx, []byte(`[{"id":1}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if payload, ok := cache.Get(ctx); !ok || string(payload) != `[{"id":1}]` {
		t.Fatalf("expected hit, got ok=%v payload=%s", ok, payload)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get(ctx); ok {
		t.Fatalf("expected miss after expiry")
	}
}

func TestSubjectListCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := NewSubjectListCache(time.Minute)

	if err := cache.Set(ctx, []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok := cache.Get(ctx); ok {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestAnswerKeyCacheLoadsOnce(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	loader := &countingLoader{AnswerKeyLoader: store}
	cache := NewAnswerKeyCache(loader, time.Minute)

	key, err := cache.GetAnswerKey(ctx, 3)
	if err != nil {
		t.Fatalf("get answer key: %v", err)
	}
	if len(key.Correct) != 1 || key.Correct[4] != 2 || key.Marks[4] != 3 {
		t.Fatalf("unexpected key %+v", key)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.GetAnswerKey(ctx, 3); err != nil {
		t.Fatalf("get answer key 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	if err := cache.Invalidate(ctx, 3); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := cache.GetAnswerKey(ctx, 3); err != nil {
		t.Fatalf("get answer key 3: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, got %d calls", loader.calls)
	}
}

func TestAnswerKeyCacheUnknownQuiz(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	cache := NewAnswerKeyCache(store, time.Minute)

	if _, err := cache.GetAnswerKey(ctx, 99); err != domain.ErrQuizNotFound {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

type countingLoader struct {
	AnswerKeyLoader
	calls int
}

func (l *countingLoader) LoadAnswerKey(ctx context.Context, quizID int64) (domain.AnswerKey, error) {
	l.calls++
	return l.AnswerKeyLoader.LoadAnswerKey(ctx, quizID)
}

// seedStore builds subject(1) -> chapter(2) -> quiz(3) -> question(4).
func seedStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	store := NewStore()

	subject := domain.Subject{Name: "Math", IsActive: true}
	if err := store.Subjects().Create(ctx, &subject); err != nil {
		t.Fatalf("seed subject: %v", err)
	}
	chapter := domain.Chapter{Name: "Algebra", SubjectID: subject.ID, IsActive: true}
	if err := store.Chapters().Create(ctx, &chapter); err != nil {
		t.Fatalf("seed chapter: %v", err)
	}
	quiz := domain.Quiz{ChapterID: chapter.ID, Title: "Basics", DateOfQuiz: time.Now(), TimeDuration: 30, IsActive: true}
	if err := store.Quizzes().Create(ctx, &quiz); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	question := domain.Question{
		QuizID:    quiz.ID,
		Statement: "2+2?", Option1: "3", Option2: "4", Option3: "5", Option4: "6",
		CorrectOption: 2, Marks: 3,
	}
	if err := store.Questions().Insert(ctx, &question); err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return store
}
