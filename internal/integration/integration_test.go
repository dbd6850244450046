package integration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"campus-quiz-service/internal/app"
	"campus-quiz-service/internal/domain"
	"campus-quiz-service/internal/infra/postgres"
	pgmigrations "campus-quiz-service/internal/infra/postgres/migrations"
	infraredis "campus-quiz-service/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"
)

func TestQuizAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.Open(pgURL)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	questionRepo := postgres.NewQuestionRepository(db)
	answerKeys := infraredis.NewAnswerKeyCache(redisClient, questionRepo, 5*time.Minute)

	tokens := app.NewTokenManager("integration-secret", time.Hour)
	auth := app.NewAuthService(postgres.NewUserRepository(db), tokens)
	catalog := app.NewCatalogService(
		postgres.NewSubjectRepository(db),
		postgres.NewChapterRepository(db),
		postgres.NewQuizRepository(db),
		questionRepo,
		postgres.NewStatsRepository(pool),
		infraredis.NewSubjectListCache(redisClient, 5*time.Minute),
		answerKeys,
	)
	sessions := app.NewQuizSessionService(
		postgres.NewQuizRepository(db),
		questionRepo,
		postgres.NewScoreRepository(db),
		answerKeys,
	)

	// Accounts.
	if err := auth.EnsureAdmin(ctx, "admin123"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	user, err := auth.Register(ctx, app.RegisterInput{Username: "alice", Password: "pw", FullName: "Alice"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := auth.Register(ctx, app.RegisterInput{Username: "alice", Password: "pw", FullName: "Dup"}); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected username taken, got %v", err)
	}

	// Content.
	subject, err := catalog.CreateSubject(ctx, app.SubjectInput{Name: "Math"})
	if err != nil {
		t.Fatalf("create subject: %v", err)
	}
	chapter, err := catalog.CreateChapter(ctx, subject.ID, app.ChapterInput{Name: "Algebra"})
	if err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	quiz, err := catalog.CreateQuiz(ctx, chapter.ID, app.QuizInput{
		Title:        "Algebra Basics",
		DateOfQuiz:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		TimeDuration: 30,
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	q1, err := catalog.CreateQuestion(ctx, quiz.ID, app.QuestionInput{
		Statement: "2+2?", Option1: "3", Option2: "4", Option3: "5", Option4: "6",
		CorrectOption: 2, Marks: 2,
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	q2, err := catalog.CreateQuestion(ctx, quiz.ID, app.QuestionInput{
		Statement: "3*3?", Option1: "6", Option2: "8", Option3: "9", Option4: "12",
		CorrectOption: 3, Marks: 1,
	})
	if err != nil {
		t.Fatalf("create question 2: %v", err)
	}

	// total_marks must equal the sum of question marks after the inserts.
	stored, err := postgres.NewQuizRepository(db).GetByID(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if stored.TotalMarks != 3 {
		t.Fatalf("expected total marks 3, got %d", stored.TotalMarks)
	}

	// Attempt.
	start, err := sessions.Start(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(start.Questions) != 2 || start.Questions[0].CorrectOption != nil {
		t.Fatalf("unexpected start payload %+v", start.Questions)
	}

	result, err := sessions.Submit(ctx, quiz.ID, user.ID, map[string]string{
		strconv.FormatInt(q1.ID, 10): "2",
		strconv.FormatInt(q2.ID, 10): "1",
	}, 15)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score.TotalScored != 2 || result.Score.TotalMarks != 3 {
		t.Fatalf("expected 2/3, got %d/%d", result.Score.TotalScored, result.Score.TotalMarks)
	}
	if result.Score.Percentage != 66.67 {
		t.Fatalf("expected 66.67, got %v", result.Score.Percentage)
	}

	review, err := sessions.Results(ctx, result.Score.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(review.DetailedResults) != 2 || !review.DetailedResults[0].IsCorrect || review.DetailedResults[1].IsCorrect {
		t.Fatalf("unexpected review %+v", review.DetailedResults)
	}
	if review.Score.QuizTitle != "Algebra Basics" {
		t.Fatalf("expected quiz title on score view, got %+v", review.Score)
	}

	// Raw-SQL stats path over pgxpool.
	stats, err := catalog.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalUsers != 1 || stats.TotalSubjects != 1 || stats.TotalQuizzes != 1 || stats.TotalAttempts != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if len(stats.RecentScores) != 1 || stats.RecentScores[0].TotalScored != 2 {
		t.Fatalf("unexpected recent scores %+v", stats.RecentScores)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
