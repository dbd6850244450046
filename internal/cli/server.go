package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-quiz-service/internal/app"
	"campus-quiz-service/internal/config"
	"campus-quiz-service/internal/infra/memory"
	"campus-quiz-service/internal/infra/postgres"
	rediscache "campus-quiz-service/internal/infra/redis"
	transport "campus-quiz-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	subjectsTTL := config.TTLDuration(cfg.Cache.SubjectsTTL, 5*time.Minute)
	answerKeyTTL := config.TTLDuration(cfg.Cache.AnswerKeyTTL, 10*time.Minute)

	var (
		users     app.UserRepository
		subjects  app.SubjectRepository
		chapters  app.ChapterRepository
		quizzes   app.QuizRepository
		questions app.QuestionRepository
		scores    app.ScoreRepository
		stats     app.StatsRepository
	)

	var subjectCache app.SubjectListCache
	var answerKeys app.AnswerKeyRepository

	if cfg.Postgres.URL != "" {
		db := postgres.Open(cfg.Postgres.URL)
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		questionRepo := postgres.NewQuestionRepository(db)
		users = postgres.NewUserRepository(db)
		subjects = postgres.NewSubjectRepository(db)
		chapters = postgres.NewChapterRepository(db)
		quizzes = postgres.NewQuizRepository(db)
		questions = questionRepo
		scores = postgres.NewScoreRepository(db)
		stats = postgres.NewStatsRepository(pool)

		if redisClient != nil {
			subjectCache = rediscache.NewSubjectListCache(redisClient, subjectsTTL)
			answerKeys = rediscache.NewAnswerKeyCache(redisClient, questionRepo, answerKeyTTL)
		} else {
			subjectCache = memory.NewSubjectListCache(subjectsTTL)
			answerKeys = memory.NewAnswerKeyCache(questionRepo, answerKeyTTL)
		}
	} else {
		// No database configured: run everything off the in-memory store.
		store := memory.NewStore()
		users = store
		subjects = store.Subjects()
		chapters = store.Chapters()
		quizzes = store.Quizzes()
		questions = store.Questions()
		scores = store.Scores()
		stats = store.Stats()

		if redisClient != nil {
			subjectCache = rediscache.NewSubjectListCache(redisClient, subjectsTTL)
			answerKeys = rediscache.NewAnswerKeyCache(redisClient, store, answerKeyTTL)
		} else {
			subjectCache = memory.NewSubjectListCache(subjectsTTL)
			answerKeys = memory.NewAnswerKeyCache(store, answerKeyTTL)
		}
		log.Printf("postgres url not set, using in-memory storage")
	}

	tokens := app.NewTokenManager(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
	auth := app.NewAuthService(users, tokens)
	catalog := app.NewCatalogService(subjects, chapters, quizzes, questions, stats, subjectCache, answerKeys)
	sessions := app.NewQuizSessionService(quizzes, questions, scores, answerKeys)
	dashboard := app.NewDashboardService(scores, quizzes)

	adminPassword := cfg.Auth.AdminPassword
	if adminPassword == "" {
		adminPassword = "admin123"
	}
	if err := auth.EnsureAdmin(ctx, adminPassword); err != nil {
		return err
	}

	router := transport.NewRouter(&transport.API{
		Auth:      auth,
		Catalog:   catalog,
		Sessions:  sessions,
		Dashboard: dashboard,
		Tokens:    tokens,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("starting quiz backend on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
