// Package http exposes the REST surface: /api/auth, /api/admin,
// /api/user and /api/quiz.
package http

import (
	"net/http"

	"campus-quiz-service/internal/app"
	"campus-quiz-service/internal/domain"

	"github.com/gorilla/mux"
)

// API bundles the services the handlers dispatch to.
type API struct {
	Auth      *app.AuthService
	Catalog   *app.CatalogService
	Sessions  *app.QuizSessionService
	Dashboard *app.DashboardService
	Tokens    *app.TokenManager
}

// NewRouter wires all routes. Role enforcement is declarative: the whole
// /api/admin subtree sits behind the admin-role middleware.
func NewRouter(api *API) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	root := r.PathPrefix("/api").Subrouter()
	authed := Authenticate(api.Tokens)

	auth := root.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", api.handleRegister).Methods(http.MethodPost)
	auth.HandleFunc("/login", api.handleLogin).Methods(http.MethodPost)
	auth.Handle("/profile", authed(http.HandlerFunc(api.handleProfile))).Methods(http.MethodGet)

	admin := root.PathPrefix("/admin").Subrouter()
	admin.Use(authed, RequireRole(domain.RoleAdmin))
	admin.HandleFunc("/subjects", api.handleListSubjects).Methods(http.MethodGet)
	admin.HandleFunc("/subjects", api.handleCreateSubject).Methods(http.MethodPost)
	admin.HandleFunc("/subjects/{id}", api.handleUpdateSubject).Methods(http.MethodPut)
	admin.HandleFunc("/subjects/{id}", api.handleDeleteSubject).Methods(http.MethodDelete)
	admin.HandleFunc("/subjects/{id}/chapters", api.handleListSubjectChapters).Methods(http.MethodGet)
	admin.HandleFunc("/subjects/{id}/chapters", api.handleCreateChapter).Methods(http.MethodPost)
	admin.HandleFunc("/chapters", api.handleListChapters).Methods(http.MethodGet)
	admin.HandleFunc("/chapters/{id}", api.handleUpdateChapter).Methods(http.MethodPut)
	admin.HandleFunc("/chapters/{id}", api.handleDeleteChapter).Methods(http.MethodDelete)
	admin.HandleFunc("/chapters/{id}/quizzes", api.handleCreateQuiz).Methods(http.MethodPost)
	admin.HandleFunc("/quizzes", api.handleListQuizzes).Methods(http.MethodGet)
	admin.HandleFunc("/quizzes/{id}", api.handleUpdateQuiz).Methods(http.MethodPut)
	admin.HandleFunc("/quizzes/{id}", api.handleDeleteQuiz).Methods(http.MethodDelete)
	admin.HandleFunc("/quizzes/{id}/questions", api.handleListQuestions).Methods(http.MethodGet)
	admin.HandleFunc("/quizzes/{id}/questions", api.handleCreateQuestion).Methods(http.MethodPost)
	admin.HandleFunc("/questions/{id}", api.handleUpdateQuestion).Methods(http.MethodPut)
	admin.HandleFunc("/questions/{id}", api.handleDeleteQuestion).Methods(http.MethodDelete)
	admin.HandleFunc("/dashboard/stats", api.handleDashboardStats).Methods(http.MethodGet)

	quiz := root.PathPrefix("/quiz").Subrouter()
	quiz.Use(authed)
	quiz.HandleFunc("/{id}/start", api.handleStartQuiz).Methods(http.MethodGet)
	quiz.HandleFunc("/{id}/submit", api.handleSubmitQuiz).Methods(http.MethodPost)
	quiz.HandleFunc("/results/{score_id}", api.handleQuizResults).Methods(http.MethodGet)

	user := root.PathPrefix("/user").Subrouter()
	user.Use(authed)
	user.HandleFunc("/dashboard", api.handleUserDashboard).Methods(http.MethodGet)
	user.HandleFunc("/subjects", api.handleUserSubjects).Methods(http.MethodGet)
	user.HandleFunc("/chapters", api.handleUserChapters).Methods(http.MethodGet)
	user.HandleFunc("/quizzes", api.handleUserQuizzes).Methods(http.MethodGet)
	user.HandleFunc("/scores", api.handleUserScores).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondMessage(w, http.StatusNotFound, "not found")
	})
	return r
}
