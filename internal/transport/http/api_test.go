package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus-quiz-service/internal/app"
	"campus-quiz-service/internal/domain"
	"campus-quiz-service/internal/infra/memory"
	transport "campus-quiz-service/internal/transport/http"

	"github.com/gorilla/mux"
)

type testServer struct {
	router *mux.Router
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	tokens := app.NewTokenManager("test-secret", time.Hour)
	auth := app.NewAuthService(store, tokens)
	answerKeys := memory.NewAnswerKeyCache(store, time.Minute)
	catalog := app.NewCatalogService(
		store.Subjects(), store.Chapters(), store.Quizzes(), store.Questions(),
		store.Stats(), memory.NewSubjectListCache(time.Minute), answerKeys,
	)
	sessions := app.NewQuizSessionService(store.Quizzes(), store.Questions(), store.Scores(), answerKeys)
	dashboard := app.NewDashboardService(store.Scores(), store.Quizzes())

	if err := auth.EnsureAdmin(context.Background(), "admin123"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	router := transport.NewRouter(&transport.API{
		Auth:      auth,
		Catalog:   catalog,
		Sessions:  sessions,
		Dashboard: dashboard,
		Tokens:    tokens,
	})
	return &testServer{router: router}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %s: %v", rec.Body.String(), err)
	}
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decodeInto(t, rec, &resp)
	return resp.AccessToken
}

func TestRegisterAndLoginFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":  "alice",
		"password":  "hunter2",
		"full_name": "Alice Smith",
		"dob":       "2000-05-15",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
	}

	// Duplicate username conflicts.
	rec = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":  "alice",
		"password":  "other",
		"full_name": "Other",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status %d", rec.Code)
	}

	// Missing fields are a 400 before any service call.
	rec = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "bob"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("incomplete register: status %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", rec.Code)
	}

	token := s.login(t, "alice", "hunter2")
	rec = s.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: status %d body %s", rec.Code, rec.Body.String())
	}
	var profile domain.UserView
	decodeInto(t, rec, &profile)
	if profile.Username != "alice" || profile.Role != domain.RoleUser {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	s := newTestServer(t)

	// No token.
	rec := s.do(t, http.MethodGet, "/api/admin/subjects", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", rec.Code)
	}

	// Regular user token.
	rec = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "pw", "full_name": "Alice",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d", rec.Code)
	}
	userToken := s.login(t, "alice", "pw")
	rec = s.do(t, http.MethodGet, "/api/admin/subjects", userToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user token on admin route: status %d", rec.Code)
	}

	// Admin token.
	adminToken := s.login(t, "admin", "admin123")
	rec = s.do(t, http.MethodGet, "/api/admin/subjects", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin token: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestQuizLifecycle(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, "admin", "admin123")

	var subject domain.SubjectView
	rec := s.do(t, http.MethodPost, "/api/admin/subjects", adminToken, map[string]string{
		"name": "Math", "description": "Numbers",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create subject: status %d body %s", rec.Code, rec.Body.String())
	}
	decodeInto(t, rec, &subject)

	var chapter domain.ChapterView
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/subjects/%d/chapters", subject.ID), adminToken, map[string]string{
		"name": "Algebra",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create chapter: status %d body %s", rec.Code, rec.Body.String())
	}
	decodeInto(t, rec, &chapter)
	if chapter.SubjectName != "Math" {
		t.Fatalf("expected subject_name in chapter view, got %+v", chapter)
	}

	var quiz domain.QuizView
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/chapters/%d/quizzes", chapter.ID), adminToken, map[string]interface{}{
		"title":         "Algebra Basics",
		"date_of_quiz":  "2025-06-01T10:00:00Z",
		"time_duration": 30,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create quiz: status %d body %s", rec.Code, rec.Body.String())
	}
	decodeInto(t, rec, &quiz)

	var question domain.QuestionView
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/quizzes/%d/questions", quiz.ID), adminToken, map[string]interface{}{
		"question_statement": "2+2?",
		"option1":            "3",
		"option2":            "4",
		"option3":            "5",
		"option4":            "6",
		"correct_option":     2,
		"marks":              2,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create question: status %d body %s", rec.Code, rec.Body.String())
	}
	decodeInto(t, rec, &question)
	if question.CorrectOption == nil || *question.CorrectOption != 2 {
		t.Fatalf("admin view must reveal the answer, got %+v", question)
	}

	// A player signs up and takes the quiz.
	rec = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "pw", "full_name": "Alice",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d", rec.Code)
	}
	userToken := s.login(t, "alice", "pw")

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/quiz/%d/start", quiz.ID), userToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start quiz: status %d body %s", rec.Code, rec.Body.String())
	}
	var start domain.QuizStart
	decodeInto(t, rec, &start)
	if len(start.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(start.Questions))
	}
	if start.Questions[0].CorrectOption != nil {
		t.Fatalf("answer leaked on start: %+v", start.Questions[0])
	}

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/quiz/%d/submit", quiz.ID), userToken, map[string]interface{}{
		"answers":    map[string]string{fmt.Sprint(question.ID): "2"},
		"time_taken": 10,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: status %d body %s", rec.Code, rec.Body.String())
	}
	var result domain.SubmitResult
	decodeInto(t, rec, &result)
	if result.Score.TotalScored != 2 || result.Score.TotalMarks != 2 {
		t.Fatalf("expected 2/2, got %d/%d", result.Score.TotalScored, result.Score.TotalMarks)
	}
	if result.Score.Percentage != 100 {
		t.Fatalf("expected 100%%, got %v", result.Score.Percentage)
	}

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/quiz/results/%d", result.Score.ID), userToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("results: status %d body %s", rec.Code, rec.Body.String())
	}
	var review domain.QuizResults
	decodeInto(t, rec, &review)
	if len(review.DetailedResults) != 1 || !review.DetailedResults[0].IsCorrect {
		t.Fatalf("unexpected review %+v", review.DetailedResults)
	}

	rec = s.do(t, http.MethodGet, "/api/user/dashboard", userToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status %d body %s", rec.Code, rec.Body.String())
	}
	var dashboard domain.UserDashboard
	decodeInto(t, rec, &dashboard)
	if dashboard.TotalAttempts != 1 || dashboard.AverageScore != 100 {
		t.Fatalf("unexpected dashboard %+v", dashboard)
	}
}

func TestNotFoundAndBadIDs(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, "admin", "admin123")

	rec := s.do(t, http.MethodPut, "/api/admin/subjects/999", adminToken, map[string]string{"name": "X"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown subject: status %d", rec.Code)
	}

	rec = s.do(t, http.MethodPut, "/api/admin/subjects/abc", adminToken, map[string]string{"name": "X"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status %d", rec.Code)
	}

	userRec := s.do(t, http.MethodGet, "/api/quiz/999/start", adminToken, nil)
	if userRec.Code != http.StatusNotFound {
		t.Fatalf("unknown quiz: status %d", userRec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route: status %d", rec.Code)
	}
}
