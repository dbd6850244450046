package domain

import (
	"math"
	"time"
)

// Public JSON views. Field names match the API contract the web frontend
// already consumes, including the derived counts and names.

type UserView struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	Qualification string `json:"qualification"`
	Role          string `json:"role"`
}

type SubjectView struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ChaptersCount int    `json:"chapters_count"`
}

type ChapterView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	SubjectID    int64  `json:"subject_id"`
	SubjectName  string `json:"subject_name"`
	QuizzesCount int    `json:"quizzes_count"`
}

type QuizView struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	ChapterID      int64     `json:"chapter_id"`
	ChapterName    string    `json:"chapter_name"`
	SubjectName    string    `json:"subject_name"`
	DateOfQuiz     time.Time `json:"date_of_quiz"`
	TimeDuration   int       `json:"time_duration"`
	TotalMarks     int       `json:"total_marks"`
	QuestionsCount int       `json:"questions_count"`
}

// QuestionView withholds CorrectOption unless built with the answer
// revealed (admin listings, post-submission results).
type QuestionView struct {
	ID            int64  `json:"id"`
	QuizID        int64  `json:"quiz_id"`
	Statement     string `json:"question_statement"`
	Option1       string `json:"option1"`
	Option2       string `json:"option2"`
	Option3       string `json:"option3"`
	Option4       string `json:"option4"`
	Marks         int    `json:"marks"`
	CorrectOption *int   `json:"correct_option,omitempty"`
}

type ScoreView struct {
	ID          int64     `json:"id"`
	QuizID      int64     `json:"quiz_id"`
	QuizTitle   string    `json:"quiz_title"`
	UserID      int64     `json:"user_id"`
	TotalScored int       `json:"total_scored"`
	TotalMarks  int       `json:"total_marks"`
	Percentage  float64   `json:"percentage"`
	TimeTaken   int       `json:"time_taken"`
	AttemptedAt time.Time `json:"timestamp_of_attempt"`
}

// DashboardStats is the admin aggregate view.
type DashboardStats struct {
	TotalUsers    int         `json:"total_users"`
	TotalSubjects int         `json:"total_subjects"`
	TotalQuizzes  int         `json:"total_quizzes"`
	TotalAttempts int         `json:"total_attempts"`
	RecentScores  []ScoreView `json:"recent_scores"`
}

// UserDashboard is the per-user aggregate view.
type UserDashboard struct {
	TotalAttempts    int         `json:"total_attempts"`
	AverageScore     float64     `json:"average_score"`
	RecentAttempts   []ScoreView `json:"recent_attempts"`
	AvailableQuizzes int         `json:"available_quizzes"`
}

// QuizStart is what a client receives when opening a quiz: the quiz, its
// questions with answers withheld, and an informational server timestamp.
type QuizStart struct {
	Quiz      QuizView       `json:"quiz"`
	Questions []QuestionView `json:"questions"`
	StartTime time.Time      `json:"start_time"`
}

// SubmitResult is the submission response. CorrectAnswers discloses the
// full answer key immediately, which the frontend uses for instant review.
type SubmitResult struct {
	Score          ScoreView      `json:"score"`
	CorrectAnswers map[string]int `json:"correct_answers"`
}

// QuestionResult is one row of a results breakdown.
type QuestionResult struct {
	Question   QuestionView `json:"question"`
	UserAnswer *string      `json:"user_answer"`
	IsCorrect  bool         `json:"is_correct"`
}

// QuizResults is the full post-attempt review.
type QuizResults struct {
	Score           ScoreView        `json:"score"`
	Quiz            QuizView         `json:"quiz"`
	DetailedResults []QuestionResult `json:"detailed_results"`
}

func NewUserView(u User) UserView {
	return UserView{
		ID:            u.ID,
		Username:      u.Username,
		FullName:      u.FullName,
		Qualification: u.Qualification,
		Role:          u.Role,
	}
}

// NewSubjectView counts all attached chapters, active or not; soft-deleted
// children stay in the parent's count.
func NewSubjectView(s Subject) SubjectView {
	return SubjectView{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description,
		ChaptersCount: len(s.Chapters),
	}
}

func NewChapterView(c Chapter) ChapterView {
	v := ChapterView{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		SubjectID:    c.SubjectID,
		QuizzesCount: len(c.Quizzes),
	}
	if c.Subject != nil {
		v.SubjectName = c.Subject.Name
	}
	return v
}

func NewQuizView(q Quiz) QuizView {
	v := QuizView{
		ID:             q.ID,
		Title:          q.Title,
		Description:    q.Description,
		ChapterID:      q.ChapterID,
		DateOfQuiz:     q.DateOfQuiz,
		TimeDuration:   q.TimeDuration,
		TotalMarks:     q.TotalMarks,
		QuestionsCount: len(q.Questions),
	}
	if q.Chapter != nil {
		v.ChapterName = q.Chapter.Name
		if q.Chapter.Subject != nil {
			v.SubjectName = q.Chapter.Subject.Name
		}
	}
	return v
}

func NewQuestionView(q Question, revealAnswer bool) QuestionView {
	v := QuestionView{
		ID:        q.ID,
		QuizID:    q.QuizID,
		Statement: q.Statement,
		Option1:   q.Option1,
		Option2:   q.Option2,
		Option3:   q.Option3,
		Option4:   q.Option4,
		Marks:     q.Marks,
	}
	if revealAnswer {
		correct := q.CorrectOption
		v.CorrectOption = &correct
	}
	return v
}

func NewScoreView(s Score) ScoreView {
	v := ScoreView{
		ID:          s.ID,
		QuizID:      s.QuizID,
		UserID:      s.UserID,
		TotalScored: s.TotalScored,
		TotalMarks:  s.TotalMarks,
		Percentage:  Percentage(s.TotalScored, s.TotalMarks),
		TimeTaken:   s.TimeTaken,
		AttemptedAt: s.AttemptedAt,
	}
	if s.Quiz != nil {
		v.QuizTitle = s.Quiz.Title
	}
	return v
}

// Percentage returns scored/total as a percentage rounded to two decimals,
// and 0 when total is zero.
func Percentage(scored, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(scored)/float64(total)*100*100) / 100
}
