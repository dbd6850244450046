package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// Roles stored on User.Role and embedded in identity tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account that can log in. PasswordHash is a bcrypt hash and is
// never serialized; UserView is the public shape.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID            int64      `bun:"id,pk,autoincrement"`
	Username      string     `bun:"username,notnull,unique"`
	PasswordHash  string     `bun:"password_hash,notnull"`
	FullName      string     `bun:"full_name,notnull"`
	Qualification string     `bun:"qualification"`
	DOB           *time.Time `bun:"dob"`
	Role          string     `bun:"role,notnull,default:'user'"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	LastLogin     *time.Time `bun:"last_login"`

	Scores []*Score `bun:"rel:has-many,join:id=user_id"`
}

// Subject is the top of the content hierarchy. Deleting a subject only
// clears IsActive; its chapters stay attached.
type Subject struct {
	bun.BaseModel `bun:"table:subjects,alias:s"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description"`
	IsActive    bool      `bun:"is_active,notnull,default:true"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Chapters []*Chapter `bun:"rel:has-many,join:id=subject_id"`
}

// Chapter belongs to exactly one subject.
type Chapter struct {
	bun.BaseModel `bun:"table:chapters,alias:c"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description"`
	SubjectID   int64     `bun:"subject_id,notnull"`
	IsActive    bool      `bun:"is_active,notnull,default:true"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Subject *Subject `bun:"rel:belongs-to,join:subject_id=id"`
	Quizzes []*Quiz  `bun:"rel:has-many,join:id=chapter_id"`
}

// Quiz belongs to exactly one chapter. TotalMarks is maintained
// transactionally alongside question inserts/updates/deletes and always
// equals the sum of marks of the quiz's current questions.
type Quiz struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID           int64     `bun:"id,pk,autoincrement"`
	ChapterID    int64     `bun:"chapter_id,notnull"`
	Title        string    `bun:"title,notnull"`
	Description  string    `bun:"description"`
	DateOfQuiz   time.Time `bun:"date_of_quiz,notnull"`
	TimeDuration int       `bun:"time_duration,notnull"` // minutes
	TotalMarks   int       `bun:"total_marks,notnull,default:0"`
	IsActive     bool      `bun:"is_active,notnull,default:true"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Chapter   *Chapter    `bun:"rel:belongs-to,join:chapter_id=id"`
	Questions []*Question `bun:"rel:has-many,join:id=quiz_id"`
	Scores    []*Score    `bun:"rel:has-many,join:id=quiz_id"`
}

// Question is a four-option MCQ. CorrectOption is 1-4. Questions are the
// only hard-deleted catalog resource.
type Question struct {
	bun.BaseModel `bun:"table:questions,alias:qn"`

	ID            int64     `bun:"id,pk,autoincrement"`
	QuizID        int64     `bun:"quiz_id,notnull"`
	Statement     string    `bun:"question_statement,notnull"`
	Option1       string    `bun:"option1,notnull"`
	Option2       string    `bun:"option2,notnull"`
	Option3       string    `bun:"option3,notnull"`
	Option4       string    `bun:"option4,notnull"`
	CorrectOption int       `bun:"correct_option,notnull"`
	Marks         int       `bun:"marks,notnull,default:1"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Score records one completed attempt. TotalMarks is a snapshot of the
// quiz's total at submission time; the row is never mutated afterwards.
// Answers maps question id (as a string) to the submitted option.
type Score struct {
	bun.BaseModel `bun:"table:scores,alias:sc"`

	ID          int64             `bun:"id,pk,autoincrement"`
	QuizID      int64             `bun:"quiz_id,notnull"`
	UserID      int64             `bun:"user_id,notnull"`
	TotalScored int               `bun:"total_scored,notnull"`
	TotalMarks  int               `bun:"total_marks,notnull"`
	TimeTaken   int               `bun:"time_taken"` // minutes
	AttemptedAt time.Time         `bun:"timestamp_of_attempt,nullzero,notnull,default:current_timestamp"`
	Answers     map[string]string `bun:"answers,type:jsonb"`

	Quiz *Quiz `bun:"rel:belongs-to,join:quiz_id=id"`
	User *User `bun:"rel:belongs-to,join:user_id=id"`
}

// AnswerKey is the scoring view of a quiz: correct option and marks per
// question id. It is the unit the answer-key cache stores.
type AnswerKey struct {
	QuizID  int64
	Correct map[int64]int
	Marks   map[int64]int
}
