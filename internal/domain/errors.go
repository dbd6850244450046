package domain

import "errors"

var (
	// ErrUserNotFound indicates a user id or username with no matching row.
	ErrUserNotFound = errors.New("user not found")
	// ErrSubjectNotFound indicates an unknown subject id.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrChapterNotFound indicates an unknown chapter id.
	ErrChapterNotFound = errors.New("chapter not found")
	// ErrQuizNotFound indicates an unknown quiz id.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates an unknown question id.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrScoreNotFound indicates an unknown score id.
	ErrScoreNotFound = errors.New("score not found")

	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials is returned on login with a bad username/password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for a missing, malformed or expired token.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrForbidden is returned when the caller's role lacks access.
	ErrForbidden = errors.New("admin access required")
	// ErrValidation wraps failures of resource-specific field rules.
	ErrValidation = errors.New("validation failed")
)
