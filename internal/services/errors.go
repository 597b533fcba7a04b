package services

import "errors"

// Sentinel errors mapped to HTTP status codes by the handlers.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrHubNotFound      = errors.New("hub not found")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")

	// ErrNoQuestions means a live quiz has no assigned questions. This is a
	// data-integrity condition (missing setup), surfaced as not-found rather
	// than internal.
	ErrNoQuestions = errors.New("no questions available for quiz")

	ErrQuizNotLive      = errors.New("quiz is not live")
	ErrAlreadyCompleted = errors.New("quiz already completed by user")
	ErrForbidden        = errors.New("insufficient role permissions")
)

// IsNotFound reports whether err maps to a 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrHubNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrNoQuestions)
}
