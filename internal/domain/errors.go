package domain

import "errors"

var (
	// ErrUnauthenticated is returned when a request carries no valid session.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrSessionNotFound is returned by session stores for unknown or expired tokens.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidInput wraps malformed client input such as missing fields or a bad week.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailTaken signals a registration conflict on the unique email.
	ErrEmailTaken = errors.New("a user with that email already exists")
	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound indicates an unknown user id or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrWeekNotSelected indicates a flow step that needs a selected week.
	ErrWeekNotSelected = errors.New("select a week first")
	// ErrQuizNotStarted indicates a flow step that needs a started quiz run.
	ErrQuizNotStarted = errors.New("start a quiz first")
	// ErrNoActiveQuestion indicates there is no question waiting for an answer.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrNoCandidates means no question matches the selection. It is a terminal outcome, not a failure.
	ErrNoCandidates = errors.New("no questions available for the selected parameters")
	// ErrQuestionNotFound indicates a question id missing from the bank.
	ErrQuestionNotFound = errors.New("question not found")
)
