package app

import (
	"context"

	"adaptive-quiz-service/internal/domain"
)

// SessionRepository abstracts where login sessions live (in-memory, Redis).
type SessionRepository interface {
	Create(ctx context.Context, session Session) error
	// Get returns domain.ErrSessionNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string) (Session, error)
	Save(ctx context.Context, session Session) error
	Delete(ctx context.Context, token string) error
}

// UserRepository persists accounts. Create returns domain.ErrEmailTaken when
// the unique email constraint rejects the row.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	ByEmail(ctx context.Context, email string) (domain.User, error)
	ByID(ctx context.Context, id int64) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// InteractionRepository persists answer submissions.
type InteractionRepository interface {
	Append(ctx context.Context, interaction domain.Interaction) (domain.Interaction, error)
	// SeenQuestionIDs lists every question the user has ever answered.
	SeenQuestionIDs(ctx context.Context, userID int64) ([]int, error)
	// Recent returns the user's newest interactions first.
	Recent(ctx context.Context, userID int64, limit int) ([]domain.Interaction, error)
	// List returns every interaction joined with the user email, newest first.
	List(ctx context.Context) ([]domain.InteractionRecord, error)
}

// Auditor mirrors persisted rows to an external audit trail.
type Auditor interface {
	UserRegistered(user domain.User) error
	InteractionRecorded(record domain.InteractionRecord) error
}

type nopAuditor struct{}

func (nopAuditor) UserRegistered(domain.User) error                   { return nil }
func (nopAuditor) InteractionRecorded(domain.InteractionRecord) error { return nil }
