package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"adaptive-quiz-service/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultEmailDomain is the institutional domain accepted at registration.
const DefaultEmailDomain = "uniandes.edu.co"

// AuthService registers users and manages login sessions.
type AuthService struct {
	users       UserRepository
	sessions    SessionRepository
	audit       Auditor
	emailDomain string
	cost        int
	now         func() time.Time
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithEmailDomain restricts registration to addresses under domain.
func WithEmailDomain(domain string) AuthOption {
	return func(s *AuthService) {
		if domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@"); domain != "" {
			s.emailDomain = domain
		}
	}
}

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) { s.cost = cost }
}

func NewAuthService(users UserRepository, sessions SessionRepository, audit Auditor, opts ...AuthOption) *AuthService {
	if audit == nil {
		audit = nopAuditor{}
	}
	s := &AuthService{
		users:       users,
		sessions:    sessions,
		audit:       audit,
		emailDomain: DefaultEmailDomain,
		cost:        bcrypt.DefaultCost,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account. Duplicate emails surface as domain.ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	user := domain.User{
		FullName:        strings.TrimSpace(reg.FullName),
		Email:           strings.ToLower(strings.TrimSpace(reg.Email)),
		StudentCode:     strings.TrimSpace(reg.StudentCode),
		LectureSection:  strings.TrimSpace(reg.LectureSection),
		TutorialSection: strings.TrimSpace(reg.TutorialSection),
		CreatedAt:       s.now().UTC(),
	}
	password := strings.TrimSpace(reg.Password)

	if user.FullName == "" || user.Email == "" || user.StudentCode == "" ||
		user.LectureSection == "" || user.TutorialSection == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: missing required fields", domain.ErrInvalidInput)
	}
	if !strings.HasSuffix(user.Email, "@"+s.emailDomain) {
		return domain.User{}, fmt.Errorf("%w: email must end with @%s", domain.ErrInvalidInput, s.emailDomain)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	user.PasswordHash = string(hash)

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.audit.UserRegistered(created); err != nil {
		log.Printf("audit user %d: %v", created.ID, err)
	}
	return created, nil
}

// Login checks credentials and opens a fresh session with an empty quiz flow.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrUserNotFound) {
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(strings.TrimSpace(password))) != nil {
		return Session{}, domain.ErrInvalidCredentials
	}

	session := NewSession(uuid.NewString(), user, s.now().UTC())
	if err := s.sessions.Create(ctx, session); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Logout drops the session. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, domain.ErrUnauthenticated
	}
	session, err := s.sessions.Get(ctx, token)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return Session{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}
