package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps login sessions in Redis so any instance can serve a
// request. Each session is a JSON blob under quiz:session:{token}; every
// write refreshes the TTL, so idle sessions expire on their own.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, session app.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, s.key(session.Token), payload, s.ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, token string) (app.Session, error) {
	payload, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return app.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return app.Session{}, err
	}
	var session app.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return app.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

// Save overwrites an existing session only; a session that expired in the
// meantime is reported as domain.ErrSessionNotFound.
func (s *SessionStore) Save(ctx context.Context, session app.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := s.client.SetXX(ctx, s.key(session.Token), payload, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

func (s *SessionStore) key(token string) string {
	return "quiz:session:" + token
}
