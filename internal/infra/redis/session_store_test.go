package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute)
	session := app.NewSession("tok-1", domain.User{ID: 7, Email: "ana@uniandes.edu.co"}, time.Now().UTC())

	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists("quiz:session:tok-1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("quiz:session:tok-1"); ttl != time.Minute {
		t.Fatalf("expected ttl of a minute, got %v", ttl)
	}

	id := 4
	session.Week = 5
	session.Stage = app.StageQuestionActive
	session.Current = &id
	session.AnsweredOK = []int{1, 2}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != 7 || got.Week != 5 || got.Current == nil || *got.Current != 4 || len(got.AnsweredOK) != 2 {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := store.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("quiz:session:tok-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, err := store.Get(ctx, "tok-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute)
	session := app.NewSession("tok-2", domain.User{ID: 1}, time.Now().UTC())
	_ = store.Create(ctx, session)

	mr.FastForward(2 * time.Minute)

	if err := store.Save(ctx, session); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected save on expired session to fail, got %v", err)
	}
	if mr.Exists("quiz:session:tok-2") {
		t.Fatalf("save must not resurrect an expired session")
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
