package memory

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"adaptive-quiz-service/internal/domain"
)

func TestUserRepositoryUniqueEmail(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository()

	first, err := users.Create(ctx, domain.User{Email: "ana@uniandes.edu.co"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID != 1 {
		t.Fatalf("expected id 1, got %d", first.ID)
	}
	if _, err := users.Create(ctx, domain.User{Email: "ana@uniandes.edu.co"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := users.ByEmail(ctx, "ana@uniandes.edu.co")
	if err != nil || got.ID != first.ID {
		t.Fatalf("by email: %+v %v", got, err)
	}
	if _, err := users.ByID(ctx, 99); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestInteractionRepositoryQueries(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository()
	ana, _ := users.Create(ctx, domain.User{Email: "ana@uniandes.edu.co"})
	repo := NewInteractionRepository(users)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, qid := range []int{3, 5, 3, 8} {
		if _, err := repo.Append(ctx, domain.Interaction{UserID: ana.ID, QuestionID: qid, Success: i%2 == 0, Timestamp: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	_, _ = repo.Append(ctx, domain.Interaction{UserID: 99, QuestionID: 11, Timestamp: base})

	seen, _ := repo.SeenQuestionIDs(ctx, ana.ID)
	sort.Ints(seen)
	if len(seen) != 3 || seen[0] != 3 || seen[1] != 5 || seen[2] != 8 {
		t.Fatalf("unexpected seen ids %v", seen)
	}

	recent, _ := repo.Recent(ctx, ana.ID, 2)
	if len(recent) != 2 || recent[0].QuestionID != 8 || recent[1].QuestionID != 3 {
		t.Fatalf("expected newest first, got %+v", recent)
	}

	all, _ := repo.List(ctx)
	if len(all) != 5 || all[0].UserID != 99 || all[1].Email != "ana@uniandes.edu.co" {
		t.Fatalf("unexpected list %+v", all)
	}
}
