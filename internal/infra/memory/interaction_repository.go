package memory

import (
	"context"
	"sort"
	"sync"

	"adaptive-quiz-service/internal/domain"
)

// InteractionRepository is an append-only in-memory log of answers.
type InteractionRepository struct {
	users *UserRepository

	mu     sync.RWMutex
	nextID int64
	rows   []domain.Interaction
}

// NewInteractionRepository joins emails from users when listing.
func NewInteractionRepository(users *UserRepository) *InteractionRepository {
	return &InteractionRepository{users: users}
}

func (r *InteractionRepository) Append(_ context.Context, interaction domain.Interaction) (domain.Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	interaction.ID = r.nextID
	r.rows = append(r.rows, interaction)
	return interaction, nil
}

func (r *InteractionRepository) SeenQuestionIDs(_ context.Context, userID int64) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[int]struct{})
	ids := []int{}
	for _, row := range r.rows {
		if row.UserID != userID {
			continue
		}
		if _, ok := seen[row.QuestionID]; !ok {
			seen[row.QuestionID] = struct{}{}
			ids = append(ids, row.QuestionID)
		}
	}
	return ids, nil
}

func (r *InteractionRepository) Recent(_ context.Context, userID int64, limit int) ([]domain.Interaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Interaction
	for i := len(r.rows) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if r.rows[i].UserID == userID {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func (r *InteractionRepository) List(_ context.Context) ([]domain.InteractionRecord, error) {
	r.mu.RLock()
	rows := make([]domain.Interaction, len(r.rows))
	copy(rows, r.rows)
	r.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })
	out := make([]domain.InteractionRecord, 0, len(rows))
	for _, row := range rows {
		rec := domain.InteractionRecord{Interaction: row}
		if r.users != nil {
			rec.Email = r.users.email(row.UserID)
		}
		out = append(out, rec)
	}
	return out, nil
}
