package postgres

import (
	"context"
	"fmt"

	"adaptive-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// InteractionRepository appends answers to the interactions table.
type InteractionRepository struct {
	pool *pgxpool.Pool
}

func NewInteractionRepository(pool *pgxpool.Pool) *InteractionRepository {
	return &InteractionRepository{pool: pool}
}

func (r *InteractionRepository) Append(ctx context.Context, i domain.Interaction) (domain.Interaction, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO interactions (user_id, question_id, success, ts) VALUES ($1, $2, $3, $4) RETURNING id`,
		i.UserID, i.QuestionID, i.Success, i.Timestamp,
	).Scan(&i.ID)
	if err != nil {
		return domain.Interaction{}, fmt.Errorf("insert interaction: %w", err)
	}
	return i, nil
}

func (r *InteractionRepository) SeenQuestionIDs(ctx context.Context, userID int64) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT question_id FROM interactions WHERE user_id=$1`, userID)
	if err != nil {
		return nil, fmt.Errorf("seen questions: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *InteractionRepository) Recent(ctx context.Context, userID int64, limit int) ([]domain.Interaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, question_id, success, ts FROM interactions
		 WHERE user_id=$1 ORDER BY ts DESC, id DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent interactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Interaction
	for rows.Next() {
		var i domain.Interaction
		if err := rows.Scan(&i.ID, &i.UserID, &i.QuestionID, &i.Success, &i.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *InteractionRepository) List(ctx context.Context) ([]domain.InteractionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT i.id, i.user_id, i.question_id, i.success, i.ts, u.email
		 FROM interactions i JOIN users u ON u.id = i.user_id
		 ORDER BY i.ts DESC, i.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var out []domain.InteractionRecord
	for rows.Next() {
		var rec domain.InteractionRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.QuestionID, &rec.Success, &rec.Timestamp, &rec.Email); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
