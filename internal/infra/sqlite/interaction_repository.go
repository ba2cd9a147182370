package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"adaptive-quiz-service/internal/domain"
)

type InteractionRepository struct {
	db *sql.DB
}

func (r *InteractionRepository) Append(ctx context.Context, i domain.Interaction) (domain.Interaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO interactions (user_id, question_id, success, ts) VALUES (?, ?, ?, ?)`,
		i.UserID, i.QuestionID, i.Success, formatTime(i.Timestamp),
	)
	if err != nil {
		return domain.Interaction{}, fmt.Errorf("insert interaction: %w", err)
	}
	if i.ID, err = res.LastInsertId(); err != nil {
		return domain.Interaction{}, fmt.Errorf("insert interaction: %w", err)
	}
	return i, nil
}

func (r *InteractionRepository) SeenQuestionIDs(ctx context.Context, userID int64) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT question_id FROM interactions WHERE user_id = ?`, userID)
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
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, question_id, success, ts FROM interactions
		 WHERE user_id = ? ORDER BY ts DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent interactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Interaction
	for rows.Next() {
		var (
			i  domain.Interaction
			ts string
		)
		if err := rows.Scan(&i.ID, &i.UserID, &i.QuestionID, &i.Success, &ts); err != nil {
			return nil, err
		}
		if i.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("interaction %d ts: %w", i.ID, err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *InteractionRepository) List(ctx context.Context) ([]domain.InteractionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
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
		var (
			rec domain.InteractionRecord
			ts  string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.QuestionID, &rec.Success, &ts, &rec.Email); err != nil {
			return nil, err
		}
		if rec.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("interaction %d ts: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
