package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"adaptive-quiz-service/internal/domain"
)

const userColumns = `id, full_name, email, student_code, lecture_section, tutorial_section, password_hash, created_at`

type UserRepository struct {
	db *sql.DB
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (full_name, email, student_code, lecture_section, tutorial_section, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.FullName, user.Email, user.StudentCode, user.LectureSection, user.TutorialSection, user.PasswordHash, formatTime(user.CreatedAt),
	)
	if isUniqueViolation(err) {
		return domain.User{}, domain.ErrEmailTaken
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	if user.ID, err = res.LastInsertId(); err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepository) ByID(ctx context.Context, id int64) (domain.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// List returns users newest first.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) one(ctx context.Context, query string, arg interface{}) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (domain.User, error) {
	var (
		u       domain.User
		created string
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.StudentCode, &u.LectureSection, &u.TutorialSection, &u.PasswordHash, &created); err != nil {
		return domain.User{}, err
	}
	t, err := parseTime(created)
	if err != nil {
		return domain.User{}, fmt.Errorf("user %d created_at: %w", u.ID, err)
	}
	u.CreatedAt = t
	return u, nil
}
