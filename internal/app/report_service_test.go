package app_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportExports(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	interactions := memory.NewInteractionRepository(users)
	created := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)

	ana, err := users.Create(ctx, domain.User{FullName: "Ana", Email: "ana@uniandes.edu.co", StudentCode: "1", LectureSection: "1", TutorialSection: "2", PasswordHash: "hash", CreatedAt: created})
	require.NoError(t, err)
	_, err = users.Create(ctx, domain.User{FullName: "Luis", Email: "luis@uniandes.edu.co", StudentCode: "2", LectureSection: "1", TutorialSection: "2", PasswordHash: "hash", CreatedAt: created.Add(time.Hour)})
	require.NoError(t, err)

	_, _ = interactions.Append(ctx, domain.Interaction{UserID: ana.ID, QuestionID: 3, Success: true, Timestamp: created})
	_, _ = interactions.Append(ctx, domain.Interaction{UserID: ana.ID, QuestionID: 4, Timestamp: created.Add(time.Minute)})

	reports := app.NewReportService(users, interactions)

	var buf bytes.Buffer
	require.NoError(t, reports.UsersCSV(ctx, &buf))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "full_name", "email", "student_code", "lecture_section", "tutorial_section", "created_at"}, rows[0])
	assert.Equal(t, "luis@uniandes.edu.co", rows[1][2], "newest user first")
	assert.Equal(t, "2024-02-01T09:30:00Z", rows[2][6])
	assert.NotContains(t, buf.String(), "hash")

	buf.Reset()
	require.NoError(t, reports.InteractionsCSV(ctx, &buf))
	rows, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"user_id", "email", "question_id", "success", "timestamp"}, rows[0])
	assert.Equal(t, []string{"1", "ana@uniandes.edu.co", "4", "0", "2024-02-01T09:31:00Z"}, rows[1])
	assert.Equal(t, "1", rows[2][3])
}
