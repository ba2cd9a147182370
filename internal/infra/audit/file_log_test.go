package audit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"adaptive-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestFileLogWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audit")
	log, err := NewFileLog(dir)
	require.NoError(t, err)

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := domain.InteractionRecord{
		Interaction: domain.Interaction{UserID: 7, QuestionID: 12, Success: true, Timestamp: ts},
		Email:       "ana@uniandes.edu.co",
	}
	require.NoError(t, log.InteractionRecorded(rec))
	rec.Success = false
	require.NoError(t, log.InteractionRecorded(rec))

	rows := readCSV(t, filepath.Join(dir, "interactions.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, interactionsHeader, rows[0])
	assert.Equal(t, []string{"2024-03-01T10:00:00Z", "7", "ana@uniandes.edu.co", "12", "1"}, rows[1])
	assert.Equal(t, "0", rows[2][4])
}

func TestFileLogUsers(t *testing.T) {
	dir := t.TempDir()
	log, err := NewFileLog(dir)
	require.NoError(t, err)

	require.NoError(t, log.UserRegistered(domain.User{ID: 1, FullName: "Ana, P", Email: "ana@uniandes.edu.co", PasswordHash: "secret-hash"}))

	rows := readCSV(t, filepath.Join(dir, "users.csv"))
	require.Len(t, rows, 2)
	assert.Equal(t, "Ana, P", rows[1][1])
	for _, cell := range rows[1] {
		assert.NotEqual(t, "secret-hash", cell)
	}
}
