// Package audit mirrors registrations and interactions into append-only CSV
// files next to the database, for staff who read the data in a spreadsheet.
package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"adaptive-quiz-service/internal/domain"
)

const (
	usersFile        = "users.csv"
	interactionsFile = "interactions.csv"
)

var (
	usersHeader        = []string{"id", "full_name", "email", "student_code", "lecture_section", "tutorial_section", "created_at"}
	interactionsHeader = []string{"timestamp", "user_id", "email", "question_id", "success"}
)

// FileLog appends one CSV row per event. It implements app.Auditor.
type FileLog struct {
	dir string
	mu  sync.Mutex
}

// NewFileLog creates dir when missing.
func NewFileLog(dir string) (*FileLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	return &FileLog{dir: dir}, nil
}

func (l *FileLog) UserRegistered(u domain.User) error {
	return l.append(usersFile, usersHeader, []string{
		strconv.FormatInt(u.ID, 10),
		u.FullName,
		u.Email,
		u.StudentCode,
		u.LectureSection,
		u.TutorialSection,
		u.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (l *FileLog) InteractionRecorded(r domain.InteractionRecord) error {
	success := "0"
	if r.Success {
		success = "1"
	}
	return l.append(interactionsFile, interactionsHeader, []string{
		r.Timestamp.UTC().Format(time.RFC3339),
		strconv.FormatInt(r.UserID, 10),
		r.Email,
		strconv.Itoa(r.QuestionID),
		success,
	})
}

func (l *FileLog) append(name string, header, row []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(l.dir, name)
	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
