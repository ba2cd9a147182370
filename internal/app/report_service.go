package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

var (
	userExportHeader        = []string{"id", "full_name", "email", "student_code", "lecture_section", "tutorial_section", "created_at"}
	interactionExportHeader = []string{"user_id", "email", "question_id", "success", "timestamp"}
)

// ReportService dumps the persisted tables as CSV.
type ReportService struct {
	users        UserRepository
	interactions InteractionRepository
}

func NewReportService(users UserRepository, interactions InteractionRepository) *ReportService {
	return &ReportService{users: users, interactions: interactions}
}

// UsersCSV writes every user, newest first. Password hashes are never exported.
func (s *ReportService) UsersCSV(ctx context.Context, w io.Writer) error {
	users, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(userExportHeader); err != nil {
		return err
	}
	for _, u := range users {
		if err := cw.Write([]string{
			strconv.FormatInt(u.ID, 10),
			u.FullName,
			u.Email,
			u.StudentCode,
			u.LectureSection,
			u.TutorialSection,
			u.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// InteractionsCSV writes every interaction with the user's email, newest first.
func (s *ReportService) InteractionsCSV(ctx context.Context, w io.Writer) error {
	records, err := s.interactions.List(ctx)
	if err != nil {
		return fmt.Errorf("list interactions: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(interactionExportHeader); err != nil {
		return err
	}
	for _, r := range records {
		success := "0"
		if r.Success {
			success = "1"
		}
		if err := cw.Write([]string{
			strconv.FormatInt(r.UserID, 10),
			r.Email,
			strconv.Itoa(r.QuestionID),
			success,
			r.Timestamp.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
