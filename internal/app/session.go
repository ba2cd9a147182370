package app

import (
	"time"

	"adaptive-quiz-service/internal/domain"
)

// Stage is the position of a session in the quiz flow.
type Stage string

const (
	StageNoWeek         Stage = "no_week"
	StageWeekSelected   Stage = "week_selected"
	StageQuestionActive Stage = "question_active"
	StageAnswered       Stage = "answered"
	StageExhausted      Stage = "exhausted"
)

// Session is the per-login quiz state. It is stored by value; stores must not
// hand out shared slices between requests.
type Session struct {
	Token      string       `json:"token"`
	UserID     int64        `json:"userId"`
	Email      string       `json:"email"`
	Stage      Stage        `json:"stage"`
	Week       int          `json:"week,omitempty"`
	Topics     string       `json:"topics,omitempty"`
	Difficulty int          `json:"difficulty,omitempty"`
	AnsweredOK []int        `json:"answeredOk,omitempty"`
	Current    *int         `json:"current,omitempty"`
	Recent     ResultWindow `json:"recent,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// NewSession starts an empty flow for user.
func NewSession(token string, user domain.User, now time.Time) Session {
	return Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		Stage:     StageNoWeek,
		CreatedAt: now,
	}
}

// Clone deep-copies the session.
func (s Session) Clone() Session {
	cp := s
	if s.AnsweredOK != nil {
		cp.AnsweredOK = append([]int(nil), s.AnsweredOK...)
	}
	if s.Recent != nil {
		cp.Recent = append(ResultWindow(nil), s.Recent...)
	}
	if s.Current != nil {
		id := *s.Current
		cp.Current = &id
	}
	return cp
}

func (s Session) runStarted() bool {
	switch s.Stage {
	case StageQuestionActive, StageAnswered, StageExhausted:
		return true
	}
	return false
}

func (s Session) excluded() map[int]struct{} {
	set := make(map[int]struct{}, len(s.AnsweredOK))
	for _, id := range s.AnsweredOK {
		set[id] = struct{}{}
	}
	return set
}

func (s *Session) markAnswered(id int) {
	for _, existing := range s.AnsweredOK {
		if existing == id {
			return
		}
	}
	s.AnsweredOK = append(s.AnsweredOK, id)
}

func (s *Session) serve(id int) {
	s.Current = &id
	s.Stage = StageQuestionActive
}
