package domain

import "time"

// Question is one entry of the question bank. It is immutable after load.
type Question struct {
	ID         int               `json:"id"`
	Topics     []string          `json:"topics"`
	Difficulty int               `json:"difficulty"`
	Week       int               `json:"week"`
	Answers    []string          `json:"-"` // lower-case single letters
	HTML       string            `json:"html"`
	Options    map[string]string `json:"options,omitempty"`
}

// HasTopic reports whether any of the question's topics is in the set.
func (q Question) HasTopic(topics map[string]struct{}) bool {
	for _, t := range q.Topics {
		if _, ok := topics[t]; ok {
			return true
		}
	}
	return false
}

// User is a registered student account.
type User struct {
	ID              int64     `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	StudentCode     string    `json:"studentCode"`
	LectureSection  string    `json:"lectureSection"`
	TutorialSection string    `json:"tutorialSection"`
	PasswordHash    string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Registration carries the fields submitted on sign-up.
type Registration struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	StudentCode     string `json:"student_code"`
	LectureSection  string `json:"lecture_section"`
	TutorialSection string `json:"tutorial_section"`
	Password        string `json:"password"`
}

// Interaction is one answer submission. Append-only.
type Interaction struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	QuestionID int       `json:"questionId"`
	Success    bool      `json:"success"`
	Timestamp  time.Time `json:"ts"`
}

// InteractionRecord is an interaction joined with the answering user's email.
type InteractionRecord struct {
	Interaction
	Email string `json:"email"`
}

// QuestionView is what clients see of the active question.
type QuestionView struct {
	QuestionID int    `json:"question_id"`
	HTML       string `json:"html"`
	Topics     string `json:"topics"`
	Difficulty int    `json:"difficulty"`
	Week       int    `json:"week"`
}

// Catalog lists what a user may pick for the selected week.
type Catalog struct {
	Week         int      `json:"week"`
	Topics       []string `json:"topics"`
	Difficulties []int    `json:"difficulties"`
}
