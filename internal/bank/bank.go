// Package bank holds the question bank: an immutable table of questions loaded
// once at startup and shared read-only by every request.
package bank

import (
	"fmt"
	"os"
	"sort"

	"adaptive-quiz-service/internal/domain"
)

// Bank is safe for concurrent use because it is never mutated after New.
type Bank struct {
	byID     map[int]domain.Question
	ordered  []domain.Question
	selector Selector
}

// New builds a bank from already parsed questions.
func New(questions []domain.Question) *Bank {
	b := &Bank{
		byID:     make(map[int]domain.Question, len(questions)),
		selector: DefaultSelector(),
	}
	for _, q := range questions {
		b.byID[q.ID] = q
	}
	b.ordered = make([]domain.Question, 0, len(b.byID))
	for _, q := range b.byID {
		b.ordered = append(b.ordered, q)
	}
	sort.Slice(b.ordered, func(i, j int) bool { return b.ordered[i].ID < b.ordered[j].ID })
	return b
}

// LoadFile parses the bank markup file at path.
func LoadFile(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bank: %w", err)
	}
	defer f.Close()

	questions, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return New(questions), nil
}

// WithSelector returns a copy of the bank that picks with s.
func (b *Bank) WithSelector(s Selector) *Bank {
	cp := *b
	cp.selector = s
	return &cp
}

func (b *Bank) Get(id int) (domain.Question, bool) {
	q, ok := b.byID[id]
	return q, ok
}

func (b *Bank) Len() int {
	return len(b.ordered)
}

// Questions returns every question ordered by id.
func (b *Bank) Questions() []domain.Question {
	out := make([]domain.Question, len(b.ordered))
	copy(out, b.ordered)
	return out
}

// AvailableTopics returns the sorted topics of all questions released by week.
func (b *Bank) AvailableTopics(week int) []string {
	set := make(map[string]struct{})
	for _, q := range b.ordered {
		if q.Week > week {
			continue
		}
		for _, t := range q.Topics {
			set[t] = struct{}{}
		}
	}
	topics := make([]string, 0, len(set))
	for t := range set {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// AvailableDifficulties returns the sorted difficulties of questions released by
// week that share at least one topic with topics.
func (b *Bank) AvailableDifficulties(topics []string, week int) []int {
	filter := topicSet(topics)
	set := make(map[int]struct{})
	for _, q := range b.ordered {
		if q.Week <= week && q.HasTopic(filter) {
			set[q.Difficulty] = struct{}{}
		}
	}
	difficulties := make([]int, 0, len(set))
	for d := range set {
		difficulties = append(difficulties, d)
	}
	sort.Ints(difficulties)
	return difficulties
}

// MaxDifficulty reports the highest difficulty in the bank; false when empty.
func (b *Bank) MaxDifficulty() (int, bool) {
	if len(b.ordered) == 0 {
		return 0, false
	}
	max := 0
	for _, q := range b.ordered {
		if q.Difficulty > max {
			max = q.Difficulty
		}
	}
	return max, true
}

// WeekSummary counts the questions released in one week.
type WeekSummary struct {
	Week         int
	Questions    int
	Topics       []string
	Difficulties []int
}

// Summary groups the bank by release week.
func (b *Bank) Summary() []WeekSummary {
	byWeek := make(map[int]*WeekSummary)
	topics := make(map[int]map[string]struct{})
	difs := make(map[int]map[int]struct{})
	for _, q := range b.ordered {
		s, ok := byWeek[q.Week]
		if !ok {
			s = &WeekSummary{Week: q.Week}
			byWeek[q.Week] = s
			topics[q.Week] = make(map[string]struct{})
			difs[q.Week] = make(map[int]struct{})
		}
		s.Questions++
		for _, t := range q.Topics {
			topics[q.Week][t] = struct{}{}
		}
		difs[q.Week][q.Difficulty] = struct{}{}
	}

	out := make([]WeekSummary, 0, len(byWeek))
	for week, s := range byWeek {
		for t := range topics[week] {
			s.Topics = append(s.Topics, t)
		}
		sort.Strings(s.Topics)
		for d := range difs[week] {
			s.Difficulties = append(s.Difficulties, d)
		}
		sort.Ints(s.Difficulties)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

func topicSet(topics []string) map[string]struct{} {
	set := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		set[t] = struct{}{}
	}
	return set
}
