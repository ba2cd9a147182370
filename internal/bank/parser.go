package bank

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"adaptive-quiz-service/internal/domain"
)

var (
	questionRe  = regexp.MustCompile(`(?s)\\begin\{question\}\{(\d+)\}\{([^}]+)\}\{(\d+)\}\{([^}]+)\}\{(\d+)\}\{(.+?)\}\s*\\end\{question\}`)
	enumerateRe = regexp.MustCompile(`(?s)\\begin\{enumerate\}(.+?)\\end\{enumerate\}`)
	itemRe      = regexp.MustCompile(`(?s)^\s*([a-zA-Z])\)\s*(.*)$`)
)

// Parse reads question blocks of the form
//
//	\begin{question}{id}{topic,topic}{difficulty}{a,b}{week}{body}\end{question}
//
// where the body may hold an enumerate block with "\item a) text" options.
func Parse(r io.Reader) ([]domain.Question, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}

	matches := questionRe.FindAllStringSubmatch(string(raw), -1)
	questions := make([]domain.Question, 0, len(matches))
	seen := make(map[int]struct{}, len(matches))
	for _, m := range matches {
		q, err := parseQuestion(m[1:])
		if err != nil {
			return nil, err
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("question %d: duplicate id", q.ID)
		}
		seen[q.ID] = struct{}{}
		questions = append(questions, q)
	}
	return questions, nil
}

func parseQuestion(fields []string) (domain.Question, error) {
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return domain.Question{}, fmt.Errorf("question id %q: %w", fields[0], err)
	}
	difficulty, err := strconv.Atoi(fields[2])
	if err != nil || difficulty < 1 {
		return domain.Question{}, fmt.Errorf("question %d: invalid difficulty %q", id, fields[2])
	}
	week, err := strconv.Atoi(fields[4])
	if err != nil || week < 1 {
		return domain.Question{}, fmt.Errorf("question %d: invalid week %q", id, fields[4])
	}

	topics := ParseTopics(fields[1])
	if len(topics) == 0 {
		return domain.Question{}, fmt.Errorf("question %d: no topics", id)
	}

	answers, err := parseAnswers(fields[3])
	if err != nil {
		return domain.Question{}, fmt.Errorf("question %d: %w", id, err)
	}

	body := fields[5]
	options := parseOptions(body)
	statement := enumerateRe.ReplaceAllString(body, "")

	return domain.Question{
		ID:         id,
		Topics:     topics,
		Difficulty: difficulty,
		Week:       week,
		Answers:    answers,
		HTML:       renderQuestion(statement, options),
		Options:    options,
	}, nil
}

func parseAnswers(raw string) ([]string, error) {
	var answers []string
	for _, part := range strings.Split(raw, ",") {
		a := strings.ToLower(strings.TrimSpace(part))
		if a == "" {
			continue
		}
		if len(a) != 1 || a[0] < 'a' || a[0] > 'z' {
			return nil, fmt.Errorf("answer %q is not a single letter", part)
		}
		answers = append(answers, a)
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("no accepted answers")
	}
	return answers, nil
}

func parseOptions(body string) map[string]string {
	m := enumerateRe.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	options := make(map[string]string)
	for _, item := range strings.Split(m[1], `\item`) {
		im := itemRe.FindStringSubmatch(item)
		if im == nil {
			continue
		}
		options[strings.ToLower(im[1])] = strings.Join(strings.Fields(im[2]), " ")
	}
	if len(options) == 0 {
		return nil
	}
	return options
}

// ParseTopics splits a comma-joined topic filter, trimming blanks.
func ParseTopics(filter string) []string {
	var topics []string
	for _, t := range strings.Split(filter, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}
