package app

import (
	"regexp"
	"strings"

	"adaptive-quiz-service/internal/domain"
)

var answerLetterRe = regexp.MustCompile(`^\(?\s*([A-Za-z])\s*\)?`)

// ExtractLetter pulls the leading option letter from answers like "a", "(A)" or "b)".
func ExtractLetter(raw string) (string, bool) {
	m := answerLetterRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// ValidateAnswer reports whether raw names one of the question's accepted letters.
// Unparseable input is simply wrong.
func ValidateAnswer(raw string, q domain.Question) bool {
	letter, ok := ExtractLetter(raw)
	if !ok {
		return false
	}
	for _, accepted := range q.Answers {
		if strings.EqualFold(accepted, letter) {
			return true
		}
	}
	return false
}
