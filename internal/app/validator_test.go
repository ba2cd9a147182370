package app

import (
	"testing"

	"adaptive-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestExtractLetter(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"a", "a", true},
		{"(a)", "a", true},
		{"A)", "a", true},
		{" b ", "b", true},
		{"( c )", "c", true},
		{"d) because it is injective", "d", true},
		{"42", "", false},
		{"", "", false},
		{"   ", "", false},
		{"()", "", false},
		{"-a", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractLetter(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "raw %q", tt.raw)
		assert.Equal(t, tt.want, got, "raw %q", tt.raw)
	}
}

func TestValidateAnswer(t *testing.T) {
	q := domain.Question{ID: 1, Answers: []string{"b", "c"}}

	assert.True(t, ValidateAnswer("b", q))
	assert.True(t, ValidateAnswer("(C)", q))
	assert.True(t, ValidateAnswer("B)", q))
	assert.False(t, ValidateAnswer("a", q))
	assert.False(t, ValidateAnswer("42", q))
	assert.False(t, ValidateAnswer("", q))
}
