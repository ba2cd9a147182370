package bank

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileParsesSample(t *testing.T) {
	b, err := LoadFile("testdata/sample.tex")
	require.NoError(t, err)
	require.Equal(t, 4, b.Len())

	q1, ok := b.Get(1)
	require.True(t, ok)
	assert.Equal(t, []string{"sets"}, q1.Topics)
	assert.Equal(t, 1, q1.Difficulty)
	assert.Equal(t, 1, q1.Week)
	assert.Equal(t, []string{"a"}, q1.Answers)
	assert.Equal(t, map[string]string{"a": `$1 \in A$`, "b": `$3 \in A$`}, q1.Options)
	assert.Contains(t, q1.HTML, "<b>true</b>")
	assert.Contains(t, q1.HTML, "<ol type='a'")
	assert.NotContains(t, q1.HTML, `\begin{enumerate}`)

	q2, _ := b.Get(2)
	assert.Equal(t, []string{"sets", "logic"}, q2.Topics)
	assert.Equal(t, []string{"b", "c"}, q2.Answers)
	assert.Contains(t, q2.HTML, "<i>tautology</i>")
	assert.Contains(t, q2.HTML, "<br>")

	q3, _ := b.Get(3)
	assert.Nil(t, q3.Options)
	assert.Contains(t, q3.HTML, "A &amp; B &lt; C")

	q4, _ := b.Get(4)
	assert.Equal(t, 2, strings.Count(q4.HTML, "<p>"))
	assert.NotContains(t, q4.HTML, "}</p>", "dangling brace should be trimmed")
}

func TestParseRejectsMalformedQuestions(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"multi letter answer", `\begin{question}{1}{sets}{1}{ab}{1}{body}\end{question}`},
		{"digit answer", `\begin{question}{1}{sets}{1}{1}{1}{body}\end{question}`},
		{"zero difficulty", `\begin{question}{1}{sets}{0}{a}{1}{body}\end{question}`},
		{"zero week", `\begin{question}{1}{sets}{1}{a}{0}{body}\end{question}`},
		{"blank topics", `\begin{question}{1}{ , }{1}{a}{1}{body}\end{question}`},
		{"duplicate id", `\begin{question}{1}{sets}{1}{a}{1}{x}\end{question}
\begin{question}{1}{sets}{1}{a}{1}{y}\end{question}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
		})
	}
}

func TestParseIgnoresTextOutsideBlocks(t *testing.T) {
	qs, err := Parse(strings.NewReader("\\section{Intro}\nnothing here"))
	require.NoError(t, err)
	assert.Empty(t, qs)
}

func TestParseTopics(t *testing.T) {
	assert.Equal(t, []string{"logic", "sets"}, ParseTopics(" logic, ,sets "))
	assert.Nil(t, ParseTopics(""))
}

func TestSanitizeTrimsUnbalancedBraces(t *testing.T) {
	assert.Equal(t, `\textbf{x}`, sanitize(`\textbf{x}}}`))
	assert.Equal(t, `a`, sanitize("a }\n}"))
}
