package app

import "adaptive-quiz-service/internal/bank"

const (
	// WindowSize is how many recent answers drive a difficulty change.
	WindowSize = 4
	// FallbackMaxDifficulty caps difficulty when the bank is empty.
	FallbackMaxDifficulty = 3
)

// ResultWindow holds the most recent answers, oldest first.
type ResultWindow []bool

// Push appends a result and evicts the oldest beyond WindowSize.
func (w *ResultWindow) Push(success bool) {
	*w = append(*w, success)
	if over := len(*w) - WindowSize; over > 0 {
		*w = append(ResultWindow(nil), (*w)[over:]...)
	}
}

// Correct counts successes in the window.
func (w ResultWindow) Correct() int {
	n := 0
	for _, ok := range w {
		if ok {
			n++
		}
	}
	return n
}

// AdjustDifficulty applies the 3-of-4 rule. It only moves once the window is
// full and keeps re-evaluating on every later answer.
func AdjustDifficulty(current, max int, w ResultWindow) int {
	if current < 1 {
		current = 1
	}
	if len(w) != WindowSize {
		return current
	}
	switch score := w.Correct(); {
	case score >= 3 && current < max:
		return current + 1
	case score <= 1 && current > 1:
		return current - 1
	}
	return current
}

// DifficultyController adjusts a session's difficulty ceiling after each answer.
type DifficultyController struct {
	Max int
}

// NewDifficultyController caps difficulty at the bank's highest level.
func NewDifficultyController(questions *bank.Bank) DifficultyController {
	max, ok := questions.MaxDifficulty()
	if !ok {
		max = FallbackMaxDifficulty
	}
	return DifficultyController{Max: max}
}

// Update records the result in the session window and returns the new difficulty.
func (c DifficultyController) Update(s *Session, success bool) int {
	s.Recent.Push(success)
	s.Difficulty = AdjustDifficulty(s.Difficulty, c.Max, s.Recent)
	return s.Difficulty
}
