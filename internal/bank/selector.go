package bank

import "math/rand"

// Query describes which questions may be served next.
type Query struct {
	Week          int
	Topics        []string
	MaxDifficulty int
	Exclude       map[int]struct{} // answered correctly in the current run
}

// Selector draws uniformly from a candidate pool.
type Selector struct {
	// Intn returns a value in [0, n). It must be safe for concurrent use.
	Intn func(n int) int
}

// DefaultSelector draws with the shared math/rand source.
func DefaultSelector() Selector {
	return Selector{Intn: rand.Intn}
}

// Pick returns one question id matching q, preferring ids absent from seen.
// The boolean is false when nothing matches; that is a normal end of a run.
func (b *Bank) Pick(q Query, seen map[int]struct{}) (int, bool) {
	filter := topicSet(q.Topics)

	var candidates []int
	for _, question := range b.ordered {
		if question.Week > q.Week || question.Difficulty > q.MaxDifficulty {
			continue
		}
		if !question.HasTopic(filter) {
			continue
		}
		if _, excluded := q.Exclude[question.ID]; excluded {
			continue
		}
		candidates = append(candidates, question.ID)
	}
	if len(candidates) == 0 {
		return 0, false
	}

	pool := make([]int, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := seen[id]; !ok {
			pool = append(pool, id)
		}
	}
	if len(pool) == 0 {
		pool = candidates
	}
	return pool[b.selector.Intn(len(pool))], true
}
