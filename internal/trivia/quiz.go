package trivia

// AnyCategory selects the quiz pool from every category.
const AnyCategory int64 = 0

// SelectQuestion picks the next quiz question from pool.
//
// A single-question pool is served even if it was just asked. Otherwise a question is drawn uniformly with
// intn and redrawn while it equals the most recently served ID, the last entry of previous. Only that one
// ID is avoided; earlier history may repeat.
func SelectQuestion(pool []*Question, previous []int64, intn func(n int) int) (*Question, error) {
	switch len(pool) {
	case 0:
		return nil, ErrEmptyPool
	case 1:
		return pool[0], nil
	}

	if len(previous) == 0 {
		return pool[intn(len(pool))], nil
	}

	// Terminates: the pool holds at least two distinct IDs, so at most one of them equals last.
	last := previous[len(previous)-1]
	for {
		q := pool[intn(len(pool))]
		if q.ID != last {
			return q, nil
		}
	}
}
