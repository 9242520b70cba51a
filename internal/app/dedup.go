package app

import "trivia-miniapp-service/internal/domain"

// FilterUnseen drops candidates whose prompt hash appears in seen, keeping
// the input order. max caps the result; max <= 0 means unbounded. The
// filter has no side effects: answered hashes are recorded at submission
// time, not here, so re-fetching without submitting yields the same batch.
func FilterUnseen(candidates []domain.Question, seen map[string]struct{}, max int) []domain.Question {
	unseen := make([]domain.Question, 0, len(candidates))
	for _, q := range candidates {
		if _, ok := seen[domain.QuestionHash(q.Prompt)]; ok {
			continue
		}
		unseen = append(unseen, q)
		if max > 0 && len(unseen) == max {
			break
		}
	}
	return unseen
}
