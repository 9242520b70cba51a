package question

import (
	"encoding/json"
	"fmt"
	"strings"

	"trivia-miniapp-service/internal/domain"
)

// generatedQuestion is the raw generator output before validation. Older
// prompt revisions returned the correct answer as the option string instead
// of an index, so both are accepted and normalized to an index.
type generatedQuestion struct {
	Question      string          `json:"question"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
}

// parseGenerated defensively turns raw generator JSON into a valid question.
// Any structural problem maps to domain.ErrBadGeneration.
func parseGenerated(raw []byte) (domain.Question, error) {
	var g generatedQuestion
	if err := json.Unmarshal(raw, &g); err != nil {
		return domain.Question{}, fmt.Errorf("%w: unparsable JSON: %v", domain.ErrBadGeneration, err)
	}
	if strings.TrimSpace(g.Question) == "" {
		return domain.Question{}, fmt.Errorf("%w: empty question text", domain.ErrBadGeneration)
	}
	if len(g.Options) != domain.OptionCount {
		return domain.Question{}, fmt.Errorf("%w: got %d options, want %d",
			domain.ErrBadGeneration, len(g.Options), domain.OptionCount)
	}

	idx, err := normalizeCorrectAnswer(g.CorrectAnswer, g.Options)
	if err != nil {
		return domain.Question{}, err
	}

	q := domain.Question{
		Prompt:       strings.TrimSpace(g.Question),
		Options:      g.Options,
		CorrectIndex: idx,
	}
	if !q.Valid() {
		return domain.Question{}, fmt.Errorf("%w: invalid question shape", domain.ErrBadGeneration)
	}
	return q, nil
}

// normalizeCorrectAnswer accepts either an option index or the matching
// option string and returns the canonical index.
func normalizeCorrectAnswer(raw json.RawMessage, options []string) (int, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("%w: missing correct_answer", domain.ErrBadGeneration)
	}

	var idx int
	if err := json.Unmarshal(raw, &idx); err == nil {
		if idx < 0 || idx >= len(options) {
			return 0, fmt.Errorf("%w: correct_answer index %d out of range", domain.ErrBadGeneration, idx)
		}
		return idx, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, fmt.Errorf("%w: correct_answer is neither index nor string", domain.ErrBadGeneration)
	}
	for i, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), strings.TrimSpace(text)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: correct_answer %q matches no option", domain.ErrBadGeneration, text)
}
