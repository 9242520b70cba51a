// Package question provides quiz question sources: an embedded static bank,
// a Postgres-backed bank and a generative Gemini source, plus a TTL cache.
package question

import (
	"context"

	"trivia-miniapp-service/internal/domain"
)

// Request describes one batch of questions to produce.
type Request struct {
	// Topic selects a question pool. Empty means the default topic.
	Topic string
	// Level is the player's current level, used to steer difficulty.
	Level int
	// Count is the desired batch size.
	Count int
	// Avoid holds question hashes the caller has already seen. Generative
	// sources use it for duplicate-avoidance retries; bank sources ignore
	// it because the caller filters afterwards.
	Avoid map[string]struct{}
}

// Source produces question batches.
type Source interface {
	Questions(ctx context.Context, req Request) ([]domain.Question, error)
}
