// Package postgres loads question-bank topics from Postgres JSONB rows.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-miniapp-service/internal/domain"
	"trivia-miniapp-service/internal/question"
)

// BankSource serves question pools stored as one JSONB array per topic.
// It implements question.Source and is normally wrapped in a CachedSource.
type BankSource struct {
	pool *pgxpool.Pool
}

func NewBankSource(pool *pgxpool.Pool) *BankSource {
	return &BankSource{pool: pool}
}

func (s *BankSource) Questions(ctx context.Context, req question.Request) ([]domain.Question, error) {
	topic := req.Topic
	if topic == "" {
		topic = question.DefaultTopic
	}

	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM question_bank WHERE topic=$1`, topic).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTopicNotFound, topic)
	}
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal question bank %q: %w", topic, err)
	}
	for _, q := range questions {
		if !q.Valid() {
			return nil, fmt.Errorf("question bank %q: invalid question %q", topic, q.Prompt)
		}
	}
	return questions, nil
}
