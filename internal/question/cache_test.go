package question

import (
	"context"
	"testing"
	"time"

	"trivia-miniapp-service/internal/domain"
)

func TestCachedSourceCaches(t *testing.T) {
	inner := &countingSource{pool: samplePool()}
	cached := NewCachedSource(inner, time.Minute)

	if _, err := cached.Questions(context.Background(), Request{Topic: "umum"}); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected inner called once, got %d", inner.calls)
	}

	if _, err := cached.Questions(context.Background(), Request{Topic: "umum"}); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected cache hit, inner calls=%d", inner.calls)
	}
}

func TestCachedSourceExpires(t *testing.T) {
	inner := &countingSource{pool: samplePool()}
	cached := NewCachedSource(inner, time.Minute)

	now := time.Now()
	cached.clock = func() time.Time { return now }

	_, _ = cached.Questions(context.Background(), Request{Topic: "umum"})

	now = now.Add(2 * time.Minute)
	_, _ = cached.Questions(context.Background(), Request{Topic: "umum"})

	if inner.calls != 2 {
		t.Fatalf("expected reload after expiry, inner calls=%d", inner.calls)
	}
}

func TestCachedSourceKeysByTopicAndLevel(t *testing.T) {
	inner := &countingSource{pool: samplePool()}
	cached := NewCachedSource(inner, time.Minute)

	_, _ = cached.Questions(context.Background(), Request{Topic: "umum", Level: 0})
	_, _ = cached.Questions(context.Background(), Request{Topic: "umum", Level: 3})

	if inner.calls != 2 {
		t.Fatalf("expected distinct cache entries per level, inner calls=%d", inner.calls)
	}
}

type countingSource struct {
	pool  []domain.Question
	calls int
}

func (s *countingSource) Questions(_ context.Context, _ Request) ([]domain.Question, error) {
	s.calls++
	return s.pool, nil
}

func samplePool() []domain.Question {
	return []domain.Question{
		{
			Prompt:       "Apa ibukota Indonesia?",
			Options:      []string{"Bandung", "Surabaya", "Jakarta", "Medan"},
			CorrectIndex: 2,
		},
	}
}
