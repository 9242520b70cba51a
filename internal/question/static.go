package question

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"trivia-miniapp-service/internal/domain"
)

// DefaultTopic is used when a request carries no topic.
const DefaultTopic = "umum"

//go:embed bank.json
var bankJSON []byte

// StaticSource serves questions from an embedded bank keyed by topic.
// Pools are returned in canonical order; callers shuffle before filtering.
type StaticSource struct {
	pools map[string][]domain.Question
	rnd   *rand.Rand
}

// NewStaticSource parses the embedded bank.
func NewStaticSource() (*StaticSource, error) {
	pools := map[string][]domain.Question{}
	if err := json.Unmarshal(bankJSON, &pools); err != nil {
		return nil, fmt.Errorf("parse embedded bank: %w", err)
	}
	return newStaticSource(pools)
}

// NewStaticSourceFromPools builds a source from explicit pools (tests/demos).
func NewStaticSourceFromPools(pools map[string][]domain.Question) (*StaticSource, error) {
	return newStaticSource(pools)
}

func newStaticSource(pools map[string][]domain.Question) (*StaticSource, error) {
	for topic, qs := range pools {
		for _, q := range qs {
			if !q.Valid() {
				return nil, fmt.Errorf("bank topic %q: invalid question %q", topic, q.Prompt)
			}
		}
	}
	return &StaticSource{
		pools: pools,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Questions returns the full pool for the topic. Count and Avoid are
// ignored; deduplication and capping happen in the service layer.
func (s *StaticSource) Questions(_ context.Context, req Request) ([]domain.Question, error) {
	topic := req.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	pool, ok := s.pools[topic]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTopicNotFound, topic)
	}
	out := make([]domain.Question, len(pool))
	copy(out, pool)
	return out, nil
}

// Pick returns a random question from the default topic, for the bot's
// /kuis command. ok is false when the default pool is empty.
func (s *StaticSource) Pick() (domain.Question, bool) {
	pool := s.pools[DefaultTopic]
	if len(pool) == 0 {
		return domain.Question{}, false
	}
	return pool[s.rnd.Intn(len(pool))], true
}
