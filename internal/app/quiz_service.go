package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"

	"trivia-miniapp-service/internal/domain"
	"trivia-miniapp-service/internal/question"
)

// PlayerRepository persists player progression records.
type PlayerRepository interface {
	// Get returns the player or domain.ErrPlayerNotFound.
	Get(ctx context.Context, userID int64) (domain.Player, error)
	// Mutate runs mutate against the stored record inside a single atomic
	// unit (transaction or equivalent), so concurrent submissions for the
	// same player cannot lose updates. When the player does not exist it
	// either creates a default record first (createIfMissing) or fails
	// with domain.ErrPlayerNotFound.
	Mutate(ctx context.Context, userID int64, createIfMissing bool, mutate func(*domain.Player)) (domain.Player, error)
	// TopByProgress returns up to n players ordered by level desc, XP desc.
	TopByProgress(ctx context.Context, n int) ([]domain.Player, error)
}

// AnswerLog records which question hashes a player has answered.
type AnswerLog interface {
	// Hashes returns every hash recorded for the player. Unknown players
	// have an empty set.
	Hashes(ctx context.Context, userID int64) (map[string]struct{}, error)
	// Record stores one (player, hash) pair; recording the same pair twice
	// is a no-op.
	Record(ctx context.Context, userID int64, hash string) error
}

// LeaderboardProvider is the read side of the leaderboard; caching layers
// decorate it.
type LeaderboardProvider interface {
	Leaderboard(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// Config tunes the quiz service. Zero values fall back to defaults.
type Config struct {
	// BatchSize caps question batches; defaults to 10.
	BatchSize int
	// LeaderboardSize is the default top-N; defaults to 10.
	LeaderboardSize int
	// SourceDedups marks generative sources that already retry against the
	// Avoid set; their output is returned as-is so the bounded
	// retry-with-fallback result survives (a duplicate kept after the
	// retries gave up must not be filtered away again).
	SourceDedups bool
}

const (
	defaultBatchSize       = 10
	defaultLeaderboardSize = 10
)

// QuizService contains the core quiz use cases: question batches with
// per-player dedup, score submission with progression, lives, and the
// leaderboard.
type QuizService struct {
	players PlayerRepository
	answers AnswerLog
	source  question.Source
	hub     *LeaderboardHub

	batchSize    int
	lbSize       int
	sourceDedups bool
}

func NewQuizService(players PlayerRepository, answers AnswerLog, source question.Source, cfg Config) *QuizService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = defaultLeaderboardSize
	}
	return &QuizService{
		players:      players,
		answers:      answers,
		source:       source,
		hub:          NewLeaderboardHub(),
		batchSize:    cfg.BatchSize,
		lbSize:       cfg.LeaderboardSize,
		sourceDedups: cfg.SourceDedups,
	}
}

// QuestionBatch returns up to BatchSize questions the player has not
// answered yet. Bank pools are shuffled before filtering; the filter itself
// preserves order.
func (s *QuizService) QuestionBatch(ctx context.Context, userID int64, topic string, level int) ([]domain.Question, error) {
	seen, err := s.answers.Hashes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load answered set: %w", err)
	}

	candidates, err := s.source.Questions(ctx, question.Request{
		Topic: topic,
		Level: level,
		Count: s.batchSize,
		Avoid: seen,
	})
	if err != nil {
		return nil, err
	}

	if s.sourceDedups {
		if len(candidates) > s.batchSize {
			candidates = candidates[:s.batchSize]
		}
		return candidates, nil
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return FilterUnseen(candidates, seen, s.batchSize), nil
}

// Submission is one score submission from the mini-app.
type Submission struct {
	UserID      int64
	DisplayName string
	// Score is the XP delta for a correct answer; 0 means incorrect.
	Score int
	// Question is the answered prompt text; when present its hash is
	// recorded for dedup.
	Question string
}

// SubmitScore applies a submission to the player, creating the record on
// first touch, and records the answered question hash.
func (s *QuizService) SubmitScore(ctx context.Context, sub Submission) (domain.SubmitResult, error) {
	if sub.UserID == 0 {
		return domain.SubmitResult{}, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if sub.Score < 0 {
		return domain.SubmitResult{}, fmt.Errorf("%w: score must be non-negative", domain.ErrValidation)
	}

	var leveledUp bool
	player, err := s.players.Mutate(ctx, sub.UserID, true, func(p *domain.Player) {
		if sub.DisplayName != "" {
			p.DisplayName = sub.DisplayName
		}
		leveledUp = domain.ApplyAnswer(p, sub.Score)
	})
	if err != nil {
		return domain.SubmitResult{}, fmt.Errorf("apply answer: %w", err)
	}

	if sub.Question != "" {
		if err := s.answers.Record(ctx, sub.UserID, domain.QuestionHash(sub.Question)); err != nil {
			return domain.SubmitResult{}, fmt.Errorf("record answered question: %w", err)
		}
	}

	s.broadcastLeaderboard(ctx)

	return domain.SubmitResult{
		Level:    player.Level,
		XP:       player.XP,
		XPNeeded: domain.XPNeeded(player.Level),
		LevelUp:  leveledUp,
		Lives:    player.Lives,
	}, nil
}

// Progress reports the player's progression. Unknown players get the
// default view; no record is created by this read-only query.
func (s *QuizService) Progress(ctx context.Context, userID int64) (domain.Progress, error) {
	player, err := s.players.Get(ctx, userID)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return domain.ProgressOf(domain.NewPlayer(userID, "")), nil
	}
	if err != nil {
		return domain.Progress{}, fmt.Errorf("load player: %w", err)
	}
	return domain.ProgressOf(player), nil
}

// AddLife grants one extra life (the ad-reward action). Fails with
// domain.ErrPlayerNotFound for unknown players.
func (s *QuizService) AddLife(ctx context.Context, userID int64) (int, error) {
	player, err := s.players.Mutate(ctx, userID, false, func(p *domain.Player) {
		p.Lives++
	})
	if err != nil {
		return 0, err
	}
	return player.Lives, nil
}

// Leaderboard returns the top n players ordered by level desc then XP desc,
// with 1-based ranks. n <= 0 uses the configured default.
func (s *QuizService) Leaderboard(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		n = s.lbSize
	}
	players, err := s.players.TopByProgress(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, len(players))
	for i, p := range players {
		entries[i] = domain.LeaderboardEntry{
			Rank:        i + 1,
			DisplayName: p.DisplayName,
			Level:       p.Level,
			XP:          p.XP,
		}
	}
	return entries, nil
}

// Subscribe returns a channel of leaderboard snapshots, primed with the
// current one. The caller must invoke cancel to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context) (<-chan []domain.LeaderboardEntry, func(), error) {
	entries, err := s.Leaderboard(ctx, s.lbSize)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(entries)
	return ch, cancel, nil
}

func (s *QuizService) broadcastLeaderboard(ctx context.Context) {
	if s.hub.Empty() {
		return
	}
	entries, err := s.Leaderboard(ctx, s.lbSize)
	if err != nil {
		log.Printf("leaderboard broadcast skipped: %v", err)
		return
	}
	s.hub.Broadcast(entries)
}
