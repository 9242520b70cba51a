// Package memory holds in-memory repository implementations used as test
// fakes for the service and transport layers.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"trivia-miniapp-service/internal/domain"
)

// PlayerStore is an in-memory app.PlayerRepository. The store mutex makes
// Mutate atomic, matching the transactional guarantee of the SQL store.
type PlayerStore struct {
	mu      sync.Mutex
	players map[int64]domain.Player
	clock   func() time.Time
}

func NewPlayerStore() *PlayerStore {
	return &PlayerStore{
		players: make(map[int64]domain.Player),
		clock:   time.Now,
	}
}

// NewPlayerStoreWithClock allows deterministic timestamps in tests.
func NewPlayerStoreWithClock(clock func() time.Time) *PlayerStore {
	store := NewPlayerStore()
	store.clock = clock
	return store
}

func (s *PlayerStore) Get(_ context.Context, userID int64) (domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[userID]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return player, nil
}

func (s *PlayerStore) Mutate(_ context.Context, userID int64, createIfMissing bool, mutate func(*domain.Player)) (domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[userID]
	if !ok {
		if !createIfMissing {
			return domain.Player{}, domain.ErrPlayerNotFound
		}
		player = domain.NewPlayer(userID, "")
	}

	mutate(&player)
	player.UpdatedAt = s.clock()
	s.players[userID] = player
	return player, nil
}

func (s *PlayerStore) TopByProgress(_ context.Context, n int) ([]domain.Player, error) {
	s.mu.Lock()
	players := make([]domain.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	s.mu.Unlock()

	sort.Slice(players, func(i, j int) bool {
		if players[i].Level != players[j].Level {
			return players[i].Level > players[j].Level
		}
		return players[i].XP > players[j].XP
	})
	if n > 0 && len(players) > n {
		players = players[:n]
	}
	return players, nil
}
