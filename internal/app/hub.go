package app

import (
	"sync"

	"trivia-miniapp-service/internal/domain"
)

// LeaderboardHub fans leaderboard snapshots out to websocket subscribers.
type LeaderboardHub struct {
	mu          sync.Mutex
	subscribers map[chan []domain.LeaderboardEntry]struct{}
}

func NewLeaderboardHub() *LeaderboardHub {
	return &LeaderboardHub{
		subscribers: make(map[chan []domain.LeaderboardEntry]struct{}),
	}
}

// Subscribe registers a subscriber and primes it with initial. The returned
// cancel is idempotent and closes the channel.
func (h *LeaderboardHub) Subscribe(initial []domain.LeaderboardEntry) (<-chan []domain.LeaderboardEntry, func()) {
	ch := make(chan []domain.LeaderboardEntry, 8)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	ch <- initial

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast sends entries to every subscriber. Slow subscribers lose their
// oldest pending snapshot instead of blocking the sender.
func (h *LeaderboardHub) Broadcast(entries []domain.LeaderboardEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- entries:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- entries
		}
	}
}

// Empty reports whether nobody is subscribed.
func (h *LeaderboardHub) Empty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers) == 0
}
