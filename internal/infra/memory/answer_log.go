package memory

import (
	"context"
	"sync"
)

// AnswerLog is an in-memory app.AnswerLog.
type AnswerLog struct {
	mu   sync.RWMutex
	seen map[int64]map[string]struct{}
}

func NewAnswerLog() *AnswerLog {
	return &AnswerLog{seen: make(map[int64]map[string]struct{})}
}

func (l *AnswerLog) Hashes(_ context.Context, userID int64) (map[string]struct{}, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]struct{}, len(l.seen[userID]))
	for h := range l.seen[userID] {
		out[h] = struct{}{}
	}
	return out, nil
}

func (l *AnswerLog) Record(_ context.Context, userID int64, hash string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[userID] == nil {
		l.seen[userID] = make(map[string]struct{})
	}
	l.seen[userID][hash] = struct{}{}
	return nil
}
