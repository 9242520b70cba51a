package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type answeredRow struct {
	bun.BaseModel `bun:"table:answered_questions,alias:aq"`

	UserID       int64     `bun:"user_id,pk"`
	QuestionHash string    `bun:"question_hash,pk"`
	CreatedAt    time.Time `bun:"created_at"`
}

// AnswerLog is the bun-backed app.AnswerLog.
type AnswerLog struct {
	db    *bun.DB
	clock func() time.Time
}

func NewAnswerLog(db *bun.DB) *AnswerLog {
	return &AnswerLog{db: db, clock: time.Now}
}

func (l *AnswerLog) Hashes(ctx context.Context, userID int64) (map[string]struct{}, error) {
	var hashes []string
	err := l.db.NewSelect().
		Model((*answeredRow)(nil)).
		Column("question_hash").
		Where("user_id = ?", userID).
		Scan(ctx, &hashes)
	if err != nil {
		return nil, fmt.Errorf("select answered hashes: %w", err)
	}
	seen := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		seen[h] = struct{}{}
	}
	return seen, nil
}

func (l *AnswerLog) Record(ctx context.Context, userID int64, hash string) error {
	row := &answeredRow{
		UserID:       userID,
		QuestionHash: hash,
		CreatedAt:    l.clock(),
	}
	_, err := l.db.NewInsert().Model(row).On("CONFLICT DO NOTHING").Exec(ctx)
	if err != nil {
		return fmt.Errorf("record answered question: %w", err)
	}
	return nil
}
