package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"trivia-miniapp-service/internal/domain"
)

type playerRow struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	UserID      int64     `bun:"user_id,pk"`
	DisplayName string    `bun:"display_name"`
	Level       int       `bun:"level"`
	XP          int       `bun:"xp"`
	Lives       int       `bun:"lives"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

func (r playerRow) toDomain() domain.Player {
	return domain.Player{
		UserID:      r.UserID,
		DisplayName: r.DisplayName,
		Level:       r.Level,
		XP:          r.XP,
		Lives:       r.Lives,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromDomain(p domain.Player) playerRow {
	return playerRow{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Level:       p.Level,
		XP:          p.XP,
		Lives:       p.Lives,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PlayerRepo is the bun-backed app.PlayerRepository.
type PlayerRepo struct {
	db    *bun.DB
	clock func() time.Time
}

func NewPlayerRepo(db *bun.DB) *PlayerRepo {
	return &PlayerRepo{db: db, clock: time.Now}
}

// NewPlayerRepoWithClock allows deterministic timestamps in tests.
func NewPlayerRepoWithClock(db *bun.DB, clock func() time.Time) *PlayerRepo {
	return &PlayerRepo{db: db, clock: clock}
}

func (r *PlayerRepo) Get(ctx context.Context, userID int64) (domain.Player, error) {
	row := new(playerRow)
	err := r.db.NewSelect().Model(row).Where("user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	if err != nil {
		return domain.Player{}, fmt.Errorf("select player: %w", err)
	}
	return row.toDomain(), nil
}

// Mutate performs the read-modify-write inside one transaction so that
// concurrent submissions for the same player cannot lose updates.
func (r *PlayerRepo) Mutate(ctx context.Context, userID int64, createIfMissing bool, mutate func(*domain.Player)) (domain.Player, error) {
	var out domain.Player
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		row := new(playerRow)
		err := tx.NewSelect().Model(row).Where("user_id = ?", userID).Scan(ctx)
		existed := true
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if !createIfMissing {
				return domain.ErrPlayerNotFound
			}
			existed = false
			*row = fromDomain(domain.NewPlayer(userID, ""))
		case err != nil:
			return fmt.Errorf("select player: %w", err)
		}

		player := row.toDomain()
		mutate(&player)
		player.UpdatedAt = r.clock()
		*row = fromDomain(player)

		if existed {
			if _, err := tx.NewUpdate().Model(row).WherePK().Exec(ctx); err != nil {
				return fmt.Errorf("update player: %w", err)
			}
		} else {
			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				return fmt.Errorf("insert player: %w", err)
			}
		}
		out = player
		return nil
	})
	if err != nil {
		return domain.Player{}, err
	}
	return out, nil
}

func (r *PlayerRepo) TopByProgress(ctx context.Context, n int) ([]domain.Player, error) {
	var rows []playerRow
	q := r.db.NewSelect().Model(&rows).Order("level DESC").Order("xp DESC")
	if n > 0 {
		q = q.Limit(n)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	players := make([]domain.Player, len(rows))
	for i, row := range rows {
		players[i] = row.toDomain()
	}
	return players, nil
}
