package domain

import "time"

// OptionCount is the fixed number of answer options per question.
const OptionCount = 4

// StartingLives is the number of lives a freshly created player gets.
const StartingLives = 3

// Player is the persistent progression record for a Telegram user.
// Created on first score submission; never deleted.
type Player struct {
	UserID      int64
	DisplayName string
	Level       int
	XP          int
	Lives       int
	UpdatedAt   time.Time
}

// Question is a transient quiz question. It is never persisted; only the
// hash of its prompt is recorded once a player answers it.
type Question struct {
	Prompt       string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_answer"`
}

// Valid reports whether the question has exactly four options and a
// correct-answer index pointing into them.
func (q Question) Valid() bool {
	return q.Prompt != "" &&
		len(q.Options) == OptionCount &&
		q.CorrectIndex >= 0 && q.CorrectIndex < OptionCount
}

// Progress is the client-facing view of a player's progression state.
type Progress struct {
	Level    int `json:"level"`
	XP       int `json:"xp"`
	XPNeeded int `json:"xp_needed"`
	Lives    int `json:"lives"`
}

// SubmitResult summarizes the outcome of a score submission.
type SubmitResult struct {
	Level    int  `json:"level"`
	XP       int  `json:"xp"`
	XPNeeded int  `json:"xp_needed"`
	LevelUp  bool `json:"level_up"`
	Lives    int  `json:"lives"`
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
	XP          int    `json:"xp"`
}
