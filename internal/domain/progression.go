package domain

// XPNeeded returns the XP threshold to advance from the given level.
func XPNeeded(level int) int {
	return 10 + 5*level
}

// NewPlayer returns a fresh progression record for a first-time player.
func NewPlayer(userID int64, displayName string) Player {
	return Player{
		UserID:      userID,
		DisplayName: displayName,
		Lives:       StartingLives,
	}
}

// ApplyAnswer applies one submission to the player. A positive delta is a
// correct answer worth that many XP; a zero delta is an incorrect answer
// and costs one life. Reports whether at least one level-up occurred.
//
// Level-ups are applied in a loop so a single large delta can cross several
// thresholds; afterwards 0 <= XP < XPNeeded(Level) always holds.
func ApplyAnswer(p *Player, delta int) (leveledUp bool) {
	if delta <= 0 {
		if p.Lives > 0 {
			p.Lives--
		}
		return false
	}

	p.XP += delta
	for p.XP >= XPNeeded(p.Level) {
		p.XP -= XPNeeded(p.Level)
		p.Level++
		leveledUp = true
	}
	return leveledUp
}

// ProgressOf builds the client-facing progress view for a player.
func ProgressOf(p Player) Progress {
	return Progress{
		Level:    p.Level,
		XP:       p.XP,
		XPNeeded: XPNeeded(p.Level),
		Lives:    p.Lives,
	}
}
