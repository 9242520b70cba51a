package http

// submitUser identifies the Telegram user inside mutation request bodies.
type submitUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
}

type submitScoreRequest struct {
	User submitUser `json:"user"`
	// Score is the XP delta for a correct answer; 0 marks an incorrect one.
	Score int `json:"score"`
	// Question is the answered prompt text, recorded for dedup when set.
	Question string `json:"question"`
}

type submitScoreResponse struct {
	Status   string `json:"status"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
	XPNeeded int    `json:"xp_needed"`
	LevelUp  bool   `json:"level_up"`
	Lives    int    `json:"lives"`
}

type addLifeRequest struct {
	User submitUser `json:"user"`
}

type addLifeResponse struct {
	Status string `json:"status"`
	Lives  int    `json:"lives"`
}

type errorResponse struct {
	Error string `json:"error"`
}
