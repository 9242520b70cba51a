// Package http holds the JSON transport for the trivia mini-app: the REST
// handlers, the Telegram webhook and the websocket leaderboard feed.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"trivia-miniapp-service/internal/app"
	"trivia-miniapp-service/internal/domain"
)

// API wires the quiz service into HTTP handlers.
type API struct {
	service *app.QuizService
	lb      app.LeaderboardProvider
}

// NewAPI builds the handler set. lb may be a caching decorator; nil falls
// back to the service itself.
func NewAPI(service *app.QuizService, lb app.LeaderboardProvider) *API {
	if lb == nil {
		lb = service
	}
	return &API{service: service, lb: lb}
}

// Register mounts every endpoint on the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/questions-batch", a.HandleQuestionBatch)
	mux.HandleFunc("/submit-score", a.HandleSubmitScore)
	mux.HandleFunc("/user-progress", a.HandleUserProgress)
	mux.HandleFunc("/add-life", a.HandleAddLife)
	mux.HandleFunc("/leaderboard", a.HandleLeaderboard)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}

func (a *API) HandleQuestionBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	userID, err := parseUserID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	level, err := parseIntParam(r, "level", 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	topic := r.URL.Query().Get("topic")

	questions, err := a.service.QuestionBatch(r.Context(), userID, topic, level)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (a *API) HandleSubmitScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	defer r.Body.Close()

	var req submitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, fmt.Errorf("%w: invalid JSON body", domain.ErrValidation))
		return
	}

	result, err := a.service.SubmitScore(r.Context(), app.Submission{
		UserID:      req.User.ID,
		DisplayName: req.User.FirstName,
		Score:       req.Score,
		Question:    req.Question,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitScoreResponse{
		Status:   "ok",
		Level:    result.Level,
		XP:       result.XP,
		XPNeeded: result.XPNeeded,
		LevelUp:  result.LevelUp,
		Lives:    result.Lives,
	})
}

func (a *API) HandleUserProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	userID, err := parseUserID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	progress, err := a.service.Progress(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (a *API) HandleAddLife(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	defer r.Body.Close()

	var req addLifeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, fmt.Errorf("%w: invalid JSON body", domain.ErrValidation))
		return
	}
	if req.User.ID == 0 {
		writeServiceError(w, fmt.Errorf("%w: user id is required", domain.ErrValidation))
		return
	}

	lives, err := a.service.AddLife(r.Context(), req.User.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addLifeResponse{Status: "ok", Lives: lives})
}

func (a *API) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	limit, err := parseIntParam(r, "limit", 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entries, err := a.lb.Leaderboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
