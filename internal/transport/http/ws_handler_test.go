package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"trivia-miniapp-service/internal/app"
	"trivia-miniapp-service/internal/domain"
	"trivia-miniapp-service/internal/infra/memory"
	"trivia-miniapp-service/internal/question"
)

func TestWSLeaderboardFeed(t *testing.T) {
	source, err := question.NewStaticSourceFromPools(map[string][]domain.Question{
		question.DefaultTopic: testPool(3),
	})
	if err != nil {
		t.Fatalf("build source: %v", err)
	}
	service := app.NewQuizService(memory.NewPlayerStore(), memory.NewAnswerLog(), source, app.Config{})

	if _, err := service.SubmitScore(context.Background(), app.Submission{UserID: 1, DisplayName: "Alice", Score: 2}); err != nil {
		t.Fatalf("seed submit: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/leaderboard", NewWSHandler(service).ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var initial leaderboardMessage
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if initial.Type != "leaderboard" || len(initial.Entries) != 1 || initial.Entries[0].DisplayName != "Alice" {
		t.Fatalf("unexpected initial snapshot: %+v", initial)
	}

	if _, err := service.SubmitScore(context.Background(), app.Submission{UserID: 2, DisplayName: "Bob", Score: 15}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	var update leaderboardMessage
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if len(update.Entries) != 2 || update.Entries[0].DisplayName != "Bob" {
		t.Fatalf("unexpected update: %+v", update)
	}
}
