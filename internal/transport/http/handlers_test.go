package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trivia-miniapp-service/internal/app"
	"trivia-miniapp-service/internal/domain"
	"trivia-miniapp-service/internal/infra/memory"
	"trivia-miniapp-service/internal/question"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	pools := map[string][]domain.Question{
		question.DefaultTopic: testPool(5),
	}
	source, err := question.NewStaticSourceFromPools(pools)
	if err != nil {
		t.Fatalf("build source: %v", err)
	}
	service := app.NewQuizService(memory.NewPlayerStore(), memory.NewAnswerLog(), source, app.Config{})

	mux := http.NewServeMux()
	NewAPI(service, nil).Register(mux)

	webhook, err := NewWebhookHandler("", nil)
	if err != nil {
		t.Fatalf("build webhook: %v", err)
	}
	mux.Handle("/webhook", webhook)
	return mux
}

func testPool(n int) []domain.Question {
	pool := make([]domain.Question, n)
	for i := range pool {
		pool[i] = domain.Question{
			Prompt:       fmt.Sprintf("Pertanyaan %d?", i+1),
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: i % 4,
		}
	}
	return pool
}

func do(t *testing.T, mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestQuestionsBatchEndpoint(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/questions-batch?user_id=42&level=0", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var questions []domain.Question
	if err := json.Unmarshal(rec.Body.Bytes(), &questions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}
	for _, q := range questions {
		if len(q.Options) != domain.OptionCount {
			t.Fatalf("question %q has %d options", q.Prompt, len(q.Options))
		}
	}
}

func TestQuestionsBatchRequiresUserID(t *testing.T) {
	mux := newTestMux(t)

	for _, target := range []string{"/questions-batch", "/questions-batch?user_id=abc"} {
		rec := do(t, mux, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestQuestionsBatchUnknownTopic(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/questions-batch?user_id=1&topic=olahraga", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSubmitScoreFlow(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/submit-score",
		`{"user":{"id":42,"first_name":"Alice"},"score":12,"question":"Pertanyaan 1?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp submitScoreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Level != 1 || resp.XP != 2 || resp.XPNeeded != 15 || !resp.LevelUp {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// The answered question must disappear from the next batch.
	batch := do(t, mux, http.MethodGet, "/questions-batch?user_id=42", "")
	var questions []domain.Question
	if err := json.Unmarshal(batch.Body.Bytes(), &questions); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if len(questions) != 4 {
		t.Fatalf("expected 4 unseen questions, got %d", len(questions))
	}
	for _, q := range questions {
		if q.Prompt == "Pertanyaan 1?" {
			t.Fatalf("answered question still served")
		}
	}
}

func TestSubmitScoreValidation(t *testing.T) {
	mux := newTestMux(t)

	cases := map[string]string{
		"invalid JSON":   `{"user":`,
		"missing user":   `{"score":1}`,
		"negative score": `{"user":{"id":1},"score":-2}`,
	}
	for name, body := range cases {
		rec := do(t, mux, http.MethodPost, "/submit-score", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
	}
}

func TestUserProgressDefaultsForUnknownPlayer(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/user-progress?user_id=99", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var progress domain.Progress
	if err := json.Unmarshal(rec.Body.Bytes(), &progress); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if progress.Level != 0 || progress.XP != 0 || progress.XPNeeded != 10 || progress.Lives != domain.StartingLives {
		t.Fatalf("unexpected defaults: %+v", progress)
	}
}

func TestAddLifeEndpoint(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/add-life", `{"user":{"id":7}}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown player: expected 404, got %d", rec.Code)
	}

	_ = do(t, mux, http.MethodPost, "/submit-score", `{"user":{"id":7},"score":1}`)

	rec = do(t, mux, http.MethodPost, "/add-life", `{"user":{"id":7}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp addLifeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Lives != domain.StartingLives+1 {
		t.Fatalf("expected %d lives, got %d", domain.StartingLives+1, resp.Lives)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	mux := newTestMux(t)

	_ = do(t, mux, http.MethodPost, "/submit-score", `{"user":{"id":1,"first_name":"Alice"},"score":12}`)
	_ = do(t, mux, http.MethodPost, "/submit-score", `{"user":{"id":2,"first_name":"Bob"},"score":3}`)

	rec := do(t, mux, http.MethodGet, "/leaderboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || entries[0].DisplayName != "Alice" || entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Fatalf("unexpected leaderboard: %+v", entries)
	}

	limited := do(t, mux, http.MethodGet, "/leaderboard?limit=1", "")
	var one []domain.LeaderboardEntry
	if err := json.Unmarshal(limited.Body.Bytes(), &one); err != nil {
		t.Fatalf("decode limited: %v", err)
	}
	if len(one) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(one))
	}
}

func TestWebhookAlwaysAcks(t *testing.T) {
	mux := newTestMux(t)

	for name, body := range map[string]string{
		"valid update": `{"update_id":1,"message":{"message_id":1,"text":"/start","chat":{"id":5}}}`,
		"garbage":      `not json at all`,
	} {
		rec := do(t, mux, http.MethodPost, "/webhook", body)
		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Fatalf("%s: expected 200 ok, got %d %q", name, rec.Code, rec.Body.String())
		}
	}
}

func TestMethodsAreEnforced(t *testing.T) {
	mux := newTestMux(t)

	checks := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/questions-batch?user_id=1"},
		{http.MethodGet, "/submit-score"},
		{http.MethodPost, "/user-progress?user_id=1"},
		{http.MethodGet, "/add-life"},
		{http.MethodPost, "/leaderboard"},
		{http.MethodGet, "/webhook"},
	}
	for _, c := range checks {
		rec := do(t, mux, c.method, c.target, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: expected 405, got %d", c.method, c.target, rec.Code)
		}
	}
}
