package http

import (
	"encoding/json"
	"log"
	"net/http"

	tele "gopkg.in/telebot.v3"

	"trivia-miniapp-service/internal/domain"
)

// WebhookHandler acknowledges Telegram webhook updates. When a bot token is
// configured the update is fed to the bot, which answers /start and /kuis;
// without a token every update is acked and dropped. Handler failures are
// logged and never propagated: Telegram re-sends updates on non-200s, so
// the endpoint always answers "ok".
type WebhookHandler struct {
	bot *tele.Bot
}

// NewWebhookHandler builds the webhook endpoint. pick supplies the question
// for the /kuis quiz poll.
func NewWebhookHandler(token string, pick func() (domain.Question, bool)) (*WebhookHandler, error) {
	h := &WebhookHandler{}
	if token == "" {
		return h, nil
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:       token,
		Synchronous: true,
		OnError: func(err error, _ tele.Context) {
			log.Printf("webhook bot: %v", err)
		},
	})
	if err != nil {
		return nil, err
	}

	bot.Handle("/start", func(c tele.Context) error {
		return c.Send("Hai " + c.Sender().FirstName + "! Ketik /kuis untuk memulai.")
	})
	bot.Handle("/kuis", func(c tele.Context) error {
		q, ok := pick()
		if !ok {
			return c.Send("Belum ada soal tersedia.")
		}
		poll := &tele.Poll{
			Type:          tele.PollQuiz,
			Question:      q.Prompt,
			CorrectOption: q.CorrectIndex,
		}
		poll.AddOptions(q.Options...)
		return c.Send(poll)
	})

	h.bot = bot
	return h, nil
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	defer r.Body.Close()

	var update tele.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("webhook: undecodable update: %v", err)
	} else if h.bot != nil {
		h.bot.ProcessUpdate(update)
	}

	w.Write([]byte("ok"))
}
