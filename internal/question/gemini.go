package question

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"trivia-miniapp-service/internal/domain"
)

// maxDupRetries bounds how often a duplicate question is regenerated before
// the last attempt is returned anyway.
const maxDupRetries = 3

const systemPrompt = `You write multiple-choice trivia questions in Indonesian for a Telegram mini-app.
Respond with a single JSON object: {"question": string, "options": [4 strings], "correct_answer": index into options}.
Exactly four options, exactly one correct. Keep questions short and factual.`

// GeminiSource generates questions on demand through the Gemini API.
type GeminiSource struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiSource creates a generative source. The API key is required.
func NewGeminiSource(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiSource, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GeminiSource{client: client, model: model, timeout: timeout}, nil
}

var questionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"question":       {Type: genai.TypeString},
		"options":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"correct_answer": {Type: genai.TypeInteger},
	},
	Required: []string{"question", "options", "correct_answer"},
}

// Questions generates req.Count questions one at a time. Each question is
// regenerated up to maxDupRetries times when its hash is in req.Avoid or
// already in the batch; after that the last attempt is kept even if it is a
// duplicate, so a generation hiccup never empties the batch.
func (s *GeminiSource) Questions(ctx context.Context, req Request) ([]domain.Question, error) {
	count := req.Count
	if count <= 0 {
		count = 1
	}

	seen := make(map[string]struct{}, len(req.Avoid)+count)
	for h := range req.Avoid {
		seen[h] = struct{}{}
	}

	batch := make([]domain.Question, 0, count)
	for len(batch) < count {
		q, err := s.generateUnseen(ctx, req, batch, seen)
		if err != nil {
			return nil, err
		}
		seen[domain.QuestionHash(q.Prompt)] = struct{}{}
		batch = append(batch, q)
	}
	return batch, nil
}

func (s *GeminiSource) generateUnseen(ctx context.Context, req Request, batch []domain.Question, seen map[string]struct{}) (domain.Question, error) {
	var last domain.Question
	var lastErr error
	for attempt := 0; attempt < maxDupRetries; attempt++ {
		q, err := s.generateOne(ctx, req, batch)
		if err != nil {
			lastErr = err
			continue
		}
		last = q
		if _, dup := seen[domain.QuestionHash(q.Prompt)]; !dup {
			return q, nil
		}
	}
	if last.Prompt == "" {
		return domain.Question{}, lastErr
	}
	// Gave up avoiding duplicates; return the last attempt anyway.
	return last, nil
}

func (s *GeminiSource) generateOne(ctx context.Context, req Request, prior []domain.Question) (domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		MaxOutputTokens:  512,
		ResponseMIMEType: "application/json",
		ResponseSchema:   questionSchema,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: buildUserMessage(req, prior)}},
	}}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return domain.Question{}, fmt.Errorf("gemini generate: %w", err)
	}
	return parseGenerated([]byte(result.Text()))
}

// buildUserMessage renders the generation prompt, listing prior questions of
// the batch so the model steers away from them.
func buildUserMessage(req Request, prior []domain.Question) string {
	topic := req.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	fmt.Fprintf(&b, "Player level: %d (higher level means harder questions)\n", req.Level)
	b.WriteString("Already asked in this batch:\n")
	if len(prior) == 0 {
		b.WriteString("None\n")
	} else {
		for i, q := range prior {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q.Prompt)
		}
	}
	b.WriteString("Write one new question different from the ones above.")
	return b.String()
}
