package assistant

import (
	"context"
	"log/slog"

	"github.com/dukerupert/flourish/internal/model"
	"github.com/dukerupert/flourish/internal/store"
	openai "github.com/sashabaranov/go-openai"
)

const (
	chatModel       = openai.GPT4oMini
	chatTemperature = 0.8
	chatMaxTokens   = 200
)

// Completer produces one assistant reply from a system prompt and a user
// message.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

type openAICompleter struct {
	client *openai.Client
}

// NewOpenAICompleter builds a Completer backed by the OpenAI chat API.
func NewOpenAICompleter(apiKey string) Completer {
	return &openAICompleter{client: openai.NewClient(apiKey)}
}

func (c *openAICompleter) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       chatModel,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// Reply is the outcome of one chat turn. Fallback is set when the model
// could not be reached and a canned reply was substituted.
type Reply struct {
	Text     string `json:"reply"`
	Fallback bool   `json:"fallback"`
}

type Service struct {
	completer Completer
	users     *store.UserStore
	moods     *store.MoodStore
	journal   *store.JournalStore
	goals     *store.GoalStore
	habits    *store.HabitStore
	chat      *store.ChatStore
	logger    *slog.Logger
}

func NewService(completer Completer, users *store.UserStore, moods *store.MoodStore, journal *store.JournalStore, goals *store.GoalStore, habits *store.HabitStore, chat *store.ChatStore, logger *slog.Logger) *Service {
	return &Service{
		completer: completer,
		users:     users,
		moods:     moods,
		journal:   journal,
		goals:     goals,
		habits:    habits,
		chat:      chat,
		logger:    logger,
	}
}

// Configured reports whether a model backend is available.
func (s *Service) Configured() bool {
	return s.completer != nil
}

// Chat runs one turn: assemble the user's context, ask the model, and log
// both sides of the exchange. A model failure degrades to a canned reply
// rather than an error, and chat-log write failures never surface to the
// caller.
func (s *Service) Chat(ctx context.Context, userID int64, message string) Reply {
	systemPrompt := s.buildSystemPrompt(ctx, userID)

	var reply Reply
	text, err := s.completer.Complete(ctx, systemPrompt, message)
	if err != nil {
		s.logger.Warn("completion failed, using fallback", "error", err, "user_id", userID)
		reply = Reply{Text: fallbackReply(), Fallback: true}
	} else {
		reply = Reply{Text: text}
	}

	if _, err := s.chat.Create(userID, model.ChatRoleUser, message); err != nil {
		s.logger.Error("log user message", "error", err, "user_id", userID)
	}
	if _, err := s.chat.Create(userID, model.ChatRoleAssistant, reply.Text); err != nil {
		s.logger.Error("log assistant reply", "error", err, "user_id", userID)
	}

	return reply
}

// History returns the user's recent chat log, oldest first.
func (s *Service) History(userID int64, limit int) ([]model.ChatMessage, error) {
	return s.chat.List(userID, limit)
}
