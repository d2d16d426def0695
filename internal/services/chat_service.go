package services

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mcala/biaslab/internal/ai"
	"github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/logger"
	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/state"
)

// chatContextWindow bounds how much transcript is sent to the model.
const chatContextWindow = 20

// ChatService runs the streaming tutor dialogue. The transcript lives in
// the persisted state and is pruned with everything else.
type ChatService interface {
	History(ctx context.Context) []models.ChatMessage

	// StreamMessage appends the user message, streams the assistant reply
	// through onToken, and persists the completed reply. A reply that
	// finishes after Invalidate was called is discarded instead of
	// written, so a stale response never lands in a fresh transcript.
	StreamMessage(ctx context.Context, content string, onToken func(token string) error) (*models.ChatMessage, error)

	// Invalidate marks in-flight replies stale after an import or reset.
	Invalidate()
}

type chatService struct {
	manager    *state.Manager
	generator  ai.Generator
	generation atomic.Uint64
}

// NewChatService creates a new ChatService
func NewChatService(manager *state.Manager, generator ai.Generator) ChatService {
	return &chatService{
		manager:   manager,
		generator: generator,
	}
}

func (s *chatService) History(ctx context.Context) []models.ChatMessage {
	return s.manager.Snapshot().ChatHistory
}

func (s *chatService) Invalidate() {
	s.generation.Add(1)
}

func (s *chatService) StreamMessage(ctx context.Context, content string, onToken func(string) error) (*models.ChatMessage, error) {
	log := logger.FromContext(ctx)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.NewValidationError("content", "cannot be empty")
	}

	generation := s.generation.Load()
	now := time.Now()

	userMsg := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      "user",
		Content:   content,
		CreatedAt: now.UnixMilli(),
	}
	if err := s.manager.Update(ctx, func(st *models.AppState) error {
		st.ChatHistory = append(st.ChatHistory, userMsg)
		return nil
	}); err != nil {
		return nil, err
	}

	messages := s.buildContext()
	log.Debug("streaming chat reply: context=%d messages", len(messages))

	tokens, errs := s.generator.StreamChat(ctx, messages)
	var reply strings.Builder
	for token := range tokens {
		if token == "" {
			continue
		}
		reply.WriteString(token)
		if err := onToken(token); err != nil {
			// The client went away; the reply so far is still worth keeping.
			log.Debug("token delivery stopped: %v", err)
			break
		}
	}
	if err := <-errs; err != nil {
		// No assistant turn is written: the user can retry and the
		// transcript stays consistent.
		return nil, err
	}

	assistantMsg := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      "assistant",
		Content:   reply.String(),
		CreatedAt: time.Now().UnixMilli(),
	}

	if s.generation.Load() != generation {
		log.Debug("discarding stale chat reply")
		return &assistantMsg, nil
	}

	if err := s.manager.Update(ctx, func(st *models.AppState) error {
		st.ChatHistory = append(st.ChatHistory, assistantMsg)
		return nil
	}); err != nil {
		return nil, err
	}
	return &assistantMsg, nil
}

func (s *chatService) buildContext() []ai.Message {
	history := s.manager.Snapshot().ChatHistory
	if len(history) > chatContextWindow {
		history = history[len(history)-chatContextWindow:]
	}

	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, ai.Message{Role: "system", Content: ai.ChatSystemPrompt})
	for _, msg := range history {
		messages = append(messages, ai.Message{Role: msg.Role, Content: msg.Content})
	}
	return messages
}
