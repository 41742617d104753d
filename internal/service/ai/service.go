package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/claritylabs/clarity/backend/internal/config"
	"github.com/claritylabs/clarity/backend/internal/logger"
	"github.com/claritylabs/clarity/backend/internal/model/chat"
	"github.com/claritylabs/clarity/backend/internal/model/therapy"
)

// Service generates therapeutic responses through the configured chat model.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
	log       *logger.Logger
}

// NewService compiles the generation chain: therapeutic system prompt,
// recent history, then the enriched user query.
func NewService(ctx context.Context, cfg config.AIConfig, log *logger.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &Service{chatModel: chatModel, cfg: cfg, chain: runnable, log: log}, nil
}

// GenerateResponse produces a structured therapeutic reply for the assembled
// conversation context. Errors must be handled by the caller; the
// orchestrator substitutes the fixed fallback.
func (s *Service) GenerateResponse(ctx context.Context, userMessage string, convCtx *therapy.Context) (*therapy.Response, error) {
	input := map[string]any{
		"system":  BuildSystemPrompt(convCtx),
		"history": historyMessages(convCtx.History),
		"query":   userMessage,
	}

	msg, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run generation chain: %w", err)
	}
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return nil, fmt.Errorf("generation returned empty content")
	}

	s.log.Info("generated response", "session", convCtx.SessionID, "length", len(content))
	return BuildResponse(content, convCtx), nil
}

func historyMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}
	history := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}
