package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agent-falcon/internal/apperror"
	"agent-falcon/pkg/config"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

// AnthropicAgent answers through the Anthropic Messages API.
type AnthropicAgent struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	logger    *zap.Logger
}

func NewAnthropicAgent(cfg *config.AnthropicConfig, logger *zap.Logger, opts ...option.RequestOption) *AnthropicAgent {
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)

	logger.Info("Anthropic agent ready", zap.String("model", cfg.Model))

	return &AnthropicAgent{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		logger:    logger,
	}
}

func (a *AnthropicAgent) Generate(ctx context.Context, in Input) (Response, error) {
	msgs := Messages(in)
	messages := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  messages,
		System:    []anthropic.TextBlockParam{{Text: financialInstruction}},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			// keep the upstream status so callers see 429/401/5xx as-is
			return nil, apperror.WithStatus(apiErr.StatusCode, fmt.Errorf("anthropic: %w", err))
		}
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, ErrEmptyResponse
	}

	a.logger.Debug("Anthropic response received",
		zap.String("id", msg.ID),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	return Response{
		"text":       strings.TrimSpace(text.String()),
		"model":      string(msg.Model),
		"stopReason": string(msg.StopReason),
		"usage": map[string]int64{
			"inputTokens":  msg.Usage.InputTokens,
			"outputTokens": msg.Usage.OutputTokens,
		},
	}, nil
}
