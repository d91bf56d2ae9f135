package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agent-falcon/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// ErrEmptyResponse is returned when the model answers with no choices.
var ErrEmptyResponse = errors.New("no response from LLM")

// GigaChatAgent answers through the GigaChat chat completion API.
type GigaChatAgent struct {
	client    *gigago.Client
	model     *gigago.GenerativeModel
	modelName string
	logger    *zap.Logger
}

func NewGigaChatAgent(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatAgent, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = financialInstruction
	model.Temperature = 0.3

	logger.Info("GigaChat agent ready", zap.String("model", cfg.Model))

	return &GigaChatAgent{
		client:    client,
		model:     model,
		modelName: cfg.Model,
		logger:    logger,
	}, nil
}

func (a *GigaChatAgent) Generate(ctx context.Context, in Input) (Response, error) {
	msgs := Messages(in)
	messages := make([]gigago.Message, 0, len(msgs))
	for _, m := range msgs {
		messages = append(messages, gigago.Message{Role: gigago.RoleUser, Content: m.Content})
	}

	resp, err := a.model.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	a.logger.Debug("GigaChat response received",
		zap.Int("messages", len(messages)),
		zap.Int("text_length", len(text)),
	)

	return Response{
		"text":  text,
		"model": a.modelName,
	}, nil
}

func (a *GigaChatAgent) Close() error {
	if a.client != nil {
		a.client.Close()
	}
	return nil
}
