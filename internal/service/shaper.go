package service

import (
	"fmt"

	"agent-falcon/internal/agent"
	"agent-falcon/internal/dto"

	"github.com/goccy/go-json"
)

const (
	transactionsPrefix = "Transactions:\n"
	metadataPrefix     = "Metadata:\n"
)

// Shape builds the agent input for a validated request. Requests without
// transactions or metadata go through as plain text; anything else becomes a
// conversation with the data serialized as indented JSON.
func Shape(req *dto.AnalyzeRequest) (agent.Input, error) {
	if !req.HasContext() {
		return agent.PlainInput{Text: req.Input}, nil
	}

	messages := []agent.Message{{Role: agent.RoleUser, Content: req.Input}}

	if req.Transactions != nil {
		data, err := json.MarshalIndent(req.Transactions, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize transactions: %w", err)
		}
		messages = append(messages, agent.Message{Role: agent.RoleUser, Content: transactionsPrefix + string(data)})
	}

	if req.Metadata != nil {
		data, err := json.MarshalIndent(req.Metadata, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize metadata: %w", err)
		}
		messages = append(messages, agent.Message{Role: agent.RoleUser, Content: metadataPrefix + string(data)})
	}

	return agent.Conversation{Messages: messages}, nil
}
