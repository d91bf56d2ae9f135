package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"agent-falcon/internal/apperror"
	"agent-falcon/pkg/config"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAgent struct{}

func (stubAgent) Generate(context.Context, Input) (Response, error) {
	return Response{"text": "ok"}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Resolve("financialAgent")
	assert.False(t, ok)

	r.Register("financialAgent", stubAgent{})
	r.Register("auditAgent", stubAgent{})

	a, ok := r.Resolve("financialAgent")
	require.True(t, ok)
	resp, err := a.Generate(context.Background(), PlainInput{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp["text"])

	assert.Equal(t, []string{"auditAgent", "financialAgent"}, r.Names())
}

func TestMessages(t *testing.T) {
	assert.Equal(t,
		[]Message{{Role: RoleUser, Content: "Summarize"}},
		Messages(PlainInput{Text: "Summarize"}),
	)

	conv := Conversation{Messages: []Message{
		{Role: RoleUser, Content: "Summarize"},
		{Role: RoleUser, Content: "Transactions:\n[]"},
	}}
	assert.Equal(t, conv.Messages, Messages(conv))
	assert.Nil(t, Messages(nil))
}

func newAnthropicTestAgent(t *testing.T, handler http.HandlerFunc) *AnthropicAgent {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.AnthropicConfig{APIKey: "test-key", Model: "claude-test", MaxTokens: 256}
	return NewAnthropicAgent(cfg, zap.NewNop(), option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
}

func TestAnthropicAgentGenerate(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}

	a := newAnthropicTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "Cut the coffee budget."}],
			"stop_reason": "end_turn",
			"stop_sequence": null,
			"usage": {"input_tokens": 12, "output_tokens": 5}
		}`))
	})

	resp, err := a.Generate(context.Background(), Conversation{Messages: []Message{
		{Role: RoleUser, Content: "Summarize"},
		{Role: RoleUser, Content: "Transactions:\n[]"},
	}})
	require.NoError(t, err)

	assert.Equal(t, "Cut the coffee budget.", resp["text"])
	assert.Equal(t, "claude-test", resp["model"])
	assert.Equal(t, "end_turn", resp["stopReason"])

	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	require.Len(t, got.System, 1)
	assert.Equal(t, financialInstruction, got.System[0].Text)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "Summarize", got.Messages[0].Content[0].Text)
	assert.Equal(t, "Transactions:\n[]", got.Messages[1].Content[0].Text)
}

func TestAnthropicAgentKeepsUpstreamStatus(t *testing.T) {
	a := newAnthropicTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	})

	_, err := a.Generate(context.Background(), PlainInput{Text: "hi"})
	require.Error(t, err)

	status, ok := apperror.StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, status)
}

func TestAnthropicAgentEmptyContent(t *testing.T) {
	a := newAnthropicTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_2","type":"message","role":"assistant","model":"claude-test",
			"content":[],"stop_reason":"end_turn","stop_sequence":null,"usage":{"input_tokens":1,"output_tokens":0}}`))
	})

	_, err := a.Generate(context.Background(), PlainInput{Text: "hi"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
