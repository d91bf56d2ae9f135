// Package agent defines the capability the gateway forwards analysis requests
// to, the inputs it accepts and a registry to resolve agents by name.
package agent

import (
	"context"
	"sort"
	"sync"
)

// Role of a conversation message. Only user messages are produced by the
// gateway.
type Role string

const RoleUser Role = "user"

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Input is either PlainInput or Conversation.
type Input interface {
	isInput()
}

// PlainInput is a single user prompt with no supporting data.
type PlainInput struct {
	Text string
}

// Conversation is an ordered list of messages, the first one being the
// user's request.
type Conversation struct {
	Messages []Message
}

func (PlainInput) isInput()   {}
func (Conversation) isInput() {}

// Messages flattens any Input into the message list sent to a model.
func Messages(in Input) []Message {
	switch v := in.(type) {
	case PlainInput:
		return []Message{{Role: RoleUser, Content: v.Text}}
	case Conversation:
		return v.Messages
	default:
		return nil
	}
}

// Response is the agent's answer, returned to the caller as-is.
type Response map[string]any

type Agent interface {
	Generate(ctx context.Context, in Input) (Response, error)
}

type Resolver interface {
	Resolve(name string) (Agent, bool)
}

// Registry is a concurrency-safe Resolver.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

func (r *Registry) Register(name string, a Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[name] = a
}

func (r *Registry) Resolve(name string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	return a, ok
}

// Names lists registered agents in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
