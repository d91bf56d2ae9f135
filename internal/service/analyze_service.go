package service

import (
	"context"
	"fmt"
	"time"

	"agent-falcon/internal/agent"
	"agent-falcon/internal/apperror"
	"agent-falcon/internal/dto"
	"agent-falcon/pkg/config"
	"agent-falcon/pkg/metrics"

	"go.uber.org/zap"
)

// AnalyzeService forwards validated requests to the configured agent.
type AnalyzeService struct {
	resolver  agent.Resolver
	agentName string
	timeout   time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewAnalyzeService(resolver agent.Resolver, cfg *config.AgentConfig, m *metrics.Metrics, logger *zap.Logger) *AnalyzeService {
	return &AnalyzeService{
		resolver:  resolver,
		agentName: cfg.Name,
		timeout:   cfg.Timeout,
		metrics:   m,
		logger:    logger,
	}
}

type generateResult struct {
	resp agent.Response
	err  error
}

// Analyze shapes req, resolves the agent and invokes it under the configured
// timeout. Errors keep the HTTP status they carry; everything else is a 500.
func (s *AnalyzeService) Analyze(ctx context.Context, req *dto.AnalyzeRequest) (agent.Response, error) {
	input, err := Shape(req)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to shape request: %w", err))
	}

	a, ok := s.resolver.Resolve(s.agentName)
	if !ok {
		s.logger.Warn("Agent not registered", zap.String("agent", s.agentName))
		return nil, apperror.AgentNotFound(s.agentName)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// buffered so a late answer never blocks the agent goroutine
	done := make(chan generateResult, 1)
	start := time.Now()
	go func() {
		resp, err := a.Generate(ctx, input)
		done <- generateResult{resp: resp, err: err}
	}()

	var res generateResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = fmt.Errorf("agent %s did not respond: %w", s.agentName, ctx.Err())
	}
	elapsed := time.Since(start)

	if res.err != nil {
		s.metrics.ObserveAgentCall(s.agentName, "error", elapsed)
		s.logger.Error("Agent call failed",
			zap.String("agent", s.agentName),
			zap.Duration("elapsed", elapsed),
			zap.Error(res.err),
		)
		return nil, apperror.FromError(res.err)
	}

	s.metrics.ObserveAgentCall(s.agentName, "success", elapsed)
	s.logger.Info("Agent call completed",
		zap.String("agent", s.agentName),
		zap.Duration("elapsed", elapsed),
	)

	if res.resp == nil {
		return agent.Response{}, nil
	}
	return res.resp, nil
}
