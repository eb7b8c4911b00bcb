package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"interviewcoach/internal/config"
	"interviewcoach/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// pingPrompt is the fixed prompt used to check the inference endpoint
const pingPrompt = "Say 'API test successful'"

// Service runs completions for one operation. It is built once and shared by handlers.
type Service struct {
	Provider  AIProvider
	config    *config.OperationAIConfig
	operation string
	prompts   *config.PromptStore
	breaker   *AICircuitBreaker
	logger    *errors.Logger
}

// NewService creates the service for an operation from its merged configuration
func NewService(ctx context.Context, cfg *config.OperationAIConfig, operation string, prompts *config.PromptStore, logger *errors.Logger) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"Inference API key is not configured (set HF_TOKEN or ai.apiKey)", nil).
			WithContext("operation", operation)
	}

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation_type", operation,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"max_tokens", *cfg.MaxTokens,
		"timeout", *cfg.Timeout,
		"use_system_prompts", *cfg.UseSystemPrompts)

	var provider AIProvider
	switch cfg.Provider {
	case "huggingface", "openai":
		provider = NewOpenAIProvider(cfg, logger)
	case "gemini":
		p, err := NewGeminiProvider(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	return NewServiceWithProvider(provider, cfg, operation, prompts, logger), nil
}

// NewServiceWithProvider wires a service around an existing provider
func NewServiceWithProvider(provider AIProvider, cfg *config.OperationAIConfig, operation string, prompts *config.PromptStore, logger *errors.Logger) *Service {
	return &Service{
		Provider:  provider,
		config:    cfg,
		operation: operation,
		prompts:   prompts,
		breaker:   NewAICircuitBreaker(operation, cfg, logger),
		logger:    logger.With("operation", operation),
	}
}

// Model returns the configured model identifier
func (s *Service) Model() string {
	return s.config.Model
}

// ProviderName returns the name of the backing provider
func (s *Service) ProviderName() string {
	return s.Provider.Name()
}

// Prompts resolves the system prompt and user prompt template for the operation
func (s *Service) Prompts() PromptPair {
	inlineSystem, inlineUser := s.config.CustomPrompts.InlinePrompts(s.operation)
	return PromptPair{
		System: resolvePrompt(s.prompts.Get(s.operation, config.PromptSystem), inlineSystem, DefaultSystemPrompts[s.operation]),
		User:   resolvePrompt(s.prompts.Get(s.operation, config.PromptUser), inlineUser, DefaultUserPrompts[s.operation]),
	}
}

// Complete sends one request through the circuit breaker under the operation timeout.
// Unset request fields take the operation's configured values.
func (s *Service) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if req.Operation == "" {
		req.Operation = s.operation
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = *s.config.MaxTokens
	}
	if req.Temperature == nil {
		t := *s.config.Temperature
		req.Temperature = &t
	}
	if !*s.config.UseSystemPrompts && req.SystemPrompt != "" {
		req.UserPrompt = req.SystemPrompt + "\n\n" + req.UserPrompt
		req.SystemPrompt = ""
	}

	ctx, cancel := context.WithTimeout(ctx, *s.config.Timeout)
	defer cancel()

	ctx, span := otel.Tracer("interviewcoach.ai").Start(ctx, "ai."+req.Operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", s.Provider.Name()),
		attribute.String("ai.model", s.config.Model),
		attribute.Int("ai.max_tokens", req.MaxTokens),
		attribute.Float64("ai.temperature", float64(*req.Temperature)),
		attribute.Int("input.prompt_length", len(req.SystemPrompt)+len(req.UserPrompt)),
	)

	start := time.Now()
	completion, err := s.breaker.Execute(func() (*Completion, error) {
		c, err := s.Provider.Complete(ctx, req)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(c.Text) == "" {
			return nil, ErrEmptyResponse
		}
		return c, nil
	})
	elapsed := time.Since(start)

	if err != nil {
		kind := ClassifyError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		span.SetAttributes(attribute.String("ai.failure_kind", string(kind)))

		appErr := errors.NewAIError(errors.ErrCodeAIUpstreamFailed, "Inference call failed for "+req.Operation, err).
			WithContext("failure_kind", string(kind)).
			WithContext("elapsed_ms", elapsed.Milliseconds())
		if kind == FailureTimeout {
			appErr.Code = errors.ErrCodeAITimeout
		}
		return nil, appErr
	}

	span.SetAttributes(
		attribute.String("ai.finish_reason", completion.FinishReason),
		attribute.Int("output.length", len(completion.Text)),
	)
	if u := completion.TokenUsage; u != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", u.InputTokens),
			attribute.Int64("ai.tokens.output", u.OutputTokens),
			attribute.Int64("ai.tokens.total", u.TotalTokens),
		)
	}
	s.logger.Debug("Inference call completed",
		"model", completion.Model,
		"finish_reason", completion.FinishReason,
		"response_length", len(completion.Text),
		"duration_ms", elapsed.Milliseconds())

	return completion, nil
}

// PingResult is the outcome of a connectivity check
type PingResult struct {
	Response string
	Model    string
	Latency  time.Duration
}

// Ping sends a minimal prompt to confirm the endpoint answers
func (s *Service) Ping(ctx context.Context) (*PingResult, error) {
	zero := float32(0)
	start := time.Now()
	completion, err := s.Complete(ctx, CompletionRequest{
		Operation:   "ping",
		UserPrompt:  pingPrompt,
		MaxTokens:   10,
		Temperature: &zero,
	})
	if err != nil {
		return nil, err
	}
	return &PingResult{
		Response: strings.TrimSpace(completion.Text),
		Model:    s.config.Model,
		Latency:  time.Since(start),
	}, nil
}

// GetModelInfo returns information about the configured model
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// CircuitBreakerStats returns the breaker state of this operation
func (s *Service) CircuitBreakerStats() CircuitBreakerStats {
	return s.breaker.GetStats()
}

// Healthy reports whether the operation's breaker is not open
func (s *Service) Healthy() bool {
	return s.breaker.IsHealthy()
}

// Close releases the provider
func (s *Service) Close() error {
	return s.Provider.Close()
}
