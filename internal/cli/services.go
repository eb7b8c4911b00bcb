package cli

import (
	"context"
	"fmt"

	"interviewcoach/internal/ai"
	"interviewcoach/internal/config"
	"interviewcoach/internal/errors"
	"interviewcoach/internal/interview"
	"interviewcoach/internal/server"
)

// interviewServices bundles the per-operation inference services with the
// generator and evaluator built on top of them
type interviewServices struct {
	generateAI *ai.Service
	evaluateAI *ai.Service
	generator  *interview.Generator
	evaluator  *interview.Evaluator
	logger     *errors.Logger
}

func buildInterviewServices(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*interviewServices, error) {
	if !cfg.HasAPIKey() {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"Inference API key is not configured (set HF_TOKEN or ai.apiKey)", nil)
	}

	generateCfg := cfg.GetGenerateConfig()
	generateAI, err := ai.NewService(ctx, &generateCfg, config.OperationGenerate, cfg.Prompts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI service for %s: %w", config.OperationGenerate, err)
	}

	evaluateCfg := cfg.GetEvaluateConfig()
	evaluateAI, err := ai.NewService(ctx, &evaluateCfg, config.OperationEvaluate, cfg.Prompts, logger)
	if err != nil {
		_ = generateAI.Close()
		return nil, fmt.Errorf("failed to create AI service for %s: %w", config.OperationEvaluate, err)
	}

	return &interviewServices{
		generateAI: generateAI,
		evaluateAI: evaluateAI,
		generator:  interview.NewGenerator(generateAI, cfg.Interview, logger),
		evaluator:  interview.NewEvaluator(evaluateAI, cfg.Interview, logger),
		logger:     logger,
	}, nil
}

func (s *interviewServices) forServer() server.Services {
	return server.Services{
		Generator:  s.generator,
		Evaluator:  s.evaluator,
		GenerateAI: s.generateAI,
		EvaluateAI: s.evaluateAI,
	}
}

func (s *interviewServices) Close() {
	for _, svc := range []*ai.Service{s.generateAI, s.evaluateAI} {
		if err := svc.Close(); err != nil {
			s.logger.Warn("Failed to close AI service", "error", err)
		}
	}
}
