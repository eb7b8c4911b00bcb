package common

import (
	"context"
	"io"

	"interviewcoach/internal/ai"
	"interviewcoach/internal/errors"
	"interviewcoach/internal/formatters"
)

// BuildInputFunc assembles the operation input from flags, arguments or files
type BuildInputFunc[Input any] func(files *FileProcessor) (Input, error)

// OperationFunc runs one interview operation and reports its token usage
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, *ai.TokenUsage, error)

// RunCommand wires input building, the operation and output formatting for one-shot CLI commands
func RunCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	stdout io.Writer,
	buildInput BuildInputFunc[Input],
	operation OperationFunc[Input, Output],
) error {
	files := NewFileProcessor(logger, cmdConfig.MaxFileSize)
	outputHandler := NewOutputHandler(formatters.NewFormatterRegistry(), stdout, logger)

	input, err := buildInput(files)
	if err != nil {
		return err
	}

	result, tokenUsage, err := operation(ctx, input)
	if err != nil {
		return err
	}

	if tokenUsage != nil {
		logger.Info("AI token usage",
			"input_tokens", tokenUsage.InputTokens,
			"output_tokens", tokenUsage.OutputTokens,
			"total_tokens", tokenUsage.TotalTokens)
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
