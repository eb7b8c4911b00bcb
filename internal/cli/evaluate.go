package cli

import (
	"context"
	"fmt"

	"interviewcoach/internal/ai"
	"interviewcoach/internal/common"
	"interviewcoach/internal/errors"
	"interviewcoach/internal/types"

	"github.com/spf13/cobra"
)

type evaluateOptions struct {
	output   common.CommandConfig
	question string
	answer   string
	category string
}

func newEvaluateCmd() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate --question <text> [answer-file]",
		Short: "Score an answer to an interview question",
		Long: `Score a candidate answer from 0 to 10 and print short feedback.
The answer is read from the optional file argument or from --answer.
An empty answer scores 0 without calling the model.`,
		Example: `  interviewcoach evaluate --question "What is a goroutine?" answer.txt
  interviewcoach evaluate --question "Explain CAP" --answer "..." --category coding-challenge`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && cmd.Flags().Changed("answer") {
				return fmt.Errorf("provide the answer either as a file or with --answer, not both")
			}
			if opts.category != "" {
				if _, ok := types.ParseCategory(opts.category); !ok {
					return fmt.Errorf("unknown category %q", opts.category)
				}
			}
			return resolveOutputConfig(cmd, &opts.output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.question, "question", "q", "", "Interview question being answered")
	cmd.Flags().StringVarP(&opts.answer, "answer", "a", "", "Answer text (instead of an answer file)")
	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "Question category, e.g. theory or hr-behavioral")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.RegisterFlagCompletionFunc("category", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, len(types.Categories))
		for _, c := range types.Categories {
			names = append(names, string(c))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	addOutputFlags(cmd, &opts.output)
	return cmd
}

func runEvaluate(cmd *cobra.Command, args []string, opts *evaluateOptions) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	services, err := buildInterviewServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	buildInput := func(files *common.FileProcessor) (types.EvaluateAnswerInput, error) {
		input := types.EvaluateAnswerInput{Question: opts.question, Answer: opts.answer}
		if len(args) == 1 {
			answer, err := files.ReadAnswerFile(args[0])
			if err != nil {
				return input, err
			}
			input.Answer = answer
		}
		if c, ok := types.ParseCategory(opts.category); ok {
			input.Category = c
		}
		logger.Info("Evaluating answer",
			"question_chars", len(input.Question),
			"answer_chars", len(input.Answer),
			"category", input.Category,
			"output_format", opts.output.OutputFormat)
		return input, nil
	}

	evaluate := func(ctx context.Context, input types.EvaluateAnswerInput) (*types.Evaluation, *ai.TokenUsage, error) {
		result, err := services.evaluator.Evaluate(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		if result.Evaluation.Fallback {
			args := []any{"outcome", result.Outcome}
			if result.Cause != nil {
				args = append(args, "failure_kind", result.FailureKind, "error", result.Cause.Error())
			}
			logger.Warn("Evaluation fell back to the neutral score", args...)
		}
		return &result.Evaluation, result.Usage, nil
	}

	if err := common.RunCommand(ctx, logger, opts.output, cmd.OutOrStdout(), buildInput, evaluate); err != nil {
		if errors.IsType(err, errors.ErrorTypeValidation) {
			return err
		}
		return fmt.Errorf("failed to evaluate answer: %w", err)
	}
	return nil
}
