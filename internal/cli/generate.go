package cli

import (
	"context"
	"fmt"
	"strings"

	"interviewcoach/internal/ai"
	"interviewcoach/internal/common"
	"interviewcoach/internal/types"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var cmdConfig common.CommandConfig

	cmd := &cobra.Command{
		Use:   "generate <role>",
		Short: "Generate an interview question set for a job role",
		Long: `Generate six interview questions for a job role, one per category:
aptitude, code completion, coding challenge, tech-specific, technical
theory and HR/behavioral. Words after the command are joined into the role.

When the model is unavailable the default questions are printed instead
and a warning is logged.`,
		Example: `  interviewcoach generate Backend Engineer
  interviewcoach generate "Data Scientist" --format markdown -o questions.md`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveOutputConfig(cmd, &cmdConfig)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, strings.Join(args, " "), cmdConfig)
		},
	}
	addOutputFlags(cmd, &cmdConfig)
	return cmd
}

func runGenerate(cmd *cobra.Command, role string, cmdConfig common.CommandConfig) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	services, err := buildInterviewServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	buildInput := func(*common.FileProcessor) (types.GenerateQuestionsInput, error) {
		logger.Info("Generating question set", "role", role, "output_format", cmdConfig.OutputFormat)
		return types.GenerateQuestionsInput{Role: role}, nil
	}

	generate := func(ctx context.Context, input types.GenerateQuestionsInput) (*types.QuestionSet, *ai.TokenUsage, error) {
		result, err := services.generator.Generate(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		if result.Set.Warning != "" {
			logger.Warn(result.Set.Warning, "outcome", result.Outcome)
		}
		return result.Set, result.Usage, nil
	}

	if err := common.RunCommand(ctx, logger, cmdConfig, cmd.OutOrStdout(), buildInput, generate); err != nil {
		return fmt.Errorf("failed to generate questions: %w", err)
	}
	return nil
}
