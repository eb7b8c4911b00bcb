package cli

import (
	"fmt"

	"interviewcoach/internal/ai"
	"interviewcoach/internal/config"

	"github.com/spf13/cobra"
)

func newPingCmd() *cobra.Command {
	var operation string

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Send a minimal prompt to check the model endpoint",
		Long: `Send a short fixed prompt to the configured model and print its reply and
the round-trip latency. Use --operation to check the evaluate model when it
is configured differently from the generate model.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := getConfigFromContext(ctx)
			logger := getLoggerFromContext(ctx)

			opCfg, err := cfg.GetOperationConfig(operation)
			if err != nil {
				return err
			}
			svc, err := ai.NewService(ctx, &opCfg, operation, cfg.Prompts, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := svc.Close(); err != nil {
					logger.Warn("Failed to close AI service", "error", err)
				}
			}()

			result, err := svc.Ping(ctx)
			if err != nil {
				return fmt.Errorf("model did not answer (%s): %w", ai.ClassifyError(err), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Provider: %s\n", svc.ProviderName())
			fmt.Fprintf(out, "Model:    %s\n", result.Model)
			fmt.Fprintf(out, "Latency:  %dms\n", result.Latency.Milliseconds())
			fmt.Fprintf(out, "Response: %s\n", result.Response)

			info := svc.GetModelInfo(ctx)
			if info.Available {
				fmt.Fprintln(out, "Model listed: yes")
			} else {
				fmt.Fprintf(out, "Model listed: no (%s)\n", info.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&operation, "operation", config.OperationGenerate, "Operation whose model to check: generate or evaluate")
	return cmd
}
