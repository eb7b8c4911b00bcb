package cli

import (
	"interviewcoach/internal/common"
	"interviewcoach/internal/formatters"

	"github.com/spf13/cobra"
)

// addOutputFlags registers --format and --output on a one-shot command
func addOutputFlags(cmd *cobra.Command, cmdConfig *common.CommandConfig) {
	cmd.Flags().StringVarP(&cmdConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cmdConfig.OutputFormat, "format", "", "Output format: json, yaml, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatters.NewFormatterRegistry().GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveOutputConfig applies the configured defaults and validates the format
func resolveOutputConfig(cmd *cobra.Command, cmdConfig *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	if cmdConfig.OutputFormat == "" {
		cmdConfig.OutputFormat = cfg.App.DefaultFormat
	}
	cmdConfig.OutputFormat = common.NormalizeFormat(cmdConfig.OutputFormat)
	cmdConfig.MaxFileSize = cfg.App.MaxFileSize
	return common.ValidateOutputFormat(cmdConfig.OutputFormat, cfg.App.SupportedFormats)
}
