package cli

import (
	"context"
	"fmt"

	"interviewcoach/internal/config"
	"interviewcoach/internal/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// skipConfigAnnotation marks commands that run without loading configuration
const skipConfigAnnotation = "interviewcoach/skip-config"

type rootOptions struct {
	configFile string
	envFile    string
	viper      *viper.Viper
}

// NewRootCmd builds the command tree. Flags are bound to a fresh viper
// instance, which LoadConfig reads after cobra has parsed the command line.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{viper: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "interviewcoach",
		Short: "Practice technical interviews with an AI interviewer",
		Long: `interviewcoach generates six interview questions for a job role and scores
your answers with a hosted language model. Run "interviewcoach serve" for the
web interface or "interviewcoach practice" for an interview in the terminal.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.loadContext,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Config file (default: search /etc/interviewcoach, $HOME/.interviewcoach, .)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	flags.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flags.Bool("debug", false, "Enable debug logging and error details in API responses")
	bindFlags(opts.viper, flags, map[string]string{
		"app.logLevel": "log-level",
		"app.debug":    "debug",
	})

	rootCmd.AddCommand(
		newServeCmd(opts.viper),
		newGenerateCmd(),
		newEvaluateCmd(),
		newPracticeCmd(),
		newPingCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the CLI
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// loadContext loads configuration, builds the logger and applies Vault secrets
func (o *rootOptions) loadContext(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipConfigAnnotation] == "true" {
		return nil
	}

	cfg, err := config.LoadConfig(config.LoadOptions{
		ConfigFile: o.configFile,
		EnvFile:    o.envFile,
		Viper:      o.viper,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := errors.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := errors.NewLoggerTo(cmd.ErrOrStderr(), level)

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return err
	}

	logger.Debug("Configuration loaded",
		"command", cmd.Name(),
		"version", Version,
		"ai_provider", cfg.AI.Provider,
		"ai_model", cfg.AI.Model)

	ctx := context.WithValue(cmd.Context(), configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	cmd.SetContext(ctx)
	return nil
}

// bindFlags binds config keys to flag names on v
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context")
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context")
}
