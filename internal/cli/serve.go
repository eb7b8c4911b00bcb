package cli

import (
	"fmt"

	"interviewcoach/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface and JSON API",
		Long: `Start an HTTP server with the interview web pages and the JSON API.

Available endpoints:
- GET  /                    Role selection page
- GET  /interview           Question-by-question interview page
- GET  /results             Score summary page
- POST /generate_questions  Generate six questions for a role
- POST /evaluate            Score one answer
- GET  /test_api            Live round trip to the model
- GET  /health              Health check endpoint
- GET  /stats               Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	flags := cmd.Flags()
	flags.StringP("port", "p", "", "Port to listen on (default from config, or $PORT)")
	flags.String("host", "", "Host to bind to (default from config)")
	flags.String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	flags.String("cert-file", "", "Server certificate file (PEM, overrides config)")
	flags.String("key-file", "", "Server private key file (PEM, overrides config)")
	flags.String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")

	bindFlags(v, flags, map[string]string{
		"server.port":         "port",
		"server.host":         "host",
		"server.tls.mode":     "tls-mode",
		"server.tls.certFile": "cert-file",
		"server.tls.keyFile":  "key-file",
		"server.tls.caFile":   "ca-file",
	})
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Vault may have supplied the certificate material after loading
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	services, err := buildInterviewServices(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	srv := server.NewServer(cfg, server.NewServerConfig(cfg, Version), services.forServer(), logger)
	return srv.Start()
}
