package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
)

// SupportedProviders lists the inference backends the ai package can construct
var SupportedProviders = []string{"huggingface", "openai", "gemini"}

// applyFallbacks derives values that depend on other settings
func (c *Config) applyFallbacks() {
	if c.App.Debug {
		c.App.LogLevel = "debug"
	}

	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}

	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// Validate checks the loaded configuration for values the application cannot run with.
// A missing API key is not an error here; commands that call the model check it.
func (c *Config) Validate() error {
	if _, err := parseLogLevel(c.App.LogLevel); err != nil {
		return err
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("default format '%s' is not in supported formats %v", c.App.DefaultFormat, c.App.SupportedFormats)
	}

	for _, op := range []string{OperationGenerate, OperationEvaluate} {
		opCfg, _ := c.GetOperationConfig(op)
		if !slices.Contains(SupportedProviders, opCfg.Provider) {
			return fmt.Errorf("unsupported AI provider for %s: %s (must be one of %s)",
				op, opCfg.Provider, strings.Join(SupportedProviders, ", "))
		}
		if opCfg.Model == "" {
			return fmt.Errorf("AI model is required for %s", op)
		}
		if *opCfg.MaxTokens <= 0 {
			return fmt.Errorf("maxTokens must be positive for %s", op)
		}
		if *opCfg.Timeout <= 0 {
			return fmt.Errorf("timeout must be positive for %s, got %v", op, *opCfg.Timeout)
		}
		if t := *opCfg.Temperature; t < 0 || t > 2 {
			return fmt.Errorf("temperature for %s must be between 0 and 2, got %v", op, t)
		}
		if cb := opCfg.CircuitBreaker; cb.Enabled && (cb.FailureThreshold <= 0 || cb.FailureThreshold > 1) {
			return fmt.Errorf("circuit breaker failureThreshold for %s must be in (0, 1], got %v", op, cb.FailureThreshold)
		}
	}

	iv := c.Interview
	if iv.MaxRoleLength <= 0 || iv.MaxQuestionLength <= 0 || iv.MaxAnswerLength <= 0 || iv.MaxFeedbackWords <= 0 {
		return fmt.Errorf("interview limits must be positive")
	}
	if iv.NeutralScore < 0 || iv.NeutralScore > 10 {
		return fmt.Errorf("interview neutralScore must be between 0 and 10, got %d", iv.NeutralScore)
	}

	if c.Vault.Enabled && c.Vault.Secrets.TLSCerts != "" {
		// TLS material arrives from Vault after loading; serve validates it then.
		return nil
	}
	return c.ValidateTLSConfig()
}

func parseLogLevel(level string) (string, error) {
	switch level {
	case "debug", "info", "warn", "error":
		return level, nil
	default:
		return "", fmt.Errorf("invalid log level: %s (must be debug, info, warn or error)", level)
	}
}

// HasAPIKey reports whether an inference credential is available to every operation
func (c *Config) HasAPIKey() bool {
	return c.GetGenerateConfig().APIKey != "" && c.GetEvaluateConfig().APIKey != ""
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		EnvPrefix + "_AI_APIKEY",
		EnvPrefix + "_AI_PROVIDER",
		EnvPrefix + "_AI_MODEL",
		EnvPrefix + "_SERVER_PORT",
		EnvPrefix + "_APP_LOGLEVEL",
		EnvPrefix + "_VAULT_ENABLED",
		"HF_TOKEN",
		"PORT",
		"DEBUG",
	}
	hasEnvVars := false
	for _, envVar := range envVars {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		if strings.Contains(envVar, "KEY") || strings.Contains(envVar, "TOKEN") {
			value = "***MASKED***"
		}
		log.Printf("[CONFIG]   %s=%s", envVar, value)
		hasEnvVars = true
	}
	if !hasEnvVars {
		log.Println("[CONFIG] Environment variables: none set")
	}

	apiKeyState := "***NOT SET***"
	if c.AI.APIKey != "" {
		apiKeyState = "***CONFIGURED***"
	}
	log.Printf("[CONFIG] AI Provider: %s, Model: %s, API Key: %s", c.AI.Provider, c.AI.Model, apiKeyState)
	log.Printf("[CONFIG] Server: %s:%s (TLS %s)", c.Server.Host, c.Server.Port, c.Server.TLS.Mode)
	log.Printf("[CONFIG] Log Level: %s, Debug: %t", c.App.LogLevel, c.App.Debug)
	log.Printf("[CONFIG] Vault Enabled: %t, Observability Enabled: %t", c.Vault.Enabled, c.Observability.Enabled)
}
