package config

import (
	"fmt"
	"os"
	"strings"

	"interviewcoach/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/spf13/cast"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault (KVv2 read paths)
type VaultSecrets struct {
	// InferenceKey holds the model API key under the "api_key" field
	InferenceKey string `mapstructure:"inferenceKey"`
	// TLSCerts holds PEM content under "cert", "key" and "ca"
	TLSCerts string `mapstructure:"tlsCerts"`
}

// secretReader is the part of the Vault logical API used here
type secretReader interface {
	Read(path string) (*api.Secret, error)
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	logical secretReader
	logger  *errors.Logger
}

// VaultSecret represents a secret read from Vault's KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// NewVaultClient creates a Vault client and verifies the connection
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !config.Enabled {
		return nil, nil
	}

	vaultConfig := api.DefaultConfig()
	if config.Address != "" {
		vaultConfig.Address = config.Address
	}
	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	if logger != nil {
		logger.Info("Connected to Vault",
			"address", vaultConfig.Address,
			"version", health.Version,
			"sealed", health.Sealed)
	}

	return &VaultClient{logical: client.Logical(), logger: logger}, nil
}

// resolveVaultToken resolves the Vault token from config or file
func resolveVaultToken(config VaultConfig) (string, error) {
	token := config.Token
	if token == "" && config.TokenFile != "" {
		tokenBytes, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(tokenBytes))
	}
	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.logical.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	versionRaw, ok := metadata["version"]
	if !ok {
		return nil, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}
	version, err := parseVersionValue(versionRaw, path)
	if err != nil {
		return nil, err
	}

	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue accepts the numeric forms Vault returns (json.Number, float64, string)
func parseVersionValue(versionRaw any, path string) (int64, error) {
	switch versionRaw.(type) {
	case bool, nil:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, versionRaw)
	}
	version, err := cast.ToInt64E(versionRaw)
	if err != nil {
		return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
	}
	return version, nil
}

// GetStringSecret retrieves a string value from a Vault secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	strValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}

	if vc.logger != nil {
		vc.logger.Debug("String secret retrieved from Vault", "path", path, "key", key, "masked_value", maskSecret(strValue))
	}
	return strValue, nil
}

func maskSecret(s string) string {
	switch {
	case len(s) > 8:
		return s[:4] + "****" + s[len(s)-4:]
	case s != "":
		return "****"
	default:
		return ""
	}
}

// ApplyVaultSecrets loads secrets from Vault and applies them to the config
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		return nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to initialize vault client", err)
	}
	return applySecrets(client, config, logger)
}

func applySecrets(client *VaultClient, config *Config, logger *errors.Logger) error {
	secrets := config.Vault.Secrets

	if secrets.InferenceKey != "" {
		key, err := client.GetStringSecret(secrets.InferenceKey, "api_key")
		if err != nil {
			return fmt.Errorf("failed to load inference API key from vault: %w", err)
		}
		if key != "" {
			applyInferenceKey(config, key)
			if logger != nil {
				logger.Info("Inference API key loaded from Vault")
			}
		} else if logger != nil {
			logger.Warn("Empty inference API key found in Vault", "path", secrets.InferenceKey)
		}
	}

	if secrets.TLSCerts != "" {
		tlsData, err := client.GetSecretV2(secrets.TLSCerts)
		if err != nil {
			return fmt.Errorf("failed to load TLS certificates from vault: %w", err)
		}
		count := loadTLSCertificateContent(config, tlsData)
		if logger != nil {
			logger.Info("TLS certificates loaded from Vault", "certificates_loaded", count)
		}
	}

	return nil
}

// applyInferenceKey sets the key globally and on operations without their own key
func applyInferenceKey(config *Config, key string) {
	config.AI.APIKey = key
	if config.AI.Generate.APIKey == "" {
		config.AI.Generate.APIKey = key
	}
	if config.AI.Evaluate.APIKey == "" {
		config.AI.Evaluate.APIKey = key
	}
}

// loadTLSCertificateContent copies PEM content from Vault data, clearing the
// matching file path so the content source wins
func loadTLSCertificateContent(config *Config, tlsData *VaultSecret) int {
	tls := &config.Server.TLS
	targets := []struct {
		key     string
		content *string
		file    *string
	}{
		{"cert", &tls.CertContent, &tls.CertFile},
		{"key", &tls.KeyContent, &tls.KeyFile},
		{"ca", &tls.CAContent, &tls.CAFile},
	}

	count := 0
	for _, t := range targets {
		if content, ok := tlsData.Data[t.key].(string); ok && content != "" {
			*t.content = content
			*t.file = ""
			count++
		}
	}
	return count
}
