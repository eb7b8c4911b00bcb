package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by the application
const EnvPrefix = "INTERVIEWCOACH"

// Operation names used to key per-operation configuration and prompts
const (
	OperationGenerate = "generate"
	OperationEvaluate = "evaluate"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (INTERVIEWCOACH_AI_APIKEY, HF_TOKEN)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Interview     InterviewConfig     `mapstructure:"interview"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`

	// Prompts holds prompt bodies read from the configured prompt files
	Prompts *PromptStore `mapstructure:"-"`
}

// AIConfig holds inference configuration shared by both operations
type AIConfig struct {
	Provider         string        `mapstructure:"provider"`
	Model            string        `mapstructure:"model"`
	BaseURL          string        `mapstructure:"baseURL"`
	Timeout          time.Duration `mapstructure:"timeout"`
	APIKey           string        `mapstructure:"apiKey"`
	MaxTokens        int           `mapstructure:"maxTokens"`
	Temperature      float32       `mapstructure:"temperature"`
	UseSystemPrompts bool          `mapstructure:"useSystemPrompts"`
	// JSONResponseFormat sends response_format=json_object on JSON requests.
	// Off by default; not every router-hosted model accepts it.
	JSONResponseFormat bool         `mapstructure:"jsonResponseFormat"`
	CustomPrompts      PromptConfig `mapstructure:"customPrompts"`
	WatchPromptFiles   bool         `mapstructure:"watchPromptFiles"`

	Generate OperationAIConfig `mapstructure:"generate"`
	Evaluate OperationAIConfig `mapstructure:"evaluate"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // allowed while half-open
	Interval         time.Duration `mapstructure:"interval"`         // closed-state counter reset
	Timeout          time.Duration `mapstructure:"timeout"`          // open to half-open
	MinRequests      uint32        `mapstructure:"minRequests"`      // before the ratio is considered
	FailureThreshold float64       `mapstructure:"failureThreshold"` // 0.0-1.0
}

// OperationAIConfig holds AI configuration for one operation.
// Pointer fields stay nil until the global value is merged in.
type OperationAIConfig struct {
	Provider           string               `mapstructure:"provider"`
	Model              string               `mapstructure:"model"`
	BaseURL            string               `mapstructure:"baseURL"`
	Timeout            *time.Duration       `mapstructure:"timeout"`
	APIKey             string               `mapstructure:"apiKey"`
	MaxTokens          *int                 `mapstructure:"maxTokens"`
	Temperature        *float32             `mapstructure:"temperature"`
	UseSystemPrompts   *bool                `mapstructure:"useSystemPrompts"`
	JSONResponseFormat *bool                `mapstructure:"jsonResponseFormat"`
	CustomPrompts      PromptConfig         `mapstructure:"customPrompts"`
	CircuitBreaker     CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// PromptConfig holds configuration for customizable prompts
type PromptConfig struct {
	SystemPrompts PromptTexts `mapstructure:"systemPrompts"`
	UserPrompts   PromptTexts `mapstructure:"userPrompts"`
}

// PromptTexts holds inline prompt bodies and prompt file paths for both operations
type PromptTexts struct {
	GenerateQuestions     string `mapstructure:"generateQuestions"`
	GenerateQuestionsFile string `mapstructure:"generateQuestionsFile"`
	EvaluateAnswer        string `mapstructure:"evaluateAnswer"`
	EvaluateAnswerFile    string `mapstructure:"evaluateAnswerFile"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string          `mapstructure:"host"`
	Port           string          `mapstructure:"port"`
	ReadTimeout    time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration   `mapstructure:"idleTimeout"`
	MaxRequestSize int64           `mapstructure:"maxRequestSize"`
	TLS            TLSConfig       `mapstructure:"tls"`
	RateLimit      RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds TLS/mTLS configuration
type TLSConfig struct {
	Mode     string `mapstructure:"mode"` // disabled, server, mutual
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
	CAFile   string `mapstructure:"caFile"`

	// PEM content, filled from Vault
	CertContent string `mapstructure:"certContent"`
	KeyContent  string `mapstructure:"keyContent"`
	CAContent   string `mapstructure:"caContent"`

	MinVersion       string `mapstructure:"minVersion"`       // 1.2 or 1.3
	ClientAuthPolicy string `mapstructure:"clientAuthPolicy"` // require, request, verify

	AutoReload FileWatcherConfig `mapstructure:"autoReload"`
}

// FileWatcherConfig holds configuration for file change watching
type FileWatcherConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RequestsPerMin int  `mapstructure:"requestsPerMin"`
	BurstCapacity  int  `mapstructure:"burstCapacity"`
	ByIP           bool `mapstructure:"byIP"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	Debug            bool     `mapstructure:"debug"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// InterviewConfig holds the limits applied to interview content
type InterviewConfig struct {
	MaxRoleLength     int `mapstructure:"maxRoleLength"`
	MaxQuestionLength int `mapstructure:"maxQuestionLength"`
	MaxAnswerLength   int `mapstructure:"maxAnswerLength"`
	MaxFeedbackWords  int `mapstructure:"maxFeedbackWords"`
	NeutralScore      int `mapstructure:"neutralScore"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	PrettyPrint     bool                `mapstructure:"prettyPrint"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// CustomMetricsConfig toggles the application-specific instruments
type CustomMetricsConfig struct {
	TrackDuration   bool `mapstructure:"trackDuration"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
	BusinessMetrics bool `mapstructure:"businessMetrics"`
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadOptions controls where LoadConfig looks for its inputs
type LoadOptions struct {
	// ConfigFile is an explicit config file path; search paths are used when empty
	ConfigFile string
	// EnvFile is the dotenv file loaded before reading the environment
	EnvFile string
	// Viper receives cobra flag bindings; a fresh instance is used when nil
	Viper *viper.Viper
}

// LoadConfig loads configuration from defaults, a config file and the environment
func LoadConfig(opts LoadOptions) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if !stderrors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else {
		log.Printf("[CONFIG] Loaded environment file: %s", envFile)
	}

	v := opts.Viper
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvAliases(v); err != nil {
		return nil, err
	}
	log.Printf("[CONFIG] Configured environment variable handling with prefix '%s'", EnvPrefix)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/interviewcoach/")
		v.AddConfigPath("$HOME/.interviewcoach")
		v.AddConfigPath(".")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || opts.ConfigFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	prompts, err := config.LoadPrompts()
	if err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}
	config.Prompts = prompts

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// bindEnvAliases binds the short environment names accepted alongside the prefixed ones
func bindEnvAliases(v *viper.Viper) error {
	aliases := map[string][]string{
		"ai.apiKey":   {EnvPrefix + "_AI_APIKEY", "HF_TOKEN"},
		"server.port": {EnvPrefix + "_SERVER_PORT", "PORT"},
		"app.debug":   {EnvPrefix + "_APP_DEBUG", "DEBUG"},
	}
	for key, names := range aliases {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}
	return nil
}
