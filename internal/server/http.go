package server

import (
	"context"
	"time"

	"interviewcoach/internal/ai"
	"interviewcoach/internal/config"
	"interviewcoach/internal/errors"
	"interviewcoach/internal/interview"
	"interviewcoach/internal/types"
)

// GenerateRequest represents the request body for the generate_questions endpoint
type GenerateRequest struct {
	Role string `json:"role"`
}

// EvaluateRequest represents the request body for the evaluate endpoint
type EvaluateRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// QuestionGenerator produces question sets for a role
type QuestionGenerator interface {
	Generate(ctx context.Context, input types.GenerateQuestionsInput) (*interview.GenerateResult, error)
}

// AnswerEvaluator scores a single answer
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, input types.EvaluateAnswerInput) (*interview.EvaluateResult, error)
}

// InferenceService is the view of an inference service the health and test_api endpoints need
type InferenceService interface {
	Ping(ctx context.Context) (*ai.PingResult, error)
	Model() string
	ProviderName() string
	GetModelInfo(ctx context.Context) *ai.ModelInfo
	CircuitBreakerStats() ai.CircuitBreakerStats
	Healthy() bool
}

// Services bundles the long-lived components the handlers share
type Services struct {
	Generator  QuestionGenerator
	Evaluator  AnswerEvaluator
	GenerateAI InferenceService
	EvaluateAI InferenceService
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig          config.TLSConfig
	CertificateManager *CertificateManager

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *LimiterManager

	Services Services
	Debug    bool

	Logger *errors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
	Debug          bool
}

// NewServerConfig derives the listener settings from the application configuration
func NewServerConfig(appCfg *config.Config, version string) ServerConfig {
	rl := appCfg.Server.RateLimit
	return ServerConfig{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		Version:        version,
		TLSConfig:      appCfg.Server.TLS,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxRequestSize: appCfg.Server.MaxRequestSize,
		RateLimit:      &rl,
		Debug:          appCfg.App.Debug,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, services Services, logger *errors.Logger) *Server {
	var rateLimiter *LimiterManager
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Services:       services,
		Debug:          cfg.Debug,
		Logger:         logger,
	}
}
