package ai

import (
	"context"
	"fmt"
	"strings"

	"interviewcoach/internal/config"
	"interviewcoach/internal/errors"

	"google.golang.org/genai"
)

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	client *genai.Client
	config *config.OperationAIConfig
	logger *errors.Logger
}

var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation.
// opts adjust the client config before the client is built.
func NewGeminiProvider(ctx context.Context, cfg *config.OperationAIConfig, logger *errors.Logger, opts ...func(*genai.ClientConfig)) (*GeminiProvider, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(clientCfg)
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// Name returns "gemini"
func (g *GeminiProvider) Name() string {
	return "gemini"
}

// Complete generates content for one prompt pair
func (g *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSON {
		genCfg.ResponseMIMEType = "application/json"
	}
	if req.SystemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	res, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(req.UserPrompt), genCfg)
	if err != nil {
		return nil, err
	}

	completion := &Completion{
		Text:       res.Text(),
		Model:      g.config.Model,
		TokenUsage: extractTokenUsage(res),
	}
	if res.ModelVersion != "" {
		completion.Model = res.ModelVersion
	}
	if len(res.Candidates) > 0 {
		completion.FinishReason = string(res.Candidates[0].FinishReason)
	}
	if completion.FinishReason == string(genai.FinishReasonMaxTokens) {
		g.logger.Warn("Response was truncated due to max output tokens",
			"operation", req.Operation,
			"max_tokens", req.MaxTokens)
	}
	return completion, nil
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: g.config.Model}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", "gemini",
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	if model.Version != "" {
		info.DisplayName = strings.TrimSpace(model.DisplayName + " " + model.Version)
	}
	return info
}

// Close is a no-op; the genai client holds no resources that need releasing
func (g *GeminiProvider) Close() error {
	return nil
}
