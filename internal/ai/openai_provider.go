package ai

import (
	"context"
	"fmt"
	"time"

	"interviewcoach/internal/config"
	"interviewcoach/internal/errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// modelCheckTimeout bounds GetModelInfo lookups
const modelCheckTimeout = 10 * time.Second

// OpenAIProvider implements AIProvider for OpenAI-compatible chat completion
// endpoints, including the Hugging Face inference router
type OpenAIProvider struct {
	client openai.Client
	name   string
	config *config.OperationAIConfig
	logger *errors.Logger
}

var _ AIProvider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a provider for cfg.BaseURL. The SDK's own retries are
// disabled; each request is a single attempt.
func NewOpenAIProvider(cfg *config.OperationAIConfig, logger *errors.Logger, opts ...option.RequestOption) *OpenAIProvider {
	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout != nil && *cfg.Timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(*cfg.Timeout))
	}
	clientOpts = append(clientOpts, opts...)

	return &OpenAIProvider{
		client: openai.NewClient(clientOpts...),
		name:   cfg.Provider,
		config: cfg,
		logger: logger,
	}
}

// Name returns the configured provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Complete sends one chat completion request
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.config.Model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(float64(*req.Temperature))
	}
	if req.JSON && p.config.JSONResponseFormat != nil && *p.config.JSONResponseFormat {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	res, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(res.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choice := res.Choices[0]
	if choice.FinishReason == "length" {
		p.logger.Warn("Response was truncated due to max_tokens limit",
			"operation", req.Operation,
			"max_tokens", req.MaxTokens)
	}

	return &Completion{
		Text:         choice.Message.Content,
		FinishReason: choice.FinishReason,
		Model:        res.Model,
		TokenUsage: &TokenUsage{
			InputTokens:  res.Usage.PromptTokens,
			OutputTokens: res.Usage.CompletionTokens,
			TotalTokens:  res.Usage.TotalTokens,
		},
	}, nil
}

// GetModelInfo looks the configured model up on the models endpoint
func (p *OpenAIProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: p.config.Model}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := p.client.Models.Get(checkCtx, p.config.Model)
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		p.logger.Warn("Model availability check failed",
			"model", p.config.Model,
			"provider", p.name,
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.ID
	info.OwnedBy = model.OwnedBy
	return info
}

// Close is a no-op; the SDK holds no resources
func (p *OpenAIProvider) Close() error {
	return nil
}
