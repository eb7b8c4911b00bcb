package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"interviewcoach/internal/config"
	"interviewcoach/internal/errors"

	"github.com/openai/openai-go/v3"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

func timePtr(d time.Duration) *time.Duration { return &d }
func intPtr(i int) *int                      { return &i }
func float32Ptr(f float32) *float32          { return &f }
func boolPtr(b bool) *bool                   { return &b }

var testLogger = errors.NewLoggerTo(io.Discard, slog.LevelDebug)

// fakeProvider records requests and replays canned results
type fakeProvider struct {
	mu       sync.Mutex
	requests []CompletionRequest
	text     string
	err      error
}

func (f *fakeProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &Completion{Text: f.text, FinishReason: "stop", Model: "fake-model",
		TokenUsage: &TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}}, nil
}

func (f *fakeProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	return &ModelInfo{Name: "fake-model", Available: true}
}
func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Close() error { return nil }

func (f *fakeProvider) last() CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func testOperationConfig() *config.OperationAIConfig {
	return &config.OperationAIConfig{
		Provider:         "huggingface",
		Model:            "test/model",
		APIKey:           "test-key",
		Timeout:          timePtr(5 * time.Second),
		MaxTokens:        intPtr(600),
		Temperature:      float32Ptr(0.1),
		UseSystemPrompts: boolPtr(true),
	}
}

func TestServiceCompleteAppliesDefaults(t *testing.T) {
	provider := &fakeProvider{text: `{"score": 7}`}
	svc := NewServiceWithProvider(provider, testOperationConfig(), config.OperationEvaluate, nil, testLogger)

	res, err := svc.Complete(context.Background(), CompletionRequest{SystemPrompt: "sys", UserPrompt: "user"})
	require.NoError(t, err)
	assert.Equal(t, `{"score": 7}`, res.Text)

	req := provider.last()
	assert.Equal(t, config.OperationEvaluate, req.Operation)
	assert.Equal(t, 600, req.MaxTokens)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.1, *req.Temperature, 0.0001)
	assert.Equal(t, "sys", req.SystemPrompt)
}

func TestServiceCompleteFoldsSystemPromptWhenDisabled(t *testing.T) {
	cfg := testOperationConfig()
	cfg.UseSystemPrompts = boolPtr(false)
	provider := &fakeProvider{text: "ok"}
	svc := NewServiceWithProvider(provider, cfg, config.OperationGenerate, nil, testLogger)

	_, err := svc.Complete(context.Background(), CompletionRequest{SystemPrompt: "sys", UserPrompt: "user"})
	require.NoError(t, err)

	req := provider.last()
	assert.Empty(t, req.SystemPrompt)
	assert.Equal(t, "sys\n\nuser", req.UserPrompt)
}

func TestServiceCompleteErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
		kind     FailureKind
		code     string
	}{
		{"empty text", &fakeProvider{text: "  \n"}, FailureEmptyResponse, errors.ErrCodeAIUpstreamFailed},
		{"auth", &fakeProvider{err: &openai.Error{StatusCode: http.StatusUnauthorized}}, FailureAuth, errors.ErrCodeAIUpstreamFailed},
		{"deadline", &fakeProvider{err: context.DeadlineExceeded}, FailureTimeout, errors.ErrCodeAITimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewServiceWithProvider(tt.provider, testOperationConfig(), config.OperationEvaluate, nil, testLogger)
			_, err := svc.Complete(context.Background(), CompletionRequest{UserPrompt: "q"})
			require.Error(t, err)
			assert.Equal(t, tt.kind, ClassifyError(err))

			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, string(tt.kind), appErr.Context["failure_kind"])
		})
	}
}

func TestServiceBreakerOpensAfterFailures(t *testing.T) {
	cfg := testOperationConfig()
	cfg.CircuitBreaker = breakerConfig(2, 0.5).CircuitBreaker
	provider := &fakeProvider{err: fmt.Errorf("upstream 500")}
	svc := NewServiceWithProvider(provider, cfg, config.OperationGenerate, nil, testLogger)

	for range 2 {
		_, err := svc.Complete(context.Background(), CompletionRequest{UserPrompt: "q"})
		assert.Equal(t, FailureUpstream, ClassifyError(err))
	}
	assert.False(t, svc.Healthy())
	assert.Equal(t, "open", svc.CircuitBreakerStats().State)

	_, err := svc.Complete(context.Background(), CompletionRequest{UserPrompt: "q"})
	assert.Equal(t, FailureCircuitOpen, ClassifyError(err))
	assert.Len(t, provider.requests, 2)
}

func TestServicePromptsResolutionOrder(t *testing.T) {
	cfg := testOperationConfig()
	store := config.NewPromptStore()
	svc := NewServiceWithProvider(&fakeProvider{}, cfg, config.OperationGenerate, store, testLogger)

	assert.Equal(t, DefaultSystemPrompts[config.OperationGenerate], svc.Prompts().System)
	assert.Equal(t, DefaultUserPrompts[config.OperationGenerate], svc.Prompts().User)

	cfg.CustomPrompts.SystemPrompts.GenerateQuestions = "inline system"
	assert.Equal(t, "inline system", svc.Prompts().System)

	store.Set(config.OperationGenerate, config.PromptSystem, "from file", "/tmp/system.txt")
	assert.Equal(t, "from file", svc.Prompts().System)
	assert.Equal(t, DefaultUserPrompts[config.OperationGenerate], svc.Prompts().User)
}

func TestServicePing(t *testing.T) {
	provider := &fakeProvider{text: " API test successful \n"}
	svc := NewServiceWithProvider(provider, testOperationConfig(), config.OperationGenerate, nil, testLogger)

	res, err := svc.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "API test successful", res.Response)
	assert.Equal(t, "test/model", res.Model)

	req := provider.last()
	assert.Equal(t, pingPrompt, req.UserPrompt)
	assert.Equal(t, 10, req.MaxTokens)
	assert.Equal(t, float32(0), *req.Temperature)
}

func TestNewServiceValidation(t *testing.T) {
	cfg := testOperationConfig()
	cfg.APIKey = ""
	_, err := NewService(context.Background(), cfg, config.OperationGenerate, nil, testLogger)
	require.Error(t, err)
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeMissingAPIKey, appErr.Code)

	cfg = testOperationConfig()
	cfg.Provider = "carrier-pigeon"
	_, err = NewService(context.Background(), cfg, config.OperationGenerate, nil, testLogger)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	svc, err := NewService(context.Background(), testOperationConfig(), config.OperationGenerate, nil, testLogger)
	require.NoError(t, err)
	assert.Equal(t, "huggingface", svc.ProviderName())
	assert.NoError(t, svc.Close())
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil", nil, FailureNone},
		{"empty", fmt.Errorf("wrap: %w", ErrEmptyResponse), FailureEmptyResponse},
		{"open", gobreaker.ErrOpenState, FailureCircuitOpen},
		{"half-open saturated", gobreaker.ErrTooManyRequests, FailureCircuitOpen},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), FailureTimeout},
		{"openai 401", &openai.Error{StatusCode: 401}, FailureAuth},
		{"openai 429", &openai.Error{StatusCode: 429}, FailureRateLimit},
		{"openai 500", &openai.Error{StatusCode: 500}, FailureUpstream},
		{"genai 403", genai.APIError{Code: 403}, FailureAuth},
		{"genai 504", genai.APIError{Code: 504}, FailureTimeout},
		{"googleapi 429", &googleapi.Error{Code: 429}, FailureRateLimit},
		{"net timeout", timeoutErr{}, FailureTimeout},
		{"connection refused", &net.OpError{Op: "dial", Err: stderrors.New("connection refused")}, FailureNetwork},
		{"unknown", stderrors.New("weird"), FailureUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}
