package ai

import "context"

// AIProvider is a chat-completion backend. Implementations must be safe for concurrent use.
type AIProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Name() string
	Close() error
}

// CompletionRequest is a single system+user prompt exchange
type CompletionRequest struct {
	// Operation names the caller for tracing and logs
	Operation    string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	// Temperature is taken from the operation config when nil
	Temperature *float32
	// JSON asks the backend for a JSON response where it supports that
	JSON bool
}

// Completion is the text returned by the model
type Completion struct {
	Text         string
	FinishReason string
	Model        string
	TokenUsage   *TokenUsage
}

// Truncated reports whether the model stopped because it ran out of tokens
func (c *Completion) Truncated() bool {
	return c != nil && (c.FinishReason == "length" || c.FinishReason == "MAX_TOKENS")
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	OwnedBy     string `json:"ownedBy,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// PromptPair holds the resolved system prompt and user prompt template of an operation
type PromptPair struct {
	System string
	User   string
}
