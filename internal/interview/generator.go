package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"interviewcoach/internal/ai"
	"interviewcoach/internal/config"
	"interviewcoach/internal/errors"
	"interviewcoach/internal/types"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// Outcome describes where a result came from
type Outcome string

const (
	OutcomeModel    Outcome = "model"
	OutcomePartial  Outcome = "partial"
	OutcomeFallback Outcome = "fallback"
	OutcomeSkipped  Outcome = "skipped"
)

// GenerateResult carries the question set plus what it took to produce it
type GenerateResult struct {
	Set         *types.QuestionSet
	Outcome     Outcome
	Substituted int
	Cause       error
	FailureKind ai.FailureKind
	Usage       *ai.TokenUsage
	Duration    time.Duration
}

// Generator produces six-question sets for a role
type Generator struct {
	backend Backend
	limits  config.InterviewConfig
	logger  *errors.Logger
}

// NewGenerator creates a generator around an inference backend
func NewGenerator(backend Backend, limits config.InterviewConfig, logger *errors.Logger) *Generator {
	return &Generator{backend: backend, limits: limits, logger: logger}
}

// ValidateRole trims the role and checks it against the configured limits
func ValidateRole(role string, limits config.InterviewConfig) (string, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest, "Role is required", nil)
	}
	if limits.MaxRoleLength > 0 && len([]rune(role)) > limits.MaxRoleLength {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Role must be at most %d characters", limits.MaxRoleLength), nil).
			WithContext("length", len([]rune(role)))
	}
	return role, nil
}

// Generate returns a complete question set. Only invalid input is an error;
// upstream and parse failures fall back to the default questions.
func (g *Generator) Generate(ctx context.Context, input types.GenerateQuestionsInput) (*GenerateResult, error) {
	role, err := ValidateRole(input.Role, g.limits)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &GenerateResult{}
	set := &types.QuestionSet{
		ID:          uuid.NewString(),
		Role:        role,
		Model:       g.backend.Model(),
		GeneratedAt: start.UTC(),
	}
	result.Set = set

	slots, err := g.requestQuestions(ctx, role, result)
	if err != nil {
		result.Cause = err
		result.FailureKind = ai.ClassifyError(err)
		slots = make([]*types.Question, len(types.Categories))
	}

	set.Questions = make([]types.Question, 0, len(types.Categories))
	for i, c := range types.Categories {
		if slots[i] != nil {
			set.Questions = append(set.Questions, *slots[i])
			continue
		}
		set.Questions = append(set.Questions, DefaultQuestion(c, role))
		result.Substituted++
	}

	switch {
	case result.Substituted == 0:
		result.Outcome = OutcomeModel
	case result.Substituted == len(types.Categories):
		result.Outcome = OutcomeFallback
		set.Fallback = true
		set.Warning = "Question generation is unavailable right now; showing default questions"
	default:
		result.Outcome = OutcomePartial
		set.Fallback = true
		set.Warning = fmt.Sprintf("%d of %d questions were replaced with default questions",
			result.Substituted, len(types.Categories))
	}
	result.Duration = time.Since(start)

	if result.Outcome != OutcomeModel {
		args := []any{"role", role, "outcome", result.Outcome, "substituted", result.Substituted}
		if result.Cause != nil {
			args = append(args, "failure_kind", result.FailureKind, "error", result.Cause.Error())
		}
		g.logger.Warn("Question set fell back to defaults", args...)
	}
	return result, nil
}

func (g *Generator) requestQuestions(ctx context.Context, role string, result *GenerateResult) ([]*types.Question, error) {
	prompts := g.backend.Prompts()
	userPrompt, err := renderPrompt(config.OperationGenerate, prompts.User, struct {
		Role       string
		Categories []types.Category
	}{role, types.Categories})
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidConfig, "Failed to render question prompt", err)
	}

	completion, err := g.backend.Complete(ctx, ai.CompletionRequest{
		Operation:    config.OperationGenerate,
		SystemPrompt: prompts.System,
		UserPrompt:   userPrompt,
		JSON:         true,
	})
	if err != nil {
		return nil, err
	}
	result.Usage = completion.TokenUsage
	if completion.Model != "" {
		result.Set.Model = completion.Model
	}
	if completion.Truncated() {
		g.logger.Debug("Question response hit the token limit", "response_length", len(completion.Text))
	}

	raw, ok := ExtractJSON(completion.Text)
	if !ok {
		return nil, errors.NewAIError(errors.ErrCodeAIResponseParseFailed, "No JSON found in question response", nil).
			WithContext("response_length", len(completion.Text))
	}
	items, err := decodeQuestionItems(raw)
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIResponseParseFailed, "Question response is not a list", err)
	}
	return assignSlots(items), nil
}

// questionItem is one element of the model's question array
type questionItem struct {
	label          string
	prompt         string
	expectedOutput string
}

func decodeQuestionItems(raw string) ([]questionItem, error) {
	var list []any
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		var wrapped struct {
			Questions []any `json:"questions"`
		}
		if err2 := json.Unmarshal([]byte(raw), &wrapped); err2 != nil || wrapped.Questions == nil {
			return nil, err
		}
		list = wrapped.Questions
	}

	items := make([]questionItem, len(list))
	for i, v := range list {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		items[i] = questionItem{
			label:          firstString(m, "type", "category"),
			prompt:         firstString(m, "question", "prompt"),
			expectedOutput: firstString(m, "expected_output", "expectedOutput", "context"),
		}
	}
	return items, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			if s := strings.TrimSpace(cast.ToString(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// assignSlots places items into canonical category slots. Labelled items are
// placed first; items with an unknown label take the slot at their position.
func assignSlots(items []questionItem) []*types.Question {
	slots := make([]*types.Question, len(types.Categories))
	var unlabelled []int

	for i, item := range items {
		if item.prompt == "" {
			continue
		}
		c, ok := types.ParseCategory(item.label)
		if !ok {
			unlabelled = append(unlabelled, i)
			continue
		}
		if idx := c.Index(); slots[idx] == nil {
			slots[idx] = newQuestion(c, item)
		}
	}

	for _, i := range unlabelled {
		if i < len(slots) && slots[i] == nil {
			slots[i] = newQuestion(types.Categories[i], items[i])
		}
	}
	return slots
}

func newQuestion(c types.Category, item questionItem) *types.Question {
	return &types.Question{
		ID:             uuid.NewString(),
		Category:       c,
		Title:          c.Title(),
		Prompt:         item.prompt,
		ExpectedOutput: item.expectedOutput,
	}
}
