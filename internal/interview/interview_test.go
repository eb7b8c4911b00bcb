package interview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"interviewcoach/internal/ai"
	"interviewcoach/internal/config"
	"interviewcoach/internal/errors"
	"interviewcoach/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = errors.NewLoggerTo(io.Discard, slog.LevelDebug)

var testLimits = config.InterviewConfig{
	MaxRoleLength:     200,
	MaxQuestionLength: 1000,
	MaxAnswerLength:   2000,
	MaxFeedbackWords:  100,
	NeutralScore:      5,
}

// fakeBackend replays one canned reply and records the prompts it saw
type fakeBackend struct {
	reply    string
	err      error
	prompts  ai.PromptPair
	requests []ai.CompletionRequest
}

func newFakeBackend(op string) *fakeBackend {
	return &fakeBackend{prompts: ai.PromptPair{
		System: ai.DefaultSystemPrompts[op],
		User:   ai.DefaultUserPrompts[op],
	}}
}

func (f *fakeBackend) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.Completion, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Completion{Text: f.reply, FinishReason: "stop", Model: "fake-model",
		TokenUsage: &ai.TokenUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150}}, nil
}

func (f *fakeBackend) Prompts() ai.PromptPair { return f.prompts }
func (f *fakeBackend) Model() string          { return "configured-model" }

const sixQuestions = `[
  {"type": "Aptitude", "question": "A1"},
  {"type": "CodeCompletion", "question": "C1", "expected_output": "42"},
  {"type": "TrickyCoding", "question": "T1", "expected_output": "[1,2]"},
  {"type": "TechCodeCompletion", "question": "TC1"},
  {"type": "Technical", "question": "TH1"},
  {"type": "HR", "question": "HR1"}
]`

func categoriesOf(set *types.QuestionSet) []types.Category {
	out := make([]types.Category, 0, len(set.Questions))
	for _, q := range set.Questions {
		out = append(out, q.Category)
	}
	return out
}

func TestGenerateFromModel(t *testing.T) {
	backend := newFakeBackend(config.OperationGenerate)
	backend.reply = "```json\n" + sixQuestions + "\n```"
	gen := NewGenerator(backend, testLimits, testLogger)

	res, err := gen.Generate(context.Background(), types.GenerateQuestionsInput{Role: "  Backend Developer "})
	require.NoError(t, err)

	set := res.Set
	assert.Equal(t, OutcomeModel, res.Outcome)
	assert.Equal(t, "Backend Developer", set.Role)
	assert.False(t, set.Fallback)
	assert.Empty(t, set.Warning)
	assert.Equal(t, "fake-model", set.Model)
	assert.Equal(t, types.Categories, categoriesOf(set))
	assert.Equal(t, "C1", set.Questions[1].Prompt)
	assert.Equal(t, "42", set.Questions[1].ExpectedOutput)
	assert.Equal(t, "Code Completion", set.Questions[1].Title)
	assert.Equal(t, int64(150), res.Usage.TotalTokens)

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.True(t, req.JSON)
	assert.Contains(t, req.UserPrompt, `role of "Backend Developer"`)
	assert.Contains(t, req.UserPrompt, "Aptitude, CodeCompletion, TrickyCoding, TechCodeCompletion, Technical, HR")
	assert.Equal(t, ai.DefaultSystemPrompts[config.OperationGenerate], req.SystemPrompt)
}

func TestGenerateReordersAndAcceptsAliases(t *testing.T) {
	backend := newFakeBackend(config.OperationGenerate)
	backend.reply = `{"questions": [
		{"category": "hr-behavioral", "prompt": "HR1"},
		{"category": "Technical Theory", "prompt": "TH1"},
		{"type": "HR", "question": "duplicate HR is ignored"},
		{"type": "Aptitude", "question": "A1"},
		{"type": "code completion", "question": "C1", "context": "ctx"},
		{"type": "Coding Challenge", "question": "T1"},
		{"type": "TechCodeCompletion", "question": "TC1"}
	]}`
	gen := NewGenerator(backend, testLimits, testLogger)

	res, err := gen.Generate(context.Background(), types.GenerateQuestionsInput{Role: "QA"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeModel, res.Outcome)
	assert.Equal(t, types.Categories, categoriesOf(res.Set))
	assert.Equal(t, "HR1", res.Set.Questions[5].Prompt)
	assert.Equal(t, "ctx", res.Set.Questions[1].ExpectedOutput)
}

func TestGenerateUnknownLabelsFillByPosition(t *testing.T) {
	backend := newFakeBackend(config.OperationGenerate)
	backend.reply = `[
		{"type": "Mystery", "question": "first"},
		{"type": "CodeCompletion", "question": "C1"},
		{"type": "", "question": "third"},
		{"type": "TechCodeCompletion", "question": "TC1"},
		{"type": "Technical", "question": "TH1"},
		{"type": "HR", "question": "HR1"}
	]`
	gen := NewGenerator(backend, testLimits, testLogger)

	res, err := gen.Generate(context.Background(), types.GenerateQuestionsInput{Role: "QA"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeModel, res.Outcome)
	assert.Equal(t, "first", res.Set.Questions[0].Prompt)
	assert.Equal(t, "third", res.Set.Questions[2].Prompt)
}

func TestGeneratePartialFromTruncatedArray(t *testing.T) {
	backend := newFakeBackend(config.OperationGenerate)
	backend.reply = sixQuestions[:strings.Index(sixQuestions, `{"type": "TechCodeCompletion"`)+20]
	gen := NewGenerator(backend, testLimits, testLogger)

	res, err := gen.Generate(context.Background(), types.GenerateQuestionsInput{Role: "QA"})
	require.NoError(t, err)

	set := res.Set
	assert.Equal(t, OutcomePartial, res.Outcome)
	assert.Equal(t, 3, res.Substituted)
	assert.True(t, set.Fallback)
	assert.Equal(t, "3 of 6 questions were replaced with default questions", set.Warning)
	assert.Equal(t, types.Categories, categoriesOf(set))
	assert.Equal(t, "T1", set.Questions[2].Prompt)
	assert.False(t, set.Questions[2].Placeholder)
	assert.True(t, set.Questions[3].Placeholder)
	assert.Contains(t, set.Questions[3].Prompt, "QA")
}

func TestGenerateFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		kind  ai.FailureKind
	}{
		{"upstream failure", "", errors.NewAIError(errors.ErrCodeAIUpstreamFailed, "down", ai.ErrEmptyResponse), ai.FailureEmptyResponse},
		{"no json", "I cannot help with that.", nil, ai.FailureUpstream},
		{"scalar json", `"just a string"`, nil, ai.FailureUpstream},
		{"object without questions", `{"foo": 1}`, nil, ai.FailureUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend(config.OperationGenerate)
			backend.reply = tt.reply
			backend.err = tt.err
			gen := NewGenerator(backend, testLimits, testLogger)

			res, err := gen.Generate(context.Background(), types.GenerateQuestionsInput{Role: "Backend Developer"})
			require.NoError(t, err)
			assert.Equal(t, OutcomeFallback, res.Outcome)
			assert.Equal(t, tt.kind, res.FailureKind)
			assert.Error(t, res.Cause)
			assert.True(t, res.Set.Fallback)
			assert.NotEmpty(t, res.Set.Warning)
			assert.Equal(t, types.Categories, categoriesOf(res.Set))
			for _, q := range res.Set.Questions {
				assert.True(t, q.Placeholder)
			}
		})
	}
}

func TestGenerateRejectsInvalidRole(t *testing.T) {
	backend := newFakeBackend(config.OperationGenerate)
	gen := NewGenerator(backend, testLimits, testLogger)

	for _, role := range []string{"", "   ", strings.Repeat("r", 201)} {
		_, err := gen.Generate(context.Background(), types.GenerateQuestionsInput{Role: role})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	}
	assert.Empty(t, backend.requests)
}

func TestGenerateCustomTemplate(t *testing.T) {
	backend := newFakeBackend(config.OperationGenerate)
	backend.prompts.User = "Six questions for {{.Role}} covering {{len .Categories}} categories"
	backend.reply = sixQuestions
	gen := NewGenerator(backend, testLimits, testLogger)

	_, err := gen.Generate(context.Background(), types.GenerateQuestionsInput{Role: "PM"})
	require.NoError(t, err)
	assert.Equal(t, "Six questions for PM covering 6 categories", backend.requests[0].UserPrompt)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		score    int
		feedback string
		fallback bool
		outcome  Outcome
	}{
		{"plain", `{"feedback": "Solid answer.", "score": 7}`, 7, "Solid answer.", false, OutcomeModel},
		{"fenced string score", "```json\n{\"feedback\": \"ok\", \"score\": \"8/10\"}\n```", 8, "ok", false, OutcomeModel},
		{"fractional", `{"feedback": "ok", "score": 7.6}`, 7, "ok", false, OutcomeModel},
		{"clamped high", `{"feedback": "ok", "score": 15}`, 10, "ok", false, OutcomeModel},
		{"clamped low", `{"feedback": "ok", "score": -3}`, 0, "ok", false, OutcomeModel},
		{"huge", `{"feedback": "ok", "score": 1e300}`, 10, "ok", false, OutcomeModel},
		{"missing score", `{"feedback": "ok"}`, 5, "ok", true, OutcomePartial},
		{"non numeric score", `{"feedback": "ok", "score": "great"}`, 5, "ok", true, OutcomePartial},
		{"missing feedback", `{"score": 6}`, 6, FeedbackUnavailable, false, OutcomeModel},
		{"non string feedback", `{"feedback": ["a", "b"], "score": 6}`, 6, FeedbackFormatError, false, OutcomeModel},
		{"bracketed heading", "[Evaluation]\n{\"feedback\":\"Good\",\"score\":8}", 8, "Good", false, OutcomeModel},
		{"plain text score", "Score: 9\nClear and accurate.", 9, "Score: 9\nClear and accurate.", false, OutcomeModel},
		{"unparseable", "The candidate did fine.", 5, FeedbackUnparseable, true, OutcomeFallback},
		{"json array", `[1, 2, 3]`, 5, FeedbackUnparseable, true, OutcomeFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend(config.OperationEvaluate)
			backend.reply = tt.reply
			ev := NewEvaluator(backend, testLimits, testLogger)

			res, err := ev.Evaluate(context.Background(), types.EvaluateAnswerInput{Question: "Explain REST", Answer: "Stateless resources over HTTP"})
			require.NoError(t, err)
			assert.Equal(t, tt.score, res.Evaluation.Score)
			assert.Equal(t, tt.feedback, res.Evaluation.Feedback)
			assert.Equal(t, tt.fallback, res.Evaluation.Fallback)
			assert.Equal(t, types.MaxScore, res.Evaluation.MaxScore)
			assert.Equal(t, tt.outcome, res.Outcome)
		})
	}
}

func TestEvaluateEmptyAnswerSkipsModel(t *testing.T) {
	backend := newFakeBackend(config.OperationEvaluate)
	ev := NewEvaluator(backend, testLimits, testLogger)

	res, err := ev.Evaluate(context.Background(), types.EvaluateAnswerInput{Question: "Explain REST", Answer: " \n"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Evaluation.Score)
	assert.Equal(t, FeedbackNoAnswer, res.Evaluation.Feedback)
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.Empty(t, backend.requests)
}

func TestEvaluateUpstreamFailure(t *testing.T) {
	backend := newFakeBackend(config.OperationEvaluate)
	backend.err = errors.NewAIError(errors.ErrCodeAITimeout, "slow", context.DeadlineExceeded)
	ev := NewEvaluator(backend, testLimits, testLogger)

	res, err := ev.Evaluate(context.Background(), types.EvaluateAnswerInput{Question: "Explain REST", Answer: "something"})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Evaluation.Score)
	assert.Equal(t, FeedbackUpstreamFailed, res.Evaluation.Feedback)
	assert.True(t, res.Evaluation.Fallback)
	assert.Equal(t, ai.FailureTimeout, res.FailureKind)
}

func TestEvaluateMissingQuestion(t *testing.T) {
	ev := NewEvaluator(newFakeBackend(config.OperationEvaluate), testLimits, testLogger)
	_, err := ev.Evaluate(context.Background(), types.EvaluateAnswerInput{Answer: "x"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestEvaluateTruncatesInputAndCapsFeedback(t *testing.T) {
	backend := newFakeBackend(config.OperationEvaluate)
	backend.reply = fmt.Sprintf(`{"feedback": %q, "score": 6}`, strings.TrimSpace(strings.Repeat("word ", 150)))
	ev := NewEvaluator(backend, testLimits, testLogger)

	res, err := ev.Evaluate(context.Background(), types.EvaluateAnswerInput{
		Question: strings.Repeat("q", 1500),
		Answer:   strings.Repeat("a", 2500),
	})
	require.NoError(t, err)

	prompt := backend.requests[0].UserPrompt
	assert.Contains(t, prompt, strings.Repeat("q", 1000)+"...")
	assert.NotContains(t, prompt, strings.Repeat("q", 1001))
	assert.Contains(t, prompt, strings.Repeat("a", 2000)+"...")
	assert.NotContains(t, prompt, strings.Repeat("a", 2001))

	assert.Len(t, strings.Fields(res.Evaluation.Feedback), 100)
	assert.True(t, strings.HasSuffix(res.Evaluation.Feedback, "word..."))
}

func TestCoerceScore(t *testing.T) {
	tests := []struct {
		in    any
		want  int
		valid bool
	}{
		{float64(7), 7, true},
		{"7", 7, true},
		{" 9 / 10", 9, true},
		{"6.9", 6, true},
		{int64(12), 10, true},
		{"abc", 0, false},
		{true, 0, false},
		{nil, 0, false},
		{map[string]any{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.in), func(t *testing.T) {
			got, ok := CoerceScore(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
