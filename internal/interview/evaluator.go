package interview

import (
	"context"
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"time"

	"interviewcoach/internal/ai"
	"interviewcoach/internal/config"
	"interviewcoach/internal/errors"
	"interviewcoach/internal/types"

	"github.com/spf13/cast"
)

const (
	FeedbackNoAnswer       = "No answer was provided for this question."
	FeedbackFormatError    = "Feedback format error - please try again."
	FeedbackUnavailable    = "Feedback not available due to technical issues."
	FeedbackUpstreamFailed = "Technical error occurred during evaluation. Please try again or review manually."
	FeedbackUnparseable    = "Unable to generate detailed feedback due to technical issues. Please review the response manually."
)

var (
	plainScorePattern = regexp.MustCompile(`(?i)\bscore\b["']?\s*[:=]?\s*(-?\d+(?:\.\d+)?)`)
	leadingNumber     = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)`)
)

// EvaluateResult carries the evaluation plus what it took to produce it
type EvaluateResult struct {
	Evaluation  types.Evaluation
	Outcome     Outcome
	Cause       error
	FailureKind ai.FailureKind
	Usage       *ai.TokenUsage
	Duration    time.Duration
}

// Evaluator scores candidate answers
type Evaluator struct {
	backend Backend
	limits  config.InterviewConfig
	logger  *errors.Logger
}

// NewEvaluator creates an evaluator around an inference backend
func NewEvaluator(backend Backend, limits config.InterviewConfig, logger *errors.Logger) *Evaluator {
	return &Evaluator{backend: backend, limits: limits, logger: logger}
}

// Evaluate scores one answer. Only a missing question is an error; every
// other failure yields the neutral score flagged as a fallback.
func (e *Evaluator) Evaluate(ctx context.Context, input types.EvaluateAnswerInput) (*EvaluateResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "Question is required", nil)
	}

	start := time.Now()
	answer := strings.TrimSpace(input.Answer)
	if answer == "" {
		return &EvaluateResult{
			Evaluation: types.Evaluation{Score: 0, MaxScore: types.MaxScore, Feedback: FeedbackNoAnswer},
			Outcome:    OutcomeSkipped,
		}, nil
	}

	result := &EvaluateResult{}
	defer func() { result.Duration = time.Since(start) }()

	prompts := e.backend.Prompts()
	userPrompt, err := renderPrompt(config.OperationEvaluate, prompts.User, struct {
		Question string
		Answer   string
		Category types.Category
	}{
		truncate(question, e.limits.MaxQuestionLength),
		truncate(answer, e.limits.MaxAnswerLength),
		input.Category,
	})
	if err != nil {
		e.fallback(result, FeedbackUpstreamFailed,
			errors.NewInternalError(errors.ErrCodeInvalidConfig, "Failed to render evaluation prompt", err))
		return result, nil
	}

	completion, err := e.backend.Complete(ctx, ai.CompletionRequest{
		Operation:    config.OperationEvaluate,
		SystemPrompt: prompts.System,
		UserPrompt:   userPrompt,
		JSON:         true,
	})
	if err != nil {
		e.fallback(result, FeedbackUpstreamFailed, err)
		return result, nil
	}
	result.Usage = completion.TokenUsage

	evaluation, complete, ok := e.parse(completion.Text)
	if !ok {
		e.fallback(result, FeedbackUnparseable,
			errors.NewAIError(errors.ErrCodeAIResponseParseFailed, "Evaluation response could not be parsed", nil).
				WithContext("response_length", len(completion.Text)))
		return result, nil
	}

	result.Evaluation = evaluation
	result.Outcome = OutcomeModel
	if !complete {
		result.Outcome = OutcomePartial
		e.logger.Warn("Evaluation response had no usable score", "neutral_score", e.limits.NeutralScore)
	}
	return result, nil
}

func (e *Evaluator) fallback(result *EvaluateResult, feedback string, cause error) {
	result.Evaluation = types.Evaluation{
		Score:    e.limits.NeutralScore,
		MaxScore: types.MaxScore,
		Feedback: feedback,
		Fallback: true,
	}
	result.Outcome = OutcomeFallback
	result.Cause = cause
	result.FailureKind = ai.ClassifyError(cause)
	e.logger.Warn("Evaluation fell back to the neutral score",
		"failure_kind", result.FailureKind,
		"error", cause.Error())
}

// parse reads the model reply. complete is false when the score had to be
// substituted, ok is false when nothing usable was found.
func (e *Evaluator) parse(text string) (eval types.Evaluation, complete bool, ok bool) {
	eval.MaxScore = types.MaxScore

	if raw, found := ExtractJSON(text); found {
		var fields map[string]any
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return eval, false, false
		}

		score, scored := CoerceScore(fields["score"])
		if !scored {
			score = e.limits.NeutralScore
			eval.Fallback = true
		}
		eval.Score = score

		switch fb := fields["feedback"].(type) {
		case nil:
			eval.Feedback = FeedbackUnavailable
		case string:
			eval.Feedback = capWords(strings.TrimSpace(fb), e.limits.MaxFeedbackWords)
			if eval.Feedback == "" {
				eval.Feedback = FeedbackUnavailable
			}
		default:
			eval.Feedback = FeedbackFormatError
		}
		return eval, scored, true
	}

	m := plainScorePattern.FindStringSubmatch(text)
	if m == nil {
		return eval, false, false
	}
	score, _ := CoerceScore(m[1])
	eval.Score = score
	eval.Feedback = capWords(strings.TrimSpace(text), e.limits.MaxFeedbackWords)
	return eval, true, true
}

// CoerceScore converts a model-supplied score to an integer in [0, MaxScore].
// It accepts numbers, numeric strings and "N/10" style strings; fractions are
// truncated toward zero.
func CoerceScore(v any) (int, bool) {
	var f float64
	switch s := v.(type) {
	case nil:
		return 0, false
	case bool:
		return 0, false
	case string:
		m := leadingNumber.FindStringSubmatch(s)
		if m == nil {
			return 0, false
		}
		n, err := cast.ToFloat64E(m[1])
		if err != nil {
			return 0, false
		}
		f = n
	default:
		n, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		f = n
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return ClampScore(int(math.Max(-1, math.Min(types.MaxScore+1, math.Trunc(f))))), true
}

// ClampScore bounds a score to [0, MaxScore]
func ClampScore(score int) int {
	return max(0, min(types.MaxScore, score))
}
