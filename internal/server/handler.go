package server

import (
	"context"
	"net/http"

	"interviewcoach/internal/ai"
	"interviewcoach/internal/interview"
	"interviewcoach/internal/observability"
	"interviewcoach/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

const apiTracerName = "interviewcoach.api"

// createGenerateHandler serves POST /generate_questions
func (s *Server) createGenerateHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer(apiTracerName)
		ctx, span := tracer.Start(ctx, "api.generate_questions")
		defer span.End()

		var req GenerateRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			s.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		span.SetAttributes(attribute.Int("request.role_length", len(req.Role)))

		metrics := om.GetMetrics()
		var result *interview.GenerateResult
		err := metrics.TrackAIOperationWithTokens(ctx, tracer, "generate", func(ctx context.Context) *observability.AIOperationResult {
			res, err := s.Services.Generator.Generate(ctx, types.GenerateQuestionsInput{Role: req.Role})
			if err != nil {
				return &observability.AIOperationResult{Error: err}
			}
			result = res
			return &observability.AIOperationResult{
				FailureKind: string(res.FailureKind),
				Outcome:     string(res.Outcome),
				TokenUsage:  toObservedUsage(res.Usage),
			}
		})
		if err != nil {
			span.RecordError(err)
			s.handleOperationError(w, r, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, observability.MetricQuestionSetGenerated, result.Outcome == interview.OutcomeModel,
			attribute.String("outcome", string(result.Outcome)),
			attribute.Int("substituted", result.Substituted))

		span.SetAttributes(
			attribute.String("interview.outcome", string(result.Outcome)),
			attribute.Bool("fallback", result.Set.Fallback),
		)
		s.Logger.Info("Question set generated",
			"request_id", requestIDFrom(ctx),
			"outcome", result.Outcome,
			"substituted", result.Substituted,
			"duration_ms", result.Duration.Milliseconds())

		writeJSON(w, http.StatusOK, result.Set)
	}
}

// createEvaluateHandler serves POST /evaluate
func (s *Server) createEvaluateHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer(apiTracerName)
		ctx, span := tracer.Start(ctx, "api.evaluate")
		defer span.End()

		var req EvaluateRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			s.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}

		input := types.EvaluateAnswerInput{Question: req.Question, Answer: req.Answer}
		if c, ok := types.ParseCategory(req.Category); ok {
			input.Category = c
		}
		span.SetAttributes(
			attribute.Int("request.question_length", len(req.Question)),
			attribute.Int("request.answer_length", len(req.Answer)),
			attribute.String("interview.category", string(input.Category)),
		)

		metrics := om.GetMetrics()
		var result *interview.EvaluateResult
		err := metrics.TrackAIOperationWithTokens(ctx, tracer, "evaluate", func(ctx context.Context) *observability.AIOperationResult {
			res, err := s.Services.Evaluator.Evaluate(ctx, input)
			if err != nil {
				return &observability.AIOperationResult{Error: err}
			}
			result = res
			return &observability.AIOperationResult{
				FailureKind: string(res.FailureKind),
				Outcome:     string(res.Outcome),
				TokenUsage:  toObservedUsage(res.Usage),
			}
		})
		if err != nil {
			span.RecordError(err)
			s.handleOperationError(w, r, err)
			return
		}

		eval := result.Evaluation
		metrics.RecordBusinessMetric(ctx, observability.MetricAnswerEvaluated, !eval.Fallback,
			attribute.String("outcome", string(result.Outcome)),
			attribute.String("category", string(input.Category)))
		if result.Outcome != interview.OutcomeFallback {
			metrics.RecordAnswerScore(ctx, eval.Score, string(input.Category))
		}

		span.SetAttributes(
			attribute.String("interview.outcome", string(result.Outcome)),
			attribute.Int("evaluation.score", eval.Score),
		)

		writeJSON(w, http.StatusOK, eval)
	}
}

// createTestAPIHandler serves GET /test_api, a live round trip to the model
func (s *Server) createTestAPIHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(apiTracerName).Start(r.Context(), "api.test_api")
		defer span.End()

		svc := s.Services.GenerateAI
		result, err := svc.Ping(ctx)
		if err != nil {
			span.RecordError(err)
			kind := ai.ClassifyError(err)
			s.Logger.LogError(err, "Inference connectivity check failed",
				"request_id", requestIDFrom(ctx),
				"failure_kind", kind)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error":      err.Error(),
				"error_type": string(kind),
				"model":      svc.Model(),
			})
			return
		}

		response := map[string]any{
			"status":          "success",
			"model_response":  result.Response,
			"model":           result.Model,
			"provider":        svc.ProviderName(),
			"latency_ms":      result.Latency.Milliseconds(),
			"model_available": false,
		}
		if info := svc.GetModelInfo(ctx); info != nil {
			response["model_available"] = info.Available
			if info.Error != "" {
				response["model_info_error"] = info.Error
			}
		}
		writeJSON(w, http.StatusOK, response)
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	limit := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		limited := limit(next)
		return func(w http.ResponseWriter, r *http.Request) {
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
			limited(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				om.GetMetrics().RecordBusinessMetric(r.Context(), observability.MetricRateLimitHit, true,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		}
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func toObservedUsage(u *ai.TokenUsage) *observability.TokenUsage {
	if u == nil {
		return nil
	}
	return &observability.TokenUsage{
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		TotalTokens:  u.TotalTokens,
	}
}
