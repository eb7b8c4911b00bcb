package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Business metric types accepted by RecordBusinessMetric
const (
	MetricQuestionSetGenerated = "question_set_generated"
	MetricAnswerEvaluated      = "answer_evaluated"
	MetricPromptReloaded       = "prompt_reloaded"
	MetricCertReloaded         = "cert_reloaded"
	MetricRateLimitHit         = "rate_limit_hit"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	Enabled            bool
	ConsoleOutput      bool
	PrettyPrint        bool
	SampleRate         float64
	CollectionInterval time.Duration
	MetricsEnabled     bool
	TrackDuration      bool
	TrackTokenUsage    bool
	BusinessMetrics    bool
	TrackRateLimits    bool
	Prometheus         PrometheusConfig
	OTLP               OTLPConfig
}

// OTLPConfig holds the OTLP HTTP exporter settings
type OTLPConfig struct {
	Enabled  bool
	Endpoint string
	Insecure bool
	Headers  map[string]string
}

// Metrics holds all custom metrics
type Metrics struct {
	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Business metrics
	QuestionSetsGenerated metric.Int64Counter
	AnswersEvaluated      metric.Int64Counter
	AnswerScores          metric.Int64Histogram
	PromptReloads         metric.Int64Counter

	// Infrastructure metrics
	CertReloadCount metric.Int64Counter
	RateLimitHits   metric.Int64Counter

	config ObservabilityConfig
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config         ObservabilityConfig
	resource       *resource.Resource
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	manualReader   *sdkmetric.ManualReader
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
}

// NewObservabilityManager creates a new observability manager. A disabled
// manager hands out no-op tracers and empty metrics.
func NewObservabilityManager(obsConfig ObservabilityConfig) (*ObservabilityManager, error) {
	om := &ObservabilityManager{config: obsConfig}
	if !obsConfig.Enabled {
		return om, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(obsConfig.ServiceName),
			semconv.ServiceVersion(obsConfig.ServiceVersion),
			semconv.ServiceInstanceID(om.serviceInstanceID()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}
	om.resource = res

	if err := om.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if obsConfig.MetricsEnabled {
		if err := om.initMetrics(); err != nil {
			_ = om.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	return om, nil
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case om.config.ConsoleOutput:
		opts := []stdouttrace.Option{}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case om.config.OTLP.Enabled:
		exporter, err = om.createOTLPExporter()
	default:
		exporter = &noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(om.resource),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(om.config.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(om.resource)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics()
}

// setupMetricReaders sets up all metric readers based on configuration
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if om.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(om.collectionInterval())))
	}

	if om.config.OTLP.Enabled {
		reader, err := om.createOTLPMetricsReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if om.config.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(om.config.Prometheus)
		if err != nil {
			return nil, err
		}
		readers = append(readers, reader)
		om.shutdownFuncs = append(om.shutdownFuncs, StartPrometheusServer(mux, om.config.Prometheus))
	}

	if len(readers) == 0 {
		om.manualReader = sdkmetric.NewManualReader()
		readers = append(readers, om.manualReader)
	}

	return readers, nil
}

// initCustomMetrics creates all custom metrics
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	m := &Metrics{config: om.config}
	var err error

	if m.AIProcessingTime, err = meter.Float64Histogram("interviewcoach_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing inference requests"),
		metric.WithUnit("s")); err != nil {
		return fmt.Errorf("failed to create AI processing time metric: %w", err)
	}
	if m.AIRequestCount, err = meter.Int64Counter("interviewcoach_ai_requests_total",
		metric.WithDescription("Total number of inference requests")); err != nil {
		return fmt.Errorf("failed to create AI request count metric: %w", err)
	}
	if m.AIErrorCount, err = meter.Int64Counter("interviewcoach_ai_errors_total",
		metric.WithDescription("Total number of failed inference requests by failure kind")); err != nil {
		return fmt.Errorf("failed to create AI error count metric: %w", err)
	}
	if m.AITokenUsage, err = meter.Int64Histogram("interviewcoach_ai_token_usage",
		metric.WithDescription("Token usage for inference requests (input, output, total)"),
		metric.WithUnit("tokens")); err != nil {
		return fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	if m.QuestionSetsGenerated, err = meter.Int64Counter("interviewcoach_question_sets_total",
		metric.WithDescription("Question sets served, by outcome")); err != nil {
		return fmt.Errorf("failed to create question sets metric: %w", err)
	}
	if m.AnswersEvaluated, err = meter.Int64Counter("interviewcoach_answers_evaluated_total",
		metric.WithDescription("Answers evaluated, by outcome")); err != nil {
		return fmt.Errorf("failed to create answers evaluated metric: %w", err)
	}
	if m.AnswerScores, err = meter.Int64Histogram("interviewcoach_answer_score",
		metric.WithDescription("Distribution of answer scores"),
		metric.WithExplicitBucketBoundaries(0, 2, 4, 6, 8, 10)); err != nil {
		return fmt.Errorf("failed to create answer score metric: %w", err)
	}
	if m.PromptReloads, err = meter.Int64Counter("interviewcoach_prompt_reloads_total",
		metric.WithDescription("Prompt file reloads")); err != nil {
		return fmt.Errorf("failed to create prompt reload metric: %w", err)
	}

	if m.CertReloadCount, err = meter.Int64Counter("interviewcoach_cert_reloads_total",
		metric.WithDescription("Total number of certificate reloads")); err != nil {
		return fmt.Errorf("failed to create certificate reload count metric: %w", err)
	}
	if m.RateLimitHits, err = meter.Int64Counter("interviewcoach_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits")); err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	om.metrics = m
	return nil
}

// GetMetrics returns the metrics instance. It is safe to use when metrics are disabled.
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om == nil || om.metrics == nil {
		return &Metrics{}
	}
	return om.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if om == nil || !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	opts := []otelhttp.Option{otelhttp.WithTracerProvider(om.tracerProvider)}
	if om.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(om.meterProvider))
	}
	return otelhttp.NewMiddleware(om.config.ServiceName, opts...)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if om == nil || !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return om.tracerProvider.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	if om == nil {
		return nil
	}
	var firstErr error
	for i := len(om.shutdownFuncs) - 1; i >= 0; i-- {
		if err := om.shutdownFuncs[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	om.shutdownFuncs = nil
	return firstErr
}

// AIOperationResult holds the result of an instrumented operation
type AIOperationResult struct {
	// Error is a hard failure returned to the caller
	Error error
	// FailureKind is set when the operation degraded to a fallback
	FailureKind string
	Outcome     string
	TokenUsage  *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// TrackAIOperationWithTokens instruments an operation with a span, duration, request,
// failure and token usage metrics. It returns the operation's Error.
func (m *Metrics) TrackAIOperationWithTokens(ctx context.Context, tracer oteltrace.Tracer, operation string, fn func(context.Context) *AIOperationResult) error {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	ctx, span := tracer.Start(ctx, "interview."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	if result == nil {
		result = &AIOperationResult{}
	}
	duration := time.Since(start).Seconds()

	failed := result.Error != nil || result.FailureKind != ""
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", !failed),
	}
	if result.Outcome != "" {
		span.SetAttributes(attribute.String("interview.outcome", result.Outcome))
	}
	span.SetAttributes(attrs...)

	if result.Error != nil {
		span.RecordError(result.Error)
		span.SetStatus(codes.Error, result.Error.Error())
	}

	if m.AIRequestCount == nil {
		return result.Error
	}

	if m.config.TrackDuration {
		m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	}
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if failed {
		kind := result.FailureKind
		if kind == "" {
			kind = "error"
		}
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("failure_kind", kind)))
	}
	m.recordTokenUsage(ctx, operation, result.TokenUsage, span)

	return result.Error
}

func (m *Metrics) recordTokenUsage(ctx context.Context, operation string, usage *TokenUsage, span oteltrace.Span) {
	if usage == nil {
		return
	}

	span.SetAttributes(
		attribute.Int64("ai.tokens.input", usage.InputTokens),
		attribute.Int64("ai.tokens.output", usage.OutputTokens),
		attribute.Int64("ai.tokens.total", usage.TotalTokens),
	)

	if !m.config.TrackTokenUsage {
		return
	}
	for _, tt := range []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("token_type", tt.tokenType)))
	}
}

// RecordBusinessMetric records business and infrastructure counters
func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricType string, success bool, attributes ...attribute.KeyValue) {
	if m.RateLimitHits == nil {
		return
	}

	attrs := append([]attribute.KeyValue{attribute.Bool("success", success)}, attributes...)
	opt := metric.WithAttributes(attrs...)

	switch metricType {
	case MetricRateLimitHit:
		if m.config.TrackRateLimits {
			m.RateLimitHits.Add(ctx, 1, opt)
		}
	case MetricCertReloaded:
		m.CertReloadCount.Add(ctx, 1, opt)
	case MetricPromptReloaded:
		m.PromptReloads.Add(ctx, 1, opt)
	case MetricQuestionSetGenerated:
		if m.config.BusinessMetrics {
			m.QuestionSetsGenerated.Add(ctx, 1, opt)
		}
	case MetricAnswerEvaluated:
		if m.config.BusinessMetrics {
			m.AnswersEvaluated.Add(ctx, 1, opt)
		}
	}
}

// RecordAnswerScore adds a score to the score distribution
func (m *Metrics) RecordAnswerScore(ctx context.Context, score int, category string) {
	if m.AnswerScores == nil || !m.config.BusinessMetrics {
		return
	}
	m.AnswerScores.Record(ctx, int64(score), metric.WithAttributes(attribute.String("category", category)))
}

type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	cfg := om.config.OTLP
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	cfg := om.config.OTLP
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(om.collectionInterval())), nil
}

func (om *ObservabilityManager) serviceInstanceID() string {
	if om.config.ServiceInstance != "" {
		return om.config.ServiceInstance
	}
	return om.config.ServiceName + "-1"
}

func (om *ObservabilityManager) collectionInterval() time.Duration {
	if om.config.CollectionInterval > 0 {
		return om.config.CollectionInterval
	}
	return 15 * time.Second
}
