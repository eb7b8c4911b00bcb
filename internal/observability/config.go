package observability

import (
	"time"

	"interviewcoach/internal/config"
)

// GetObservabilityConfig creates observability config from provided config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:        "interviewcoach",
			ServiceVersion:     version,
			ServiceInstance:    "interviewcoach-1",
			SampleRate:         1.0,
			CollectionInterval: 15 * time.Second,
			TrackDuration:      true,
			TrackTokenUsage:    true,
			BusinessMetrics:    true,
			TrackRateLimits:    true,
			Prometheus:         GetPrometheusConfig(nil),
		}
	}

	obs := cfg.Observability

	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	return ObservabilityConfig{
		ServiceName:        obs.ServiceName,
		ServiceVersion:     serviceVersion,
		ServiceInstance:    obs.ServiceInstance,
		Enabled:            obs.Enabled,
		ConsoleOutput:      obs.ConsoleOutput,
		PrettyPrint:        obs.PrettyPrint,
		SampleRate:         obs.SampleRate,
		CollectionInterval: obs.Metrics.CollectionInterval,
		MetricsEnabled:     obs.Metrics.Enabled,
		TrackDuration:      obs.CustomMetrics.TrackDuration,
		TrackTokenUsage:    obs.CustomMetrics.TrackTokenUsage,
		BusinessMetrics:    obs.CustomMetrics.BusinessMetrics,
		TrackRateLimits:    obs.CustomMetrics.TrackRateLimits,
		Prometheus:         GetPrometheusConfig(cfg),
		OTLP: OTLPConfig{
			Enabled:  obs.OTLP.Enabled,
			Endpoint: obs.OTLP.Endpoint,
			Insecure: obs.OTLP.Insecure,
			Headers:  obs.OTLP.Headers,
		},
	}
}
