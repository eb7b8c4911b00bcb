package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultBaseURL is the OpenAI-compatible inference router used by the huggingface provider
const DefaultBaseURL = "https://router.huggingface.co/v1"

// DefaultModel is the model requested when none is configured
const DefaultModel = "openai/gpt-oss-120b:cerebras"

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", "huggingface")
	v.SetDefault("ai.model", DefaultModel)
	v.SetDefault("ai.baseURL", DefaultBaseURL)
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxTokens", 1024)
	v.SetDefault("ai.temperature", 0.1)
	v.SetDefault("ai.useSystemPrompts", true)
	v.SetDefault("ai.jsonResponseFormat", false)
	v.SetDefault("ai.watchPromptFiles", false)

	// Question sets are long; six items with code snippets
	v.SetDefault("ai.generate.timeout", 90*time.Second)
	v.SetDefault("ai.generate.maxTokens", 2500)
	v.SetDefault("ai.generate.temperature", 0.1)

	v.SetDefault("ai.evaluate.timeout", 45*time.Second)
	v.SetDefault("ai.evaluate.maxTokens", 600)
	v.SetDefault("ai.evaluate.temperature", 0.1)

	for _, op := range []string{OperationGenerate, OperationEvaluate} {
		prefix := "ai." + op + ".circuitBreaker."
		v.SetDefault(prefix+"enabled", true)
		v.SetDefault(prefix+"maxRequests", 3)
		v.SetDefault(prefix+"interval", 60*time.Second)
		v.SetDefault(prefix+"timeout", 30*time.Second)
		v.SetDefault(prefix+"minRequests", 5)
		v.SetDefault(prefix+"failureThreshold", 0.6)
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "7860")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 64*1024)
	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.clientAuthPolicy", "require")
	v.SetDefault("server.tls.autoReload.enabled", true)
	v.SetDefault("server.tls.autoReload.debounceDelay", time.Second)
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)

	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "yaml", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024)

	v.SetDefault("interview.maxRoleLength", 200)
	v.SetDefault("interview.maxQuestionLength", 1000)
	v.SetDefault("interview.maxAnswerLength", 2000)
	v.SetDefault("interview.maxFeedbackWords", 100)
	v.SetDefault("interview.neutralScore", 5)

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.inferenceKey", "")
	v.SetDefault("vault.secrets.tlsCerts", "")

	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.serviceName", "interviewcoach")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.prettyPrint", true)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.customMetrics.trackDuration", true)
	v.SetDefault("observability.customMetrics.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.businessMetrics", true)
	v.SetDefault("observability.customMetrics.trackRateLimits", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
