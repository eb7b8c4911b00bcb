package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	"interviewcoach/internal/errors"
)

const serviceName = "interviewcoach"

// healthHandler reports liveness and configuration. It never calls the model.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	gen := s.Services.GenerateAI
	response := map[string]any{
		"status":             "healthy",
		"service":            serviceName,
		"version":            s.Version,
		"provider":           gen.ProviderName(),
		"model":              gen.Model(),
		"api_key_configured": s.AppConfig != nil && s.AppConfig.HasAPIKey(),
		"inference_ready":    s.inferenceReady(),
		"circuit_breakers":   s.checkCircuitBreakerHealth(),
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	}

	if certStatus := s.checkCertificateHealth(); certStatus != nil {
		response["certificates"] = certStatus
	}

	writeJSON(w, http.StatusOK, response)
}

// checkCircuitBreakerHealth reports each operation's breaker
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	status := make(map[string]any, 2)
	for name, svc := range map[string]InferenceService{
		"generate": s.Services.GenerateAI,
		"evaluate": s.Services.EvaluateAI,
	} {
		if svc == nil {
			continue
		}
		status[name] = svc.CircuitBreakerStats()
	}
	return status
}

// inferenceReady reports whether no operation's breaker is open
func (s *Server) inferenceReady() bool {
	for _, svc := range []InferenceService{s.Services.GenerateAI, s.Services.EvaluateAI} {
		if svc != nil && !svc.Healthy() {
			return false
		}
	}
	return true
}

// checkCertificateHealth checks the health of TLS certificates
func (s *Server) checkCertificateHealth() map[string]any {
	if s.CertificateManager == nil {
		return nil
	}

	certStatus := make(map[string]any)
	timeToExpiry, err := s.CertificateManager.CheckExpiry()
	if err != nil {
		certStatus["healthy"] = false
		certStatus["error"] = fmt.Sprintf("Failed to check certificate expiry: %v", err)
		return certStatus
	}

	criticalThreshold := 24 * time.Hour
	warningThreshold := 7 * 24 * time.Hour

	certStatus["time_to_expiry_hours"] = int(timeToExpiry.Hours())
	switch {
	case timeToExpiry <= 0:
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
	case timeToExpiry <= criticalThreshold:
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
	case timeToExpiry <= warningThreshold:
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
	default:
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
	}

	certStatus["auto_reload"] = s.TLSConfig.AutoReload.Enabled
	certStatus["reloads"] = s.CertificateManager.Stats()

	return certStatus
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": serviceName,
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"circuit_breakers": s.checkCircuitBreakerHealth(),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeErrorResponse(w, "Page not found", "", http.StatusNotFound)
}

// handleOperationError maps an operation error onto a status code. Validation
// failures are the caller's fault; anything else is hidden unless debugging.
func (s *Server) handleOperationError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *errors.AppError
	if errors.As(err, &appErr) && appErr.Type == errors.ErrorTypeValidation {
		s.Logger.Debug("Rejected request",
			"endpoint", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
			"reason", appErr.Message)
		s.writeError(w, http.StatusBadRequest, appErr.Message, "")
		return
	}

	s.Logger.LogError(err, "Request failed",
		"endpoint", r.URL.Path,
		"request_id", requestIDFrom(r.Context()))
	s.writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
}

// writeError writes an error response; the detail is only exposed in debug mode
func (s *Server) writeError(w http.ResponseWriter, status int, msg, detail string) {
	if !s.Debug && status >= http.StatusInternalServerError {
		detail = ""
	}
	writeErrorResponse(w, msg, detail, status)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: error, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
