package ai

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// FailureKind classifies why an inference call failed
type FailureKind string

const (
	FailureNone          FailureKind = ""
	FailureNetwork       FailureKind = "network"
	FailureTimeout       FailureKind = "timeout"
	FailureAuth          FailureKind = "auth"
	FailureRateLimit     FailureKind = "rate_limit"
	FailureUpstream      FailureKind = "upstream"
	FailureCircuitOpen   FailureKind = "circuit_open"
	FailureEmptyResponse FailureKind = "empty_response"
)

// ErrEmptyResponse is returned when the model answers with no text
var ErrEmptyResponse = stderrors.New("model returned an empty response")

// ClassifyError maps an inference error to a FailureKind
func ClassifyError(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	switch {
	case stderrors.Is(err, ErrEmptyResponse):
		return FailureEmptyResponse
	case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
		return FailureCircuitOpen
	case stderrors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	}

	var openaiErr *openai.Error
	if stderrors.As(err, &openaiErr) {
		return classifyStatus(openaiErr.StatusCode)
	}
	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		return classifyStatus(genaiErr.Code)
	}
	var googleErr *googleapi.Error
	if stderrors.As(err, &googleErr) {
		return classifyStatus(googleErr.Code)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return FailureTimeout
		}
		return FailureNetwork
	}

	return FailureUpstream
}

func classifyStatus(code int) FailureKind {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return FailureAuth
	case code == http.StatusTooManyRequests:
		return FailureRateLimit
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return FailureTimeout
	default:
		return FailureUpstream
	}
}
